// Package catalog maintains the in-memory problem catalog: an atomically
// swapped snapshot of the full problem list with lookup indexes, plus a
// bounded LRU for per-problem detail records.
package catalog

import (
	"sort"
	"strings"

	"goleet/internal/core"
)

// Source identifies where a snapshot's entries came from.
type Source string

const (
	// SourceBootstrap marks a snapshot decoded from the stored artifact.
	SourceBootstrap Source = "bootstrap"
	// SourceRemote marks a snapshot accumulated from the upstream API.
	SourceRemote Source = "remote"
)

// Snapshot is one immutable view of the catalog. All lookup structures are
// precomputed at build time; once published a snapshot is never mutated, so
// readers may hold it without locks.
type Snapshot struct {
	entries       []core.Problem // accumulation order
	byID          map[string]int // question id -> index into entries
	idBySlug      map[string]string
	slugByDisplay map[string]string
	tags          []core.TagCount
	tagMembers    map[string][]int // tag slug -> indexes into entries
	source        Source
}

// buildSnapshot assembles a snapshot from accumulated entries. A duplicate
// question id replaces the earlier record but keeps its position. Topic
// tags that carry a name without a slug get a derived slug, persisted onto
// the stored entry.
func buildSnapshot(entries []core.Problem, source Source) *Snapshot {
	s := &Snapshot{
		byID:          make(map[string]int, len(entries)),
		idBySlug:      make(map[string]string, len(entries)),
		slugByDisplay: make(map[string]string, len(entries)),
		tagMembers:    make(map[string][]int),
		source:        source,
	}

	for i := range entries {
		e := entries[i]
		if idx, seen := s.byID[e.ID]; seen {
			s.entries[idx] = e
		} else {
			s.byID[e.ID] = len(s.entries)
			s.entries = append(s.entries, e)
		}
		s.idBySlug[e.Slug] = e.ID
		if e.DisplayID != "" {
			s.slugByDisplay[e.DisplayID] = e.Slug
		}
	}

	s.aggregateTags()
	return s
}

// aggregateTags builds the tag table: per-tag entry counts ordered by
// descending count, ties kept in first-encounter order.
func (s *Snapshot) aggregateTags() {
	type tagAgg struct {
		name  string
		count int
		order int
	}
	byTag := make(map[string]*tagAgg)
	next := 0

	for i := range s.entries {
		seen := make(map[string]bool, len(s.entries[i].Topics))
		for j := range s.entries[i].Topics {
			t := &s.entries[i].Topics[j]
			if t.Slug == "" && t.Name != "" {
				t.Slug = deriveTagSlug(t.Name)
			}
			if t.Slug == "" || seen[t.Slug] {
				continue
			}
			seen[t.Slug] = true

			agg, ok := byTag[t.Slug]
			if !ok {
				agg = &tagAgg{name: t.Name, order: next}
				next++
				byTag[t.Slug] = agg
			}
			agg.count++
			if agg.name == "" {
				agg.name = t.Name
			}
			s.tagMembers[t.Slug] = append(s.tagMembers[t.Slug], i)
		}
	}

	s.tags = make([]core.TagCount, 0, len(byTag))
	for slug, agg := range byTag {
		s.tags = append(s.tags, core.TagCount{Slug: slug, Name: agg.name, Count: agg.count})
	}
	sort.Slice(s.tags, func(i, j int) bool {
		return byTag[s.tags[i].Slug].order < byTag[s.tags[j].Slug].order
	})
	sort.SliceStable(s.tags, func(i, j int) bool {
		return s.tags[i].Count > s.tags[j].Count
	})
}

// deriveTagSlug turns a display name into a slug: lowercase with spaces
// replaced by hyphens ("Hash Table" -> "hash-table").
func deriveTagSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// Len returns the number of entries in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Entries returns all entries in accumulation order. The returned slice is
// shared snapshot state; callers must not modify it.
func (s *Snapshot) Entries() []core.Problem {
	return s.entries
}

// ByID returns the entry with the given question id.
func (s *Snapshot) ByID(id string) (*core.Problem, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.entries[idx], true
}

// BySlug returns the entry with the given slug.
func (s *Snapshot) BySlug(slug string) (*core.Problem, bool) {
	id, ok := s.idBySlug[slug]
	if !ok {
		return nil, false
	}
	return s.ByID(id)
}

// Resolve maps a client-facing identifier to an entry. Display ids take
// precedence over slugs, so "1" finds the problem numbered 1 even if some
// problem had the slug "1".
func (s *Snapshot) Resolve(idOrSlug string) (*core.Problem, bool) {
	if slug, ok := s.slugByDisplay[idOrSlug]; ok {
		return s.BySlug(slug)
	}
	if _, ok := s.idBySlug[idOrSlug]; ok {
		return s.BySlug(idOrSlug)
	}
	return nil, false
}

// TagCounts returns the aggregated tag table, ordered by descending entry
// count. The returned slice is shared snapshot state; callers must not
// modify it.
func (s *Snapshot) TagCounts() []core.TagCount {
	return s.tags
}

// EntriesByTag returns the entries carrying the given tag slug, in
// accumulation order. Only bootstrap-sourced snapshots carry topics, so a
// remote snapshot yields no members for any tag.
func (s *Snapshot) EntriesByTag(slug string) []core.Problem {
	idxs, ok := s.tagMembers[slug]
	if !ok {
		return nil
	}
	out := make([]core.Problem, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.entries[i])
	}
	return out
}

// HasTopics reports whether any entry in the snapshot carries topic tags.
func (s *Snapshot) HasTopics() bool {
	return len(s.tags) > 0
}

// Source reports where the snapshot's entries came from.
func (s *Snapshot) Source() Source {
	return s.source
}

func emptySnapshot() *Snapshot {
	return buildSnapshot(nil, Source(""))
}
