package catalog

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"goleet/internal/core"
)

// decodeBootstrap parses a stored catalog artifact. The artifact is a JSON
// array whose items are either full GraphQL responses ({"data": {"question":
// {...}}}, the shape the bulk exporter writes) or flattened question objects.
// Items of neither shape are skipped, as are items missing a question id or
// a resolvable slug; a partially usable artifact is still a usable artifact.
func decodeBootstrap(raw []byte) ([]core.Problem, error) {
	if !gjson.ValidBytes(raw) {
		return nil, core.NewMalformedDataError("bootstrap artifact", errors.New("invalid JSON"))
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		return nil, core.NewMalformedDataError("bootstrap artifact", errors.New("top-level value is not an array"))
	}

	var entries []core.Problem
	doc.ForEach(func(_, item gjson.Result) bool {
		q := item
		if wrapped := item.Get("data.question"); wrapped.Exists() {
			q = wrapped
		} else if !item.Get("questionId").Exists() {
			return true
		}

		slug := q.Get("titleSlug").String()
		if slug == "" {
			slug = slugFromURL(q.Get("url").String())
		}
		id := q.Get("questionId").String()
		if id == "" || slug == "" {
			return true
		}

		entries = append(entries, core.Problem{
			ID:               id,
			DisplayID:        q.Get("questionFrontendId").String(),
			Title:            q.Get("title").String(),
			Slug:             slug,
			Difficulty:       q.Get("difficulty").String(),
			PaidOnly:         q.Get("isPaidOnly").Bool() || q.Get("paidOnly").Bool(),
			HasSolution:      q.Get("hasSolution").Bool(),
			HasVideoSolution: q.Get("hasVideoSolution").Bool(),
			Topics:           bootstrapTopics(q.Get("topicTags")),
		})
		return true
	})
	return entries, nil
}

// encodeBootstrap serializes entries in the flattened artifact shape, which
// decodeBootstrap accepts back on the next cold start.
func encodeBootstrap(entries []core.Problem) ([]byte, error) {
	return json.Marshal(entries)
}

// slugFromURL recovers a title slug from a problem URL, the fallback for
// artifacts predating the titleSlug field: the last path segment of e.g.
// "https://leetcode.com/problems/two-sum/" is "two-sum".
func slugFromURL(url string) string {
	trimmed := strings.Trim(url, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}

func bootstrapTopics(res gjson.Result) []core.Topic {
	if !res.IsArray() {
		return nil
	}
	var topics []core.Topic
	res.ForEach(func(_, t gjson.Result) bool {
		name := t.Get("name").String()
		slug := t.Get("slug").String()
		if name == "" && slug == "" {
			return true
		}
		topics = append(topics, core.Topic{Name: name, Slug: slug})
		return true
	})
	return topics
}
