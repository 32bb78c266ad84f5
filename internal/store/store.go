// Package store provides persistence for the catalog snapshot artifact.
// Supports both local file and Redis backends so a fresh instance can warm
// up without hammering the upstream API.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no snapshot artifact exists yet.
var ErrNotFound = errors.New("store: snapshot not found")

// Store defines the interface for snapshot artifact storage. The artifact
// is an opaque JSON document; decoding is the catalog's concern.
// Implementations must be safe for concurrent use.
type Store interface {
	// Load retrieves the stored snapshot artifact.
	// Returns ErrNotFound if no artifact exists yet.
	Load(ctx context.Context) ([]byte, error)

	// Save stores the snapshot artifact.
	Save(ctx context.Context, data []byte) error

	// Close releases any resources held by the store.
	Close() error
}
