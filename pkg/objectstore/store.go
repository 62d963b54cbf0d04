// Package objectstore provides path addressed document storage for chat transcripts and
// query logs.
package objectstore

import (
	"context"
	"errors"
)

const ContentTypeJSON = "application/json"

// ErrNotFound is returned when no object exists at the requested path.
var ErrNotFound = errors.New("object not found")

// Store is a durable, path addressed blob store. Put overwrites any existing object.
type Store interface {
	// EnsureContainer creates the backing bucket/container if it does not exist. It is an
	// idempotent setup step meant to run once at startup.
	EnsureContainer(ctx context.Context) error
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}
