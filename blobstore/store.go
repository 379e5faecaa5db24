// Package blobstore abstracts artifact publishing targets.
//
// The pipeline itself writes only to the local filesystem; publishing copies
// finished artifacts to a store after the run, so a failed upload never
// corrupts or truncates the canonical local output.
package blobstore

import (
	"context"
	"io"
)

// Store is a write-side abstraction for publishing immutable artifacts.
type Store interface {
	// Put writes the blob under name, replacing any existing blob.
	// size is the exact content length; implementations may rely on it.
	Put(ctx context.Context, name string, r io.Reader, size int64) error
}
