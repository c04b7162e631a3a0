// Package tradelog persists the daily decision records. A Store keeps
// one JSON document per trading day; the blob backends put that
// document on the local filesystem or in an S3-compatible bucket.
package tradelog

import "context"

// Blob defines the interface for trade log storage backends
type Blob interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}
