// Package objectstore gives read access to the objects holding CAR shards,
// either in an S3 bucket or on a filesystem.
//
// Implementations report transport failures as *dagaudit.RemoteReadError and
// perform no retries of their own.
package objectstore

import (
	"context"
	"io"
)

// Store is read access to a flat keyspace of objects.
type Store interface {
	// List returns the keys of all objects whose key starts with prefix, in
	// lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists reports whether an object with exactly this key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// Open streams the bytes of the object at key. The caller must close the
	// returned reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
