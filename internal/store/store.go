// Package store provides the durable key-value storage behind the
// persistence gateway.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for keys that were never written.
var ErrNotFound = errors.New("store: key not found")

// KV is a string-keyed blob store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
