// Package storage defines the remote mirror capability and its providers.
// The narrow Put interface keeps the sink and scheduler free of any cloud
// vendor's client types and lets tests substitute an in-memory store.
package storage

import "context"

// Provider copies bytes to a named key in a remote object store.
type Provider interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// NoOpProvider discards every put. Useful for dry runs where images are
// fetched and written locally but never mirrored.
type NoOpProvider struct{}

// Put does nothing and always succeeds.
func (NoOpProvider) Put(_ context.Context, _ string, _ string, _ []byte) error {
	return nil
}
