package storage

import (
	"context"
	"sync"
)

// MemoryProvider keeps objects in a map. It backs tests and development
// runs where a real bucket is unavailable.
type MemoryProvider struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string

	// FailWith, when set, makes every Put return this error. Tests use it
	// to simulate a broken mirror.
	FailWith error
}

// NewMemoryProvider creates an empty in-memory store.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

// Put stores a copy of data under key.
func (p *MemoryProvider) Put(_ context.Context, key, contentType string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWith != nil {
		return p.FailWith
	}
	p.objects[key] = append([]byte(nil), data...)
	p.types[key] = contentType
	return nil
}

// Get returns the stored bytes and whether the key exists.
func (p *MemoryProvider) Get(key string) ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.objects[key]
	return data, ok
}

// ContentType returns the content type recorded for key.
func (p *MemoryProvider) ContentType(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.types[key]
}

// Len reports the number of stored objects.
func (p *MemoryProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.objects)
}
