package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MemoryObjectStore is an in-memory storage.ObjectRepository
type MemoryObjectStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Types     map[string]string
	FailAfter int // uploads allowed before Upload starts failing; 0 disables
	uploads   int
}

// NewMemoryObjectStore creates an empty object store
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{Objects: map[string][]byte{}, Types: map[string]string{}}
}

// Upload stores the object
func (m *MemoryObjectStore) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	if m.FailAfter > 0 && m.uploads > m.FailAfter {
		return fmt.Errorf("upload %s: %w", key, ErrInjected)
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.Objects[key] = b
	m.Types[key] = contentType
	return nil
}

// Delete removes the object
func (m *MemoryObjectStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	delete(m.Types, key)
	return nil
}

// PresignedURL returns a fake signed URL
func (m *MemoryObjectStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://objects.test/%s?expires=%d", key, int(expiry.Seconds())), nil
}

// Len returns the number of stored objects
func (m *MemoryObjectStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}
