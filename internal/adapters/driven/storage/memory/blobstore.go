package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]domain.Blob
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string]domain.Blob),
	}
}

// Put stores content under the given ref.
func (s *BlobStore) Put(_ context.Context, ref string, content []byte, contentType, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(content))
	copy(stored, content)
	s.blobs[ref] = domain.Blob{Content: stored, ContentType: contentType, Filename: filename}
	return nil
}

// Get returns the blob or domain.ErrNotFound.
func (s *BlobStore) Get(_ context.Context, ref string) (*domain.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[ref]
	if !ok {
		return nil, fmt.Errorf("memory: blob %s: %w", ref, domain.ErrNotFound)
	}
	return &blob, nil
}

// Exists reports whether the ref is present.
func (s *BlobStore) Exists(_ context.Context, ref string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blobs[ref]
	return ok, nil
}

// Delete removes the blob. Missing refs are ignored.
func (s *BlobStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, ref)
	return nil
}

// Len reports the number of stored blobs, for tests.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.blobs)
}
