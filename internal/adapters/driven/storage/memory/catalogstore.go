package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogStore.
type CatalogStore struct {
	mu      sync.RWMutex
	records map[string]domain.DocumentRecord
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		records: make(map[string]domain.DocumentRecord),
	}
}

// Insert stores a new record.
func (s *CatalogStore) Insert(_ context.Context, rec *domain.DocumentRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("memory: %w: record has no id", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("memory: document %s: %w", rec.ID, domain.ErrAlreadyExists)
	}
	s.records[rec.ID] = *rec
	return nil
}

// Update rewrites the mutable fields of an existing record.
func (s *CatalogStore) Update(_ context.Context, rec *domain.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.records[rec.ID]
	if !ok {
		return fmt.Errorf("memory: document %s: %w", rec.ID, domain.ErrNotFound)
	}

	stored.OriginalFilename = rec.OriginalFilename
	stored.ActiveVersionHash = rec.ActiveVersionHash
	stored.BlobRef = rec.BlobRef
	stored.UpdatedAt = rec.UpdatedAt
	s.records[rec.ID] = stored
	return nil
}

// Delete removes a record by id.
func (s *CatalogStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("memory: document %s: %w", id, domain.ErrNotFound)
	}
	delete(s.records, id)
	return nil
}

// GetByID returns the record or domain.ErrNotFound.
func (s *CatalogStore) GetByID(_ context.Context, id string) (*domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("memory: document %s: %w", id, domain.ErrNotFound)
	}
	return &rec, nil
}

// GetByHash returns the record with the active hash inside one collection.
func (s *CatalogStore) GetByHash(_ context.Context, collection, hash string) (*domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.CollectionName == collection && rec.ActiveVersionHash == hash {
			found := rec
			return &found, nil
		}
	}
	return nil, fmt.Errorf("memory: hash %s in %q: %w", hash, collection, domain.ErrNotFound)
}

// FirstByHash returns any record with the active hash.
func (s *CatalogStore) FirstByHash(_ context.Context, hash string) (*domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ActiveVersionHash == hash {
			found := rec
			return &found, nil
		}
	}
	return nil, fmt.Errorf("memory: hash %s: %w", hash, domain.ErrNotFound)
}

// FindByHashes returns the records of a collection whose active hash is in
// the set.
func (s *CatalogStore) FindByHashes(_ context.Context, collection string, hashes []string) ([]domain.DocumentRecord, error) {
	wanted := make(map[string]struct{}, len(hashes))
	for _, hash := range hashes {
		wanted[hash] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.DocumentRecord
	for _, rec := range s.records {
		if rec.CollectionName != collection {
			continue
		}
		if _, ok := wanted[rec.ActiveVersionHash]; ok {
			result = append(result, rec)
		}
	}
	return result, nil
}

// FindByIDs returns the records whose id is in the set.
func (s *CatalogStore) FindByIDs(_ context.Context, ids []string) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.DocumentRecord
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			result = append(result, rec)
		}
	}
	return result, nil
}

// FindByIDsOrParents returns records whose id or parent id is in the set.
func (s *CatalogStore) FindByIDsOrParents(_ context.Context, ids []string) ([]domain.DocumentRecord, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.DocumentRecord
	for _, rec := range s.records {
		if _, ok := wanted[rec.ID]; ok {
			result = append(result, rec)
			continue
		}
		if rec.ParentID != nil {
			if _, ok := wanted[*rec.ParentID]; ok {
				result = append(result, rec)
			}
		}
	}
	return result, nil
}

// CountByBlobRef counts records referencing the blob, excluding one id.
func (s *CatalogStore) CountByBlobRef(_ context.Context, blobRef, excludeID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, rec := range s.records {
		if rec.BlobRef == blobRef && rec.ID != excludeID {
			count++
		}
	}
	return count, nil
}

// Close is a no-op.
func (s *CatalogStore) Close() error {
	return nil
}
