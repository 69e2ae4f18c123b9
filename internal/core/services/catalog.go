package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// DocumentCatalog keeps document records and their blobs consistent. Blobs
// are content addressed and may back several records, so both update and
// delete only remove a blob once no other record references it.
type DocumentCatalog struct {
	store driven.CatalogStore
	blobs driven.BlobStore
}

// NewDocumentCatalog creates a new document catalog.
func NewDocumentCatalog(store driven.CatalogStore, blobs driven.BlobStore) *DocumentCatalog {
	return &DocumentCatalog{
		store: store,
		blobs: blobs,
	}
}

// CreateDocument stores the blob and inserts a new record, returning the
// record id.
func (c *DocumentCatalog) CreateDocument(ctx context.Context, filename, collection, hash string, content []byte, parentID string) (string, error) {
	if err := c.blobs.Put(ctx, hash, content, contentTypeFor(filename), filename); err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}

	now := time.Now().UTC()
	rec := &domain.DocumentRecord{
		ID:                uuid.New().String(),
		OriginalFilename:  filename,
		CollectionName:    collection,
		ActiveVersionHash: hash,
		BlobRef:           hash,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if parentID != "" {
		parent := domain.CleanIdentifier(parentID)
		rec.ParentID = &parent
	}

	if err := c.store.Insert(ctx, rec); err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}
	return rec.ID, nil
}

// UpdateDocument swaps the record's active version to the new content. The
// old blob is removed only when no other record still references it.
func (c *DocumentCatalog) UpdateDocument(ctx context.Context, rec *domain.DocumentRecord, newHash, newFilename string, content []byte) error {
	oldBlobRef := rec.BlobRef

	if err := c.blobs.Put(ctx, newHash, content, contentTypeFor(newFilename), newFilename); err != nil {
		return fmt.Errorf("store blob: %w", err)
	}

	rec.OriginalFilename = newFilename
	rec.ActiveVersionHash = newHash
	rec.BlobRef = newHash
	rec.UpdatedAt = time.Now().UTC()

	if err := c.store.Update(ctx, rec); err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	if oldBlobRef != newHash {
		c.releaseBlob(ctx, oldBlobRef, rec.ID)
	}
	return nil
}

// DeleteDocument removes the record and, reference counted, its blob.
func (c *DocumentCatalog) DeleteDocument(ctx context.Context, id string) error {
	rec, err := c.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := c.store.Delete(ctx, rec.ID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	c.releaseBlob(ctx, rec.BlobRef, rec.ID)
	return nil
}

// GetByID returns the record for a (possibly "key=value" mangled) id.
func (c *DocumentCatalog) GetByID(ctx context.Context, id string) (*domain.DocumentRecord, error) {
	return c.store.GetByID(ctx, domain.CleanIdentifier(id))
}

// FirstByHash returns any record with the active hash.
func (c *DocumentCatalog) FirstByHash(ctx context.Context, hash string) (*domain.DocumentRecord, error) {
	return c.store.FirstByHash(ctx, domain.CleanIdentifier(hash))
}

// GetByHash returns the record with the active hash inside one collection.
func (c *DocumentCatalog) GetByHash(ctx context.Context, collection, hash string) (*domain.DocumentRecord, error) {
	return c.store.GetByHash(ctx, collection, hash)
}

// FindByHashes returns the records of a collection whose active hash is in
// the set.
func (c *DocumentCatalog) FindByHashes(ctx context.Context, collection string, hashes []string) ([]domain.DocumentRecord, error) {
	return c.store.FindByHashes(ctx, collection, hashes)
}

// FindRelatedDocuments expands a set of record ids to the records themselves
// plus their parents and children, one hop in each direction.
func (c *DocumentCatalog) FindRelatedDocuments(ctx context.Context, ids []string) ([]domain.DocumentRecord, error) {
	initial, err := c.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	related := make(map[string]struct{}, len(initial))
	for _, rec := range initial {
		related[rec.ID] = struct{}{}
		if rec.ParentID != nil && *rec.ParentID != "" {
			related[*rec.ParentID] = struct{}{}
		}
	}

	allIDs := make([]string, 0, len(related))
	for id := range related {
		allIDs = append(allIDs, id)
	}
	return c.store.FindByIDsOrParents(ctx, allIDs)
}

// GetBlob fetches stored file content by blob ref.
func (c *DocumentCatalog) GetBlob(ctx context.Context, ref string) (*domain.Blob, error) {
	return c.blobs.Get(ctx, ref)
}

// releaseBlob deletes the blob unless another record still references it.
// Failures are logged, not raised: a leaked blob is recoverable, a failed
// record operation is not.
func (c *DocumentCatalog) releaseBlob(ctx context.Context, blobRef, excludeID string) {
	count, err := c.store.CountByBlobRef(ctx, blobRef, excludeID)
	if err != nil {
		logger.Warn("Could not count references for blob %s: %v", blobRef, err)
		return
	}
	if count > 0 {
		logger.Info("Blob %s still referenced by %d other record(s), keeping it", blobRef, count)
		return
	}

	if err := c.blobs.Delete(ctx, blobRef); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Could not delete blob %s: %v", blobRef, err)
	}
}

// contentTypeFor derives a coarse content type from the filename extension.
func contentTypeFor(filename string) string {
	ext := ""
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			ext = filename[i+1:]
			break
		}
	}
	if ext == "" {
		return "application/octet-stream"
	}
	return "application/" + ext
}
