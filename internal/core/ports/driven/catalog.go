package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// CatalogStore persists document records. Backed by Postgres; an embedded
// SQLite driver serves local setups and tests. Result set ordering is not
// significant.
type CatalogStore interface {
	// Insert stores a new record. The ID must already be assigned.
	Insert(ctx context.Context, rec *domain.DocumentRecord) error

	// Update rewrites the mutable fields (hash, filename, blob ref,
	// updated-at) of an existing record.
	Update(ctx context.Context, rec *domain.DocumentRecord) error

	// Delete removes a record by id.
	Delete(ctx context.Context, id string) error

	// GetByID returns the record or domain.ErrNotFound. A malformed id
	// is reported as not found, not as a format error.
	GetByID(ctx context.Context, id string) (*domain.DocumentRecord, error)

	// GetByHash returns the record with the active hash inside one
	// collection, or domain.ErrNotFound.
	GetByHash(ctx context.Context, collection, hash string) (*domain.DocumentRecord, error)

	// FirstByHash returns any record with the active hash regardless of
	// collection, or domain.ErrNotFound.
	FirstByHash(ctx context.Context, hash string) (*domain.DocumentRecord, error)

	// FindByHashes returns the records of a collection whose active hash
	// is in the set.
	FindByHashes(ctx context.Context, collection string, hashes []string) ([]domain.DocumentRecord, error)

	// FindByIDs returns the records whose id is in the set. Unknown ids
	// are skipped, not errors.
	FindByIDs(ctx context.Context, ids []string) ([]domain.DocumentRecord, error)

	// FindByIDsOrParents returns records whose id OR parent id is in the
	// set. This is the single query behind one-hop relative expansion.
	FindByIDsOrParents(ctx context.Context, ids []string) ([]domain.DocumentRecord, error)

	// CountByBlobRef counts records referencing the blob, excluding the
	// given record id. Drives reference-counted blob deletion.
	CountByBlobRef(ctx context.Context, blobRef, excludeID string) (int64, error)

	// Close releases the underlying connection.
	Close() error
}
