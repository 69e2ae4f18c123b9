package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// BlobStore stores raw file content addressed by content hash. A blob may
// back more than one document record; deletion is idempotent so a
// lost reference-count race can leak a blob but never double-free one.
// Backed by MinIO.
type BlobStore interface {
	// Put stores content under the given ref. Writing an existing ref is
	// a no-op overwrite with identical bytes (content addressing).
	Put(ctx context.Context, ref string, content []byte, contentType, filename string) error

	// Get returns the blob or domain.ErrNotFound.
	Get(ctx context.Context, ref string) (*domain.Blob, error)

	// Exists reports whether the ref is present.
	Exists(ctx context.Context, ref string) (bool, error)

	// Delete removes the blob. Deleting a missing ref is not an error.
	Delete(ctx context.Context, ref string) error
}
