package driving

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// IngestRequest describes one document upload.
type IngestRequest struct {
	// Filename is the original filename, including extension.
	Filename string

	// Collection is the target vector collection.
	Collection string

	// Content is the raw file bytes.
	Content []byte

	// UpdateID, when set, replaces the active version of an existing
	// record instead of creating a new one.
	UpdateID string

	// ParentID, when set on a create, links the new record to a parent
	// document (single level, caller must not build cycles).
	ParentID string
}

// IngestService runs the ingestion pipeline: extract, chunk, embed, index,
// catalogue. Handled failures come back as unsuccessful results; errors are
// reserved for cancelled contexts and programming mistakes.
type IngestService interface {
	// Ingest creates or updates a document.
	Ingest(ctx context.Context, req IngestRequest) (*domain.IngestResult, error)

	// Delete removes a document, its vectors and (reference counted) its
	// blob.
	Delete(ctx context.Context, documentID string) (*domain.OpResult, error)

	// Download fetches the stored file content for a version hash.
	Download(ctx context.Context, hash string) (*domain.Blob, *domain.OpResult, error)
}
