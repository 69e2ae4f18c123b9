package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file extension with no extractor.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtraction indicates the document bytes could not be parsed.
	ErrExtraction = errors.New("text extraction failed")

	// ErrNoText indicates extraction and cleaning left nothing to chunk.
	ErrNoText = errors.New("no text extracted")

	// ErrStoreUnavailable indicates a remote store could not be reached at
	// construction time. Operations never start against a dead store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSyncDivergence indicates the vector index and the catalog disagree
	// about a document's existence. Fatal for the current request; it is
	// detected, never auto-repaired.
	ErrSyncDivergence = errors.New("vector index and catalog out of sync")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRerankUnavailable indicates the reranking service is not configured.
	ErrRerankUnavailable = errors.New("rerank service unavailable")

	// ErrLLMUnavailable indicates the answer generation service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
