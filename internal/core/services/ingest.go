package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// documentChunker segments extracted pages into chunks.
type documentChunker interface {
	Chunk(pages []driven.Page, documentHash, filename string) ([]domain.Chunk, error)
}

// IngestService runs the ingestion pipeline: extract, chunk, embed, index,
// catalogue. Handled failures (unsupported format, no text, unknown ids,
// duplicate content) come back as unsuccessful results, not errors.
type IngestService struct {
	extractor driven.TextExtractor
	chunker   documentChunker
	embedder  driven.EmbeddingService
	index     driven.DocumentIndex
	catalog   *DocumentCatalog
	scratch   string
}

// NewIngestService creates a new ingest service. scratchDir is where uploads
// are parked during processing; empty means the system temp directory.
func NewIngestService(
	extractor driven.TextExtractor,
	chunker documentChunker,
	embedder driven.EmbeddingService,
	index driven.DocumentIndex,
	catalog *DocumentCatalog,
	scratchDir string,
) *IngestService {
	if scratchDir == "" {
		scratchDir = filepath.Join(os.TempDir(), "corpus")
	}
	return &IngestService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		catalog:   catalog,
		scratch:   scratchDir,
	}
}

// Ingest creates or updates a document: the content is hashed, extracted,
// chunked, embedded and indexed, then the catalog record is created or
// swapped to the new version.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.IngestResult, error) {
	if len(req.Content) == 0 {
		return &domain.IngestResult{OpResult: domain.Failure("The uploaded file is empty.")}, nil
	}
	if req.Collection == "" {
		return &domain.IngestResult{OpResult: domain.Failure("No target collection given.")}, nil
	}

	hash := domain.HashContent(req.Content)

	// Identical content inside one collection is a conflict, not a new
	// version.
	existing, err := s.catalog.GetByHash(ctx, req.Collection, hash)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check duplicate hash: %w", err)
	}
	if existing != nil {
		return &domain.IngestResult{
			OpResult: domain.Failure(fmt.Sprintf(
				"A document with identical content already exists in collection %q (document %s).",
				req.Collection, existing.ID)),
			DocumentID:  existing.ID,
			VersionHash: hash,
		}, nil
	}

	cleanup, err := s.parkUpload(req.Filename, req.Content)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	pages, err := s.extractor.Extract(ctx, req.Content, filepath.Ext(req.Filename))
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedFormat) {
			return &domain.IngestResult{OpResult: domain.Failure(fmt.Sprintf("Unsupported file format for %q.", req.Filename))}, nil
		}
		if errors.Is(err, domain.ErrExtraction) {
			return &domain.IngestResult{OpResult: domain.Failure(fmt.Sprintf("Could not extract text from %q: %v", req.Filename, err))}, nil
		}
		return nil, fmt.Errorf("extract %q: %w", req.Filename, err)
	}

	chunks, err := s.chunker.Chunk(pages, hash, req.Filename)
	if err != nil {
		if errors.Is(err, domain.ErrNoText) {
			return &domain.IngestResult{OpResult: domain.Failure(fmt.Sprintf("No usable text survived extraction of %q.", req.Filename))}, nil
		}
		return nil, fmt.Errorf("chunk %q: %w", req.Filename, err)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}

	if err := s.index.IndexChunks(ctx, req.Collection, chunks, vectors); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}
	logger.Info("Indexed %d chunk(s) of %q into %q", len(chunks), req.Filename, req.Collection)

	if req.UpdateID != "" {
		return s.finishUpdate(ctx, req, hash, len(chunks))
	}
	return s.finishCreate(ctx, req, hash, len(chunks))
}

// finishCreate inserts the catalog record for a newly ingested document.
func (s *IngestService) finishCreate(ctx context.Context, req driving.IngestRequest, hash string, chunkCount int) (*domain.IngestResult, error) {
	id, err := s.catalog.CreateDocument(ctx, req.Filename, req.Collection, hash, req.Content, req.ParentID)
	if err != nil {
		return nil, fmt.Errorf("create catalog record: %w", err)
	}

	return &domain.IngestResult{
		OpResult:    domain.Ok("Document created and indexed."),
		DocumentID:  id,
		VersionHash: hash,
		ChunkCount:  chunkCount,
	}, nil
}

// finishUpdate purges the old version's vectors and swaps the record to the
// new version. The new vectors are already indexed at this point; a failure
// here leaves both versions searchable rather than neither.
func (s *IngestService) finishUpdate(ctx context.Context, req driving.IngestRequest, hash string, chunkCount int) (*domain.IngestResult, error) {
	rec, err := s.catalog.GetByID(ctx, req.UpdateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.IngestResult{OpResult: domain.Failure(fmt.Sprintf("Document %s not found for update.", req.UpdateID))}, nil
		}
		return nil, fmt.Errorf("load record %s: %w", req.UpdateID, err)
	}

	deleted, err := s.index.DeleteByDocumentHash(ctx, req.Collection, rec.ActiveVersionHash)
	if err != nil {
		return nil, fmt.Errorf("purge old vectors: %w", err)
	}
	if !deleted {
		logger.Warn("No vectors found for previous version %s", rec.ActiveVersionHash)
	}

	if err := s.catalog.UpdateDocument(ctx, rec, hash, req.Filename, req.Content); err != nil {
		return nil, fmt.Errorf("update catalog record: %w", err)
	}

	return &domain.IngestResult{
		OpResult:    domain.Ok("Document updated."),
		DocumentID:  rec.ID,
		VersionHash: hash,
		ChunkCount:  chunkCount,
	}, nil
}

// Delete removes a document's vectors, record and (reference counted) blob.
func (s *IngestService) Delete(ctx context.Context, documentID string) (*domain.OpResult, error) {
	rec, err := s.catalog.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			result := domain.Failure(fmt.Sprintf("Document %s not found.", documentID))
			return &result, nil
		}
		return nil, fmt.Errorf("load record %s: %w", documentID, err)
	}

	deleted, err := s.index.DeleteByDocumentHash(ctx, rec.CollectionName, rec.ActiveVersionHash)
	if err != nil {
		return nil, fmt.Errorf("delete vectors: %w", err)
	}
	if !deleted {
		logger.Warn("No vectors found for document %s (hash %s)", rec.ID, rec.ActiveVersionHash)
	}

	if err := s.catalog.DeleteDocument(ctx, rec.ID); err != nil {
		return nil, fmt.Errorf("delete catalog record: %w", err)
	}

	result := domain.Ok(fmt.Sprintf("Document %s deleted.", rec.ID))
	return &result, nil
}

// Download fetches the stored file content for a version hash.
func (s *IngestService) Download(ctx context.Context, hash string) (*domain.Blob, *domain.OpResult, error) {
	rec, err := s.catalog.FirstByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			result := domain.Failure("Document metadata not found.")
			return nil, &result, nil
		}
		return nil, nil, fmt.Errorf("load record for hash %s: %w", hash, err)
	}

	blob, err := s.catalog.GetBlob(ctx, rec.BlobRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			result := domain.Failure("File content missing from the blob store.")
			return nil, &result, nil
		}
		return nil, nil, fmt.Errorf("load blob %s: %w", rec.BlobRef, err)
	}

	result := domain.Ok("File ready for download.")
	return blob, &result, nil
}

// parkUpload writes the upload into the scratch directory for the duration
// of the pipeline, so a crashed ingest leaves the input behind for
// inspection. The returned cleanup removes it.
func (s *IngestService) parkUpload(filename string, content []byte) (func(), error) {
	if err := os.MkdirAll(s.scratch, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	path := filepath.Join(s.scratch, fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(filename)))
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return nil, fmt.Errorf("park upload: %w", err)
	}

	return func() {
		if err := os.Remove(path); err != nil {
			logger.Warn("Could not remove scratch file %s: %v", path, err)
		}
	}, nil
}
