package cli

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

// mockIngestService returns canned results and records the last request.
type mockIngestService struct {
	lastRequest    driving.IngestRequest
	lastDeletedID  string
	lastDownloaded string

	ingestResult   *domain.IngestResult
	deleteResult   *domain.OpResult
	blob           *domain.Blob
	downloadResult *domain.OpResult
}

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*domain.IngestResult, error) {
	m.lastRequest = req
	if m.ingestResult != nil {
		return m.ingestResult, nil
	}
	return &domain.IngestResult{
		OpResult:    domain.Ok("Document created and indexed."),
		DocumentID:  "doc-1",
		VersionHash: "hash-1",
		ChunkCount:  3,
	}, nil
}

func (m *mockIngestService) Delete(_ context.Context, documentID string) (*domain.OpResult, error) {
	m.lastDeletedID = documentID
	if m.deleteResult != nil {
		return m.deleteResult, nil
	}
	result := domain.Ok("Document doc-1 deleted.")
	return &result, nil
}

func (m *mockIngestService) Download(_ context.Context, hash string) (*domain.Blob, *domain.OpResult, error) {
	m.lastDownloaded = hash
	if m.downloadResult != nil && !m.downloadResult.Success {
		return nil, m.downloadResult, nil
	}
	result := domain.Ok("File ready for download.")
	blob := m.blob
	if blob == nil {
		blob = &domain.Blob{Content: []byte("file content"), Filename: "stored.pdf"}
	}
	return blob, &result, nil
}

// mockRetrievalService returns a canned ask result.
type mockRetrievalService struct {
	lastRequest driving.AskRequest
	result      *domain.AskResult
}

func (m *mockRetrievalService) Ask(_ context.Context, req driving.AskRequest) (*domain.AskResult, error) {
	m.lastRequest = req
	if m.result != nil {
		return m.result, nil
	}
	return &domain.AskResult{
		OpResult:    domain.Ok(""),
		Answer:      &domain.Answer{Text: "Thirty days notice."},
		Collections: []string{"contracts"},
		Context: domain.ChunksByDocument{
			"hash-1": {
				{Chunk: domain.Chunk{Text: "clause", Filename: "contract.pdf", Page: 2}, Score: 0.9},
				{Chunk: domain.Chunk{Text: "intro", Filename: "contract.pdf", Page: 1}, Score: 0.6},
			},
		},
	}, nil
}

// mockCollectionService returns canned collection admin results.
type mockCollectionService struct {
	createResult *domain.OpResult
	deleteResult *domain.OpResult
	names        []string
	info         *domain.CollectionInfo
}

func (m *mockCollectionService) Create(_ context.Context, name string) (*domain.OpResult, error) {
	if m.createResult != nil {
		return m.createResult, nil
	}
	result := domain.Ok("Collection \"" + name + "\" created.")
	return &result, nil
}

func (m *mockCollectionService) Delete(_ context.Context, name string) (*domain.OpResult, error) {
	if m.deleteResult != nil {
		return m.deleteResult, nil
	}
	result := domain.Ok("Collection \"" + name + "\" deleted.")
	return &result, nil
}

func (m *mockCollectionService) List(_ context.Context) ([]string, error) {
	return m.names, nil
}

func (m *mockCollectionService) Describe(_ context.Context, name string) (*domain.CollectionInfo, error) {
	if m.info != nil {
		return m.info, nil
	}
	return &domain.CollectionInfo{Name: name, Status: "green", PointsCount: 42, SegmentsCount: 2}, nil
}

// setupTestServices installs mocks for all three services and returns a
// cleanup restoring the previous state.
func setupTestServices() (*mockIngestService, *mockRetrievalService, *mockCollectionService, func()) {
	oldIngest := ingestService
	oldRetrieval := retrievalService
	oldCollections := collectionService

	ingest := &mockIngestService{}
	retrieval := &mockRetrievalService{}
	collections := &mockCollectionService{}

	ingestService = ingest
	retrievalService = retrieval
	collectionService = collections

	return ingest, retrieval, collections, func() {
		ingestService = oldIngest
		retrievalService = oldRetrieval
		collectionService = oldCollections
	}
}
