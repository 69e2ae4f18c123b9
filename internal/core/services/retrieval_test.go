package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

// retrievalFixture wires a full retrieval pipeline over in-memory stores:
// one contract (three pages) with an amendment linked to it, plus an
// unrelated invoice collection.
type retrievalFixture struct {
	service  *RetrievalService
	index    *memory.DocumentIndex
	catalog  *DocumentCatalog
	answerer *fakeAnswerer
	parentID string
	childID  string
}

const (
	parentHash = "hash-parent"
	childHash  = "hash-child"
)

func newRetrievalFixture(t *testing.T) *retrievalFixture {
	t.Helper()
	ctx := context.Background()

	embedder := newFakeEmbedder(2).
		set("what does the termination clause say", []float32{1, 0}).
		set("contract terms", []float32{1, 0}).
		set("billing amounts", []float32{0, 1})

	index := memory.NewDocumentIndex()
	require.NoError(t, index.CreateCollection(ctx, "contracts", 2))
	require.NoError(t, index.CreateCollection(ctx, "invoices", 2))

	parentChunks := []domain.Chunk{
		{Text: "intro", DocumentHash: parentHash, Filename: "contract.pdf", Index: 0, Page: 1},
		{Text: "termination clause", DocumentHash: parentHash, Filename: "contract.pdf", Index: 1, Page: 2},
		{Text: "payment terms", DocumentHash: parentHash, Filename: "contract.pdf", Index: 2, Page: 3},
	}
	parentVectors := [][]float32{{0, 1}, {1, 0}, {0, 1}}
	require.NoError(t, index.IndexChunks(ctx, "contracts", parentChunks, parentVectors))

	childChunks := []domain.Chunk{
		{Text: "amendment text", DocumentHash: childHash, Filename: "amendment.pdf", Index: 0, Page: 1},
	}
	require.NoError(t, index.IndexChunks(ctx, "contracts", childChunks, [][]float32{{0, 1}}))

	catalog := NewDocumentCatalog(memory.NewCatalogStore(), memory.NewBlobStore())
	parentID, err := catalog.CreateDocument(ctx, "contract.pdf", "contracts", parentHash, []byte("parent"), "")
	require.NoError(t, err)
	childID, err := catalog.CreateDocument(ctx, "amendment.pdf", "contracts", childHash, []byte("child"), parentID)
	require.NoError(t, err)

	scorer := newFakeScorer().
		set("intro", 0.6).
		set("termination clause", 0.9).
		set("payment terms", 0.7).
		set("amendment text", 0.65)

	profiles := []domain.CollectionProfile{
		{Name: "contracts", Descriptions: []string{"contract terms"}},
		{Name: "invoices", Descriptions: []string{"billing amounts"}},
	}

	answerer := &fakeAnswerer{answer: &domain.Answer{Text: "Thirty days notice."}}

	service := NewRetrievalService(
		embedder,
		index,
		catalog,
		NewCollectionRouter(embedder, profiles, 0.5),
		NewReranker(scorer, 0.5, 10),
		answerer,
		RetrievalConfig{
			TopK:           10,
			ScoreThreshold: 0.5,
			WindowMargin:   1,
			BaseURL:        "http://api.local",
		},
	)

	return &retrievalFixture{
		service:  service,
		index:    index,
		catalog:  catalog,
		answerer: answerer,
		parentID: parentID,
		childID:  childID,
	}
}

func TestAsk_WholeDocumentStrategy(t *testing.T) {
	f := newRetrievalFixture(t)

	result, err := f.service.Ask(context.Background(), driving.AskRequest{
		Question: "what does the termination clause say",
	})
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)

	assert.Equal(t, []string{"contracts"}, result.Collections)
	assert.Equal(t, "Thirty days notice.", result.Answer.Text)

	// Whole-document expansion pulls in the linked amendment too.
	assert.Contains(t, result.Context, parentHash)
	assert.Contains(t, result.Context, childHash)
	assert.Len(t, result.Context[parentHash], 3)

	assert.Contains(t, f.answerer.lastPrompt, "termination clause")
	assert.Contains(t, f.answerer.lastPrompt, "http://api.local")
	assert.Contains(t, f.answerer.lastPrompt, "what does the termination clause say")
}

func TestAsk_WindowStrategy(t *testing.T) {
	f := newRetrievalFixture(t)

	result, err := f.service.Ask(context.Background(), driving.AskRequest{
		Question:     "what does the termination clause say",
		LimitContext: true,
	})
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)

	// Match on page 2, margin 1: pages 1 to 3 of the matched document only.
	assert.Contains(t, result.Context, parentHash)
	assert.NotContains(t, result.Context, childHash)
	assert.Len(t, result.Context[parentHash], 3)
}

func TestAsk_WindowStrategyAcrossCollections(t *testing.T) {
	f := newRetrievalFixture(t)
	ctx := context.Background()

	// An invoice in its own collection that also matches the question.
	const invoiceHash = "hash-invoice"
	invoiceChunks := []domain.Chunk{
		{Text: "invoice header", DocumentHash: invoiceHash, Filename: "invoice.pdf", Index: 0, Page: 1},
		{Text: "late payment penalty", DocumentHash: invoiceHash, Filename: "invoice.pdf", Index: 1, Page: 2},
		{Text: "invoice footer", DocumentHash: invoiceHash, Filename: "invoice.pdf", Index: 2, Page: 3},
	}
	require.NoError(t, f.index.IndexChunks(ctx, "invoices", invoiceChunks, [][]float32{{0, 1}, {1, 0}, {0, 1}}))
	_, err := f.catalog.CreateDocument(ctx, "invoice.pdf", "invoices", invoiceHash, []byte("invoice"), "")
	require.NoError(t, err)

	scorer := newFakeScorer().
		set("intro", 0.6).
		set("termination clause", 0.9).
		set("payment terms", 0.7).
		set("invoice header", 0.55).
		set("late payment penalty", 0.8).
		set("invoice footer", 0.6)
	f.service.reranker = NewReranker(scorer, 0.5, 10)

	result, err := f.service.Ask(ctx, driving.AskRequest{
		Question:     "what does the termination clause say",
		Collections:  []string{"contracts", "invoices"},
		LimitContext: true,
	})
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)

	// Each matched document's page window comes from its owning collection,
	// resolved through the catalog when more than one is searched.
	require.Contains(t, result.Context, parentHash)
	require.Contains(t, result.Context, invoiceHash)
	assert.Len(t, result.Context[parentHash], 3)
	assert.Len(t, result.Context[invoiceHash], 3)
	assert.NotContains(t, result.Context, childHash)
}

func TestAsk_CallerPinnedCollections(t *testing.T) {
	f := newRetrievalFixture(t)

	result, err := f.service.Ask(context.Background(), driving.AskRequest{
		Question:    "what does the termination clause say",
		Collections: []string{"invoices"},
	})
	require.NoError(t, err)

	// The invoices collection holds nothing relevant; routing was bypassed.
	assert.False(t, result.Success)
	assert.Equal(t, []string{"invoices"}, result.Collections)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	f := newRetrievalFixture(t)

	result, err := f.service.Ask(context.Background(), driving.AskRequest{Question: "   "})
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestAsk_SyncDivergence(t *testing.T) {
	f := newRetrievalFixture(t)
	ctx := context.Background()

	// Orphan the indexed vectors: the catalog loses both records but the
	// index keeps its points.
	require.NoError(t, f.catalog.DeleteDocument(ctx, f.childID))
	require.NoError(t, f.catalog.DeleteDocument(ctx, f.parentID))

	result, err := f.service.Ask(ctx, driving.AskRequest{
		Question: "what does the termination clause say",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "out of sync")
}

func TestAsk_NothingSurvivesRerank(t *testing.T) {
	f := newRetrievalFixture(t)

	// A reranker threshold nothing can reach.
	f.service.reranker = NewReranker(newFakeScorer(), 0.99, 10)

	result, err := f.service.Ask(context.Background(), driving.AskRequest{
		Question: "what does the termination clause say",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Nil(t, result.Answer)
}
