package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func seedIndex(t *testing.T) *DocumentIndex {
	t.Helper()
	ctx := context.Background()

	index := NewDocumentIndex()
	require.NoError(t, index.CreateCollection(ctx, "contracts", 3))

	chunks := []domain.Chunk{
		{Text: "alpha", DocumentHash: "doc-1", Filename: "a.pdf", Index: 0, Page: 1},
		{Text: "beta", DocumentHash: "doc-1", Filename: "a.pdf", Index: 1, Page: 2},
		{Text: "gamma", DocumentHash: "doc-2", Filename: "b.pdf", Index: 0, Page: 7},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}
	require.NoError(t, index.IndexChunks(ctx, "contracts", chunks, vectors))
	return index
}

func TestIndexChunks_UnknownCollection(t *testing.T) {
	index := NewDocumentIndex()

	err := index.IndexChunks(context.Background(), "missing", []domain.Chunk{{}}, [][]float32{{1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchQuestion(t *testing.T) {
	index := seedIndex(t)

	grouped, err := index.SearchQuestion(context.Background(), []float32{1, 0, 0}, 10, []string{"contracts"}, 0.5)
	require.NoError(t, err)

	require.Contains(t, grouped, "doc-1")
	require.Contains(t, grouped, "doc-2")
	assert.Equal(t, "alpha", grouped["doc-1"][0].Text)

	// Threshold filters the orthogonal chunk.
	for _, group := range grouped {
		for _, chunk := range group {
			assert.GreaterOrEqual(t, chunk.Score, 0.5)
		}
	}
}

func TestDeleteByDocumentHash(t *testing.T) {
	index := seedIndex(t)
	ctx := context.Background()

	removed, err := index.DeleteByDocumentHash(ctx, "contracts", "doc-1")
	require.NoError(t, err)
	assert.True(t, removed)

	exists, err := index.ExistsForHash(ctx, "contracts", "doc-1")
	require.NoError(t, err)
	assert.False(t, exists)

	removed, err = index.DeleteByDocumentHash(ctx, "contracts", "doc-1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestChunksInPageWindow(t *testing.T) {
	index := seedIndex(t)

	chunks, err := index.ChunksInPageWindow(context.Background(), "contracts", "doc-1", -3, 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha", chunks[0].Text)
}

func TestChunksForHashes(t *testing.T) {
	index := seedIndex(t)

	grouped, err := index.ChunksForHashes(context.Background(), "contracts", []string{"doc-1"})
	require.NoError(t, err)
	require.Len(t, grouped, 1)
	assert.Len(t, grouped["doc-1"], 2)
	assert.Equal(t, 0, grouped["doc-1"][0].Index)
}

func TestCollectionAdmin(t *testing.T) {
	index := seedIndex(t)
	ctx := context.Background()

	err := index.CreateCollection(ctx, "contracts", 3)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	info, err := index.DescribeCollection(ctx, "contracts")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), info.PointsCount)

	names, err := index.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"contracts"}, names)

	require.NoError(t, index.DeleteCollection(ctx, "contracts"))
	err = index.DeleteCollection(ctx, "contracts")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
