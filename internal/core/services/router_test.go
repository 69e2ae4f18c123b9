package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func routerProfiles() []domain.CollectionProfile {
	return []domain.CollectionProfile{
		{Name: "contracts", Descriptions: []string{"contract terms", "legal clauses"}},
		{Name: "invoices", Descriptions: []string{"billing amounts"}},
	}
}

func routerEmbedder() *fakeEmbedder {
	e := newFakeEmbedder(2)
	e.set("contract terms", []float32{1, 0})
	e.set("legal clauses", []float32{1, 0})
	e.set("billing amounts", []float32{0, 1})
	return e
}

func TestSelectCollections_AboveThreshold(t *testing.T) {
	router := NewCollectionRouter(routerEmbedder(), routerProfiles(), 0.8)

	selected, err := router.SelectCollections(context.Background(), []float32{1, 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"contracts"}, selected)
}

func TestSelectCollections_MultipleMatches(t *testing.T) {
	router := NewCollectionRouter(routerEmbedder(), routerProfiles(), 0.5)

	// Equidistant from both profiles.
	selected, err := router.SelectCollections(context.Background(), []float32{1, 1})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"contracts", "invoices"}, selected)
}

func TestSelectCollections_FallbackToBest(t *testing.T) {
	router := NewCollectionRouter(routerEmbedder(), routerProfiles(), 0.99)

	// Slightly closer to invoices; nothing reaches the threshold.
	selected, err := router.SelectCollections(context.Background(), []float32{0.1, 0.9})
	require.NoError(t, err)
	assert.Equal(t, []string{"invoices"}, selected)
}

func TestSelectCollections_NoProfiles(t *testing.T) {
	router := NewCollectionRouter(routerEmbedder(), nil, 0.5)

	_, err := router.SelectCollections(context.Background(), []float32{1, 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMeanVector(t *testing.T) {
	mean := meanVector([][]float32{{1, 0}, {0, 1}})
	assert.Equal(t, []float32{0.5, 0.5}, mean)

	assert.Nil(t, meanVector(nil))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Mismatched and zero vectors score 0.
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}
