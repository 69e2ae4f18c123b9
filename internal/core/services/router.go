package services

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// CollectionRouter picks the collections a question should be searched in by
// comparing the question embedding against the mean embedding of each
// collection's fixed description strings.
type CollectionRouter struct {
	embedder  driven.EmbeddingService
	profiles  []domain.CollectionProfile
	threshold float64

	once    sync.Once
	onceErr error
	means   map[string][]float32
}

// NewCollectionRouter creates a new collection router. Profiles are fixed
// for the process lifetime; their embeddings are computed on first use.
func NewCollectionRouter(embedder driven.EmbeddingService, profiles []domain.CollectionProfile, threshold float64) *CollectionRouter {
	return &CollectionRouter{
		embedder:  embedder,
		profiles:  profiles,
		threshold: threshold,
	}
}

// SelectCollections returns every collection whose description similarity
// reaches the threshold, falling back to the single best match. The result
// is never empty while at least one profile is configured.
func (r *CollectionRouter) SelectCollections(ctx context.Context, questionVector []float32) ([]string, error) {
	if len(r.profiles) == 0 {
		return nil, fmt.Errorf("%w: no collection profiles configured", domain.ErrInvalidInput)
	}

	if err := r.ensureMeans(ctx); err != nil {
		return nil, err
	}

	var (
		selected  []string
		bestName  string
		bestScore = math.Inf(-1)
	)
	for _, profile := range r.profiles {
		score := cosineSimilarity(questionVector, r.means[profile.Name])
		logger.Debug("Similarity with %q: %.4f", profile.Name, score)

		if score > bestScore {
			bestScore = score
			bestName = profile.Name
		}
		if score >= r.threshold {
			selected = append(selected, profile.Name)
		}
	}

	if len(selected) == 0 {
		logger.Info("No collection reached threshold %.2f, falling back to %q", r.threshold, bestName)
		return []string{bestName}, nil
	}
	return selected, nil
}

// ensureMeans embeds every profile description once and caches the means.
func (r *CollectionRouter) ensureMeans(ctx context.Context) error {
	r.once.Do(func() {
		r.means = make(map[string][]float32, len(r.profiles))
		for _, profile := range r.profiles {
			if len(profile.Descriptions) == 0 {
				r.onceErr = fmt.Errorf("%w: collection profile %q has no descriptions", domain.ErrInvalidInput, profile.Name)
				return
			}

			vectors, err := r.embedder.EmbedBatch(ctx, profile.Descriptions)
			if err != nil {
				r.onceErr = fmt.Errorf("embed descriptions for %q: %w", profile.Name, err)
				return
			}
			r.means[profile.Name] = meanVector(vectors)
		}
	})
	return r.onceErr
}

// meanVector averages equal-length vectors component-wise.
func meanVector(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}

	mean := make([]float32, len(vectors[0]))
	for _, vector := range vectors {
		for i, v := range vector {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float32(len(vectors))
	}
	return mean
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// accumulating in float64. Mismatched or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
