package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Reranker rescores candidate chunks against the question with a
// cross-encoder and keeps only the strongest evidence.
type Reranker struct {
	scorer    driven.RerankService
	threshold float64
	maxChunks int
}

// NewReranker creates a new reranker.
func NewReranker(scorer driven.RerankService, threshold float64, maxChunks int) *Reranker {
	return &Reranker{
		scorer:    scorer,
		threshold: threshold,
		maxChunks: maxChunks,
	}
}

// Rerank flattens the candidate groups, scores every (question, chunk) pair,
// drops chunks under the threshold, caps the survivors and regroups them by
// document hash preserving descending score order.
func (r *Reranker) Rerank(ctx context.Context, question string, grouped domain.ChunksByDocument) (domain.ChunksByDocument, error) {
	result := make(domain.ChunksByDocument)
	if grouped.TotalChunks() == 0 {
		return result, nil
	}

	flattened := make([]domain.ScoredChunk, 0, grouped.TotalChunks())
	for _, group := range grouped {
		flattened = append(flattened, group...)
	}

	passages := make([]string, len(flattened))
	for i, chunk := range flattened {
		passages[i] = chunk.Text
	}

	scores, err := r.scorer.Score(ctx, question, passages)
	if err != nil {
		return nil, fmt.Errorf("score chunks: %w", err)
	}
	if len(scores) != len(flattened) {
		return nil, fmt.Errorf("rerank: got %d scores for %d chunks", len(scores), len(flattened))
	}

	for i := range flattened {
		flattened[i].Score = scores[i]
	}

	// Deterministic order under equal scores.
	sort.Slice(flattened, func(a, b int) bool {
		if flattened[a].Score != flattened[b].Score {
			return flattened[a].Score > flattened[b].Score
		}
		if flattened[a].DocumentHash != flattened[b].DocumentHash {
			return flattened[a].DocumentHash < flattened[b].DocumentHash
		}
		return flattened[a].Index < flattened[b].Index
	})

	kept := 0
	for _, chunk := range flattened {
		if chunk.Score < r.threshold {
			break
		}
		if kept >= r.maxChunks {
			break
		}
		result[chunk.DocumentHash] = append(result[chunk.DocumentHash], chunk)
		kept++
	}

	logger.Debug("Reranked %d chunk(s), kept %d above threshold %.2f", len(flattened), kept, r.threshold)
	return result, nil
}
