package driving

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// AskRequest is a natural-language question against the knowledge base.
type AskRequest struct {
	// Question is the user's question.
	Question string

	// Collections optionally pins the search to specific collections,
	// bypassing automatic routing.
	Collections []string

	// LimitContext selects the page-window expansion strategy instead of
	// whole-document expansion.
	LimitContext bool
}

// RetrievalService answers questions by routing, searching, expanding and
// reranking before handing the context to answer generation.
type RetrievalService interface {
	// Ask runs the full query pipeline for one question.
	Ask(ctx context.Context, req AskRequest) (*domain.AskResult, error)
}
