package driven

import "context"

// RerankService scores (question, passage) pairs with a cross-encoder.
// Unlike EmbeddingService it sees both texts at once, which makes it far
// more precise and far more expensive; it only ever runs on the expanded
// context, never on the whole index.
type RerankService interface {
	// Score returns one relevance score per passage, in input order.
	// Scores are comparable across one call but carry no absolute scale.
	Score(ctx context.Context, question string, passages []string) ([]float64, error)

	// ModelName returns the cross-encoder model identifier.
	ModelName() string

	// Close releases resources.
	Close() error
}
