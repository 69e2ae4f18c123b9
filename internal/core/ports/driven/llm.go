package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// AnswerService generates the final grounded answer from an assembled
// prompt. The provider may reply with free text or a structured JSON
// payload; adapters normalise both into domain.Answer.
type AnswerService interface {
	// Answer sends the prompt and returns the model output.
	Answer(ctx context.Context, prompt string) (*domain.Answer, error)

	// ModelName returns the generation model identifier.
	ModelName() string

	// Close releases resources.
	Close() error
}
