package driving

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// CollectionService administers vector collections.
type CollectionService interface {
	// Create creates a collection sized to the embedding model.
	Create(ctx context.Context, name string) (*domain.OpResult, error)

	// Delete removes a collection and its points.
	Delete(ctx context.Context, name string) (*domain.OpResult, error)

	// List returns the names of all collections.
	List(ctx context.Context) ([]string, error)

	// Describe returns collection status and point counts.
	Describe(ctx context.Context, name string) (*domain.CollectionInfo, error)
}
