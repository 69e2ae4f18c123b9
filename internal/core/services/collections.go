package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure CollectionService implements the interface.
var _ driving.CollectionService = (*CollectionService)(nil)

// CollectionService administers vector collections. New collections are
// sized to the configured embedding model.
type CollectionService struct {
	index    driven.DocumentIndex
	embedder driven.EmbeddingService
}

// NewCollectionService creates a new collection service.
func NewCollectionService(index driven.DocumentIndex, embedder driven.EmbeddingService) *CollectionService {
	return &CollectionService{
		index:    index,
		embedder: embedder,
	}
}

// Create creates a collection with the embedding model's dimension.
func (s *CollectionService) Create(ctx context.Context, name string) (*domain.OpResult, error) {
	if name == "" {
		result := domain.Failure("Collection name is empty.")
		return &result, nil
	}

	err := s.index.CreateCollection(ctx, name, uint64(s.embedder.Dimensions()))
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			result := domain.Failure(fmt.Sprintf("Collection %q already exists.", name))
			return &result, nil
		}
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}

	logger.Info("Created collection %q with dimension %d", name, s.embedder.Dimensions())
	result := domain.Ok(fmt.Sprintf("Collection %q created.", name))
	return &result, nil
}

// Delete removes a collection and all its points.
func (s *CollectionService) Delete(ctx context.Context, name string) (*domain.OpResult, error) {
	err := s.index.DeleteCollection(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			result := domain.Failure(fmt.Sprintf("Collection %q does not exist.", name))
			return &result, nil
		}
		return nil, fmt.Errorf("delete collection %q: %w", name, err)
	}

	result := domain.Ok(fmt.Sprintf("Collection %q deleted.", name))
	return &result, nil
}

// List returns the names of all collections.
func (s *CollectionService) List(ctx context.Context) ([]string, error) {
	return s.index.ListCollections(ctx)
}

// Describe returns collection status and point counts.
func (s *CollectionService) Describe(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	return s.index.DescribeCollection(ctx, name)
}
