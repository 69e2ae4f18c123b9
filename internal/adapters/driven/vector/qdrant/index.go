// Package qdrant provides the document index adapter backed by a Qdrant
// vector store over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.DocumentIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultHost = "localhost"
	DefaultPort = 6334
)

// Config holds configuration for the Qdrant index.
type Config struct {
	// Host is the Qdrant gRPC host (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// APIKey authenticates against a secured Qdrant instance (optional).
	APIKey string

	// UseTLS enables TLS on the gRPC channel.
	UseTLS bool
}

// Index stores and retrieves document chunks in Qdrant.
type Index struct {
	client *qdrant.Client
}

// New creates a Qdrant-backed document index.
func New(cfg Config) (*Index, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: create client: %w", err)
	}

	return &Index{client: client}, nil
}

// IndexChunks upserts chunks with their embeddings into the collection.
// Point IDs are fresh UUIDs; identity lives in the payload, so re-ingesting
// a document requires deleting its old points first.
func (i *Index) IndexChunks(ctx context.Context, collection string, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("qdrant: %w: %d chunks but %d vectors", domain.ErrInvalidInput, len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for idx, chunk := range chunks {
		points[idx] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.New().String()),
			Vectors: qdrant.NewVectors(vectors[idx]...),
			Payload: qdrant.NewValueMap(chunkPayload(chunk)),
		}
	}

	_, err := i.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %d points: %w", len(points), err)
	}
	return nil
}

// DeleteByDocumentHash removes every chunk of one document version.
func (i *Index) DeleteByDocumentHash(ctx context.Context, collection, hash string) (bool, error) {
	filter := hashFilter(hash)

	count, err := i.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Filter:         filter,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return false, fmt.Errorf("qdrant: count points for %s: %w", hash, err)
	}
	if count == 0 {
		return false, nil
	}

	_, err = i.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelectorFilter(filter),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return false, fmt.Errorf("qdrant: delete points for %s: %w", hash, err)
	}
	return true, nil
}

// SearchQuestion runs nearest-neighbour searches across the collections and
// groups the hits by document hash.
func (i *Index) SearchQuestion(ctx context.Context, vector []float32, topK int, collections []string, scoreThreshold float32) (domain.ChunksByDocument, error) {
	grouped := make(domain.ChunksByDocument)

	for _, collection := range collections {
		points, err := i.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: collection,
			Query:          qdrant.NewQuery(vector...),
			Limit:          qdrant.PtrOf(uint64(topK)),
			ScoreThreshold: qdrant.PtrOf(scoreThreshold),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant: query %q: %w", collection, err)
		}

		for _, point := range points {
			chunk := chunkFromPayload(point.Payload)
			grouped[chunk.DocumentHash] = append(grouped[chunk.DocumentHash], domain.ScoredChunk{
				Chunk: chunk,
				Score: float64(point.Score),
			})
		}
	}

	sortGroupsByScore(grouped)
	return grouped, nil
}

// ChunksInPageWindow scans one document's chunks inside the inclusive page
// window, ordered by page then chunk index.
func (i *Index) ChunksInPageWindow(ctx context.Context, collection, hash string, minPage, maxPage int) ([]domain.ScoredChunk, error) {
	if minPage < 1 {
		minPage = 1
	}

	filter := hashFilter(hash)
	filter.Must = append(filter.Must, qdrant.NewRange(payloadPage, &qdrant.Range{
		Gte: qdrant.PtrOf(float64(minPage)),
		Lte: qdrant.PtrOf(float64(maxPage)),
	}))

	points, err := i.scroll(ctx, collection, filter)
	if err != nil {
		return nil, err
	}

	chunks := make([]domain.ScoredChunk, 0, len(points))
	for _, point := range points {
		chunks = append(chunks, domain.ScoredChunk{Chunk: chunkFromPayload(point.Payload)})
	}

	sort.Slice(chunks, func(a, b int) bool {
		if chunks[a].Page != chunks[b].Page {
			return chunks[a].Page < chunks[b].Page
		}
		return chunks[a].Index < chunks[b].Index
	})
	return chunks, nil
}

// ChunksForHashes scans all chunks of the given document versions, grouped
// by hash with each group in chunk order.
func (i *Index) ChunksForHashes(ctx context.Context, collection string, hashes []string) (domain.ChunksByDocument, error) {
	grouped := make(domain.ChunksByDocument)
	if len(hashes) == 0 {
		return grouped, nil
	}

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatchKeywords(payloadDocumentHash, hashes...)},
	}

	points, err := i.scroll(ctx, collection, filter)
	if err != nil {
		return nil, err
	}

	for _, point := range points {
		chunk := chunkFromPayload(point.Payload)
		grouped[chunk.DocumentHash] = append(grouped[chunk.DocumentHash], domain.ScoredChunk{Chunk: chunk})
	}

	for _, group := range grouped {
		sort.Slice(group, func(a, b int) bool { return group[a].Index < group[b].Index })
	}
	return grouped, nil
}

// ExistsForHash reports whether any chunk carries the document hash.
func (i *Index) ExistsForHash(ctx context.Context, collection, hash string) (bool, error) {
	count, err := i.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Filter:         hashFilter(hash),
		Exact:          qdrant.PtrOf(false),
	})
	if err != nil {
		return false, fmt.Errorf("qdrant: count points for %s: %w", hash, err)
	}
	return count > 0, nil
}

// CreateCollection creates a cosine-distance collection.
func (i *Index) CreateCollection(ctx context.Context, name string, vectorSize uint64) error {
	exists, err := i.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("qdrant: check collection %q: %w", name, err)
	}
	if exists {
		return fmt.Errorf("qdrant: collection %q: %w", name, domain.ErrAlreadyExists)
	}

	err = i.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %q: %w", name, err)
	}
	return nil
}

// DeleteCollection removes a collection and all of its points.
func (i *Index) DeleteCollection(ctx context.Context, name string) error {
	exists, err := i.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("qdrant: check collection %q: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("qdrant: collection %q: %w", name, domain.ErrNotFound)
	}

	if err := i.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("qdrant: delete collection %q: %w", name, err)
	}
	return nil
}

// DescribeCollection returns status and point counts for one collection.
func (i *Index) DescribeCollection(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	info, err := i.client.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("qdrant: describe collection %q: %w", name, err)
	}

	result := &domain.CollectionInfo{
		Name:          name,
		Status:        info.GetStatus().String(),
		SegmentsCount: info.GetSegmentsCount(),
	}
	if info.PointsCount != nil {
		result.PointsCount = info.GetPointsCount()
	}
	return result, nil
}

// ListCollections returns the names of all collections.
func (i *Index) ListCollections(ctx context.Context) ([]string, error) {
	names, err := i.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("qdrant: list collections: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// CollectionExists reports whether the collection exists.
func (i *Index) CollectionExists(ctx context.Context, name string) (bool, error) {
	exists, err := i.client.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("qdrant: check collection %q: %w", name, err)
	}
	return exists, nil
}

// Close releases the gRPC connection.
func (i *Index) Close() error {
	return i.client.Close()
}

// scroll fetches points matching the filter, capped at driven.ScrollCap.
func (i *Index) scroll(ctx context.Context, collection string, filter *qdrant.Filter) ([]*qdrant.RetrievedPoint, error) {
	points, err := i.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collection,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(driven.ScrollCap)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: scroll %q: %w", collection, err)
	}
	return points, nil
}

func hashFilter(hash string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch(payloadDocumentHash, hash)},
	}
}
