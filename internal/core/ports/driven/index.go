package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// ScrollCap bounds filtered scans against the vector store. Results beyond
// the cap are silently truncated; callers working with pathologically large
// documents must not assume a complete fetch.
const ScrollCap = 1000

// DocumentIndex maps domain operations onto the vector store's primitives
// (upsert, filtered scan, filtered delete, nearest-neighbour search).
// Backed by Qdrant.
type DocumentIndex interface {
	// IndexChunks upserts chunks paired 1:1 with precomputed embeddings.
	// Batches are best-effort: an underlying store error is reported as a
	// failure but may leave a partial write behind. The catalog layer
	// owns retry decisions.
	IndexChunks(ctx context.Context, collection string, chunks []domain.Chunk, vectors [][]float32) error

	// DeleteByDocumentHash removes every chunk tagged with the hash.
	// Returns false without error when no matching vectors exist.
	DeleteByDocumentHash(ctx context.Context, collection, hash string) (bool, error)

	// SearchQuestion runs a nearest-neighbour search per collection,
	// capped at topK each, discards hits under scoreThreshold and groups
	// the survivors by document hash, each group sorted by descending
	// score.
	SearchQuestion(ctx context.Context, vector []float32, topK int, collections []string, scoreThreshold float32) (domain.ChunksByDocument, error)

	// ChunksInPageWindow scans for chunks of one document within the
	// inclusive page window. minPage is clamped to >= 1.
	ChunksInPageWindow(ctx context.Context, collection, hash string, minPage, maxPage int) ([]domain.ScoredChunk, error)

	// ChunksForHashes scans for all chunks of the given document hashes,
	// grouped by hash.
	ChunksForHashes(ctx context.Context, collection string, hashes []string) (domain.ChunksByDocument, error)

	// ExistsForHash reports whether at least one chunk carries the hash.
	ExistsForHash(ctx context.Context, collection, hash string) (bool, error)

	// CreateCollection creates a cosine-distance collection with the
	// declared vector dimension.
	CreateCollection(ctx context.Context, name string, vectorSize uint64) error

	// DeleteCollection removes a collection and all its points.
	DeleteCollection(ctx context.Context, name string) error

	// DescribeCollection returns status and point counts.
	DescribeCollection(ctx context.Context, name string) (*domain.CollectionInfo, error)

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// Close releases the underlying client connection.
	Close() error
}
