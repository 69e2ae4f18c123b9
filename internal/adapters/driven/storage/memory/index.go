// Package memory provides in-memory implementations of the driven storage
// ports for testing and local experiments.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure DocumentIndex implements the interface.
var _ driven.DocumentIndex = (*DocumentIndex)(nil)

// indexedPoint is one stored chunk with its vector.
type indexedPoint struct {
	chunk  domain.Chunk
	vector []float32
}

// DocumentIndex is an in-memory implementation of driven.DocumentIndex.
type DocumentIndex struct {
	mu          sync.RWMutex
	collections map[string][]indexedPoint
	dimensions  map[string]uint64
}

// NewDocumentIndex creates a new in-memory document index.
func NewDocumentIndex() *DocumentIndex {
	return &DocumentIndex{
		collections: make(map[string][]indexedPoint),
		dimensions:  make(map[string]uint64),
	}
}

// IndexChunks stores chunks with their vectors.
func (i *DocumentIndex) IndexChunks(_ context.Context, collection string, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("memory: %w: %d chunks but %d vectors", domain.ErrInvalidInput, len(chunks), len(vectors))
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	points, ok := i.collections[collection]
	if !ok {
		return fmt.Errorf("memory: collection %q: %w", collection, domain.ErrNotFound)
	}

	for idx, chunk := range chunks {
		points = append(points, indexedPoint{chunk: chunk, vector: vectors[idx]})
	}
	i.collections[collection] = points
	return nil
}

// DeleteByDocumentHash removes every chunk tagged with the hash.
func (i *DocumentIndex) DeleteByDocumentHash(_ context.Context, collection, hash string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	points, ok := i.collections[collection]
	if !ok {
		return false, nil
	}

	kept := points[:0]
	removed := false
	for _, point := range points {
		if point.chunk.DocumentHash == hash {
			removed = true
			continue
		}
		kept = append(kept, point)
	}
	i.collections[collection] = kept
	return removed, nil
}

// SearchQuestion runs a cosine-similarity search per collection.
func (i *DocumentIndex) SearchQuestion(_ context.Context, vector []float32, topK int, collections []string, scoreThreshold float32) (domain.ChunksByDocument, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	grouped := make(domain.ChunksByDocument)
	for _, collection := range collections {
		points := i.collections[collection]

		hits := make([]domain.ScoredChunk, 0, len(points))
		for _, point := range points {
			score := cosine(vector, point.vector)
			if score < float64(scoreThreshold) {
				continue
			}
			hits = append(hits, domain.ScoredChunk{Chunk: point.chunk, Score: score})
		}

		sort.Slice(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
		if len(hits) > topK {
			hits = hits[:topK]
		}

		for _, hit := range hits {
			grouped[hit.DocumentHash] = append(grouped[hit.DocumentHash], hit)
		}
	}

	for _, group := range grouped {
		sort.Slice(group, func(a, b int) bool { return group[a].Score > group[b].Score })
	}
	return grouped, nil
}

// ChunksInPageWindow returns one document's chunks inside the page window.
func (i *DocumentIndex) ChunksInPageWindow(_ context.Context, collection, hash string, minPage, maxPage int) ([]domain.ScoredChunk, error) {
	if minPage < 1 {
		minPage = 1
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	var chunks []domain.ScoredChunk
	for _, point := range i.collections[collection] {
		if point.chunk.DocumentHash != hash {
			continue
		}
		if point.chunk.Page < minPage || point.chunk.Page > maxPage {
			continue
		}
		chunks = append(chunks, domain.ScoredChunk{Chunk: point.chunk})
		if len(chunks) >= driven.ScrollCap {
			break
		}
	}

	sort.Slice(chunks, func(a, b int) bool {
		if chunks[a].Page != chunks[b].Page {
			return chunks[a].Page < chunks[b].Page
		}
		return chunks[a].Index < chunks[b].Index
	})
	return chunks, nil
}

// ChunksForHashes returns all chunks of the given hashes, grouped.
func (i *DocumentIndex) ChunksForHashes(_ context.Context, collection string, hashes []string) (domain.ChunksByDocument, error) {
	wanted := make(map[string]struct{}, len(hashes))
	for _, hash := range hashes {
		wanted[hash] = struct{}{}
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	grouped := make(domain.ChunksByDocument)
	total := 0
	for _, point := range i.collections[collection] {
		if _, ok := wanted[point.chunk.DocumentHash]; !ok {
			continue
		}
		grouped[point.chunk.DocumentHash] = append(grouped[point.chunk.DocumentHash], domain.ScoredChunk{Chunk: point.chunk})
		total++
		if total >= driven.ScrollCap {
			break
		}
	}

	for _, group := range grouped {
		sort.Slice(group, func(a, b int) bool { return group[a].Index < group[b].Index })
	}
	return grouped, nil
}

// ExistsForHash reports whether at least one chunk carries the hash.
func (i *DocumentIndex) ExistsForHash(_ context.Context, collection, hash string) (bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	for _, point := range i.collections[collection] {
		if point.chunk.DocumentHash == hash {
			return true, nil
		}
	}
	return false, nil
}

// CreateCollection creates a collection.
func (i *DocumentIndex) CreateCollection(_ context.Context, name string, vectorSize uint64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.collections[name]; ok {
		return fmt.Errorf("memory: collection %q: %w", name, domain.ErrAlreadyExists)
	}
	i.collections[name] = nil
	i.dimensions[name] = vectorSize
	return nil
}

// DeleteCollection removes a collection and its points.
func (i *DocumentIndex) DeleteCollection(_ context.Context, name string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, ok := i.collections[name]; !ok {
		return fmt.Errorf("memory: collection %q: %w", name, domain.ErrNotFound)
	}
	delete(i.collections, name)
	delete(i.dimensions, name)
	return nil
}

// DescribeCollection returns status and point counts.
func (i *DocumentIndex) DescribeCollection(_ context.Context, name string) (*domain.CollectionInfo, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	points, ok := i.collections[name]
	if !ok {
		return nil, fmt.Errorf("memory: collection %q: %w", name, domain.ErrNotFound)
	}
	return &domain.CollectionInfo{
		Name:          name,
		Status:        "green",
		PointsCount:   uint64(len(points)),
		SegmentsCount: 1,
	}, nil
}

// ListCollections returns the names of all collections.
func (i *DocumentIndex) ListCollections(_ context.Context) ([]string, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	names := make([]string, 0, len(i.collections))
	for name := range i.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CollectionExists reports whether the collection exists.
func (i *DocumentIndex) CollectionExists(_ context.Context, name string) (bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	_, ok := i.collections[name]
	return ok, nil
}

// Close is a no-op.
func (i *DocumentIndex) Close() error {
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for idx := range a {
		dot += float64(a[idx]) * float64(b[idx])
		normA += float64(a[idx]) * float64(a[idx])
		normB += float64(b[idx]) * float64(b[idx])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
