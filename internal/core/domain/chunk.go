package domain

// Chunk is the bounded-size unit of extracted text indexed as a single
// vector point. Chunks are immutable once created: they are written in bulk
// at ingest time and removed in bulk by document hash, never edited.
type Chunk struct {
	// Text is the chunk content after cleaning and tokenisation.
	Text string

	// DocumentHash is the content hash of the document version that
	// produced this chunk. It is the join key between the vector index
	// and the catalog (stored per point as "doc_id").
	DocumentHash string

	// Filename is the original filename of the source document.
	Filename string

	// Index is the ordinal position within one document version,
	// monotonically increasing from 0. It is only unique per version;
	// point identity in the index is a generated UUID.
	Index int

	// Page is the page number the chunk was flushed on. A chunk that
	// straddles a page boundary carries the later page.
	Page int
}

// ScoredChunk is a chunk paired with a relevance score. Initial similarity
// hits carry the index score; context-expansion fetches carry a neutral 1.0
// until the reranker rescores them.
type ScoredChunk struct {
	Chunk

	// Score is the current relevance score for the chunk.
	Score float64
}

// ChunksByDocument groups scored chunks by their owning document hash.
// Within a group the chunks are ordered by descending score.
type ChunksByDocument map[string][]ScoredChunk

// TotalChunks counts the chunks across all documents in the group.
func (m ChunksByDocument) TotalChunks() int {
	total := 0
	for _, chunks := range m {
		total += len(chunks)
	}
	return total
}
