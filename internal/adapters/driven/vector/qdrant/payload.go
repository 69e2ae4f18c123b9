package qdrant

import (
	"sort"

	"github.com/qdrant/go-client/qdrant"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// Payload field names. Changing these orphans previously indexed points.
const (
	payloadText         = "text"
	payloadDocumentHash = "doc_id"
	payloadFilename     = "filename"
	payloadChunkIndex   = "chunk_id"
	payloadPage         = "page"
)

// chunkPayload maps a chunk onto the stored point payload.
func chunkPayload(chunk domain.Chunk) map[string]any {
	return map[string]any{
		payloadText:         chunk.Text,
		payloadDocumentHash: chunk.DocumentHash,
		payloadFilename:     chunk.Filename,
		payloadChunkIndex:   int64(chunk.Index),
		payloadPage:         int64(chunk.Page),
	}
}

// chunkFromPayload rebuilds a chunk from a point payload. Missing fields
// decode to zero values.
func chunkFromPayload(payload map[string]*qdrant.Value) domain.Chunk {
	chunk := domain.Chunk{}
	if v, ok := payload[payloadText]; ok {
		chunk.Text = v.GetStringValue()
	}
	if v, ok := payload[payloadDocumentHash]; ok {
		chunk.DocumentHash = v.GetStringValue()
	}
	if v, ok := payload[payloadFilename]; ok {
		chunk.Filename = v.GetStringValue()
	}
	if v, ok := payload[payloadChunkIndex]; ok {
		chunk.Index = int(v.GetIntegerValue())
	}
	if v, ok := payload[payloadPage]; ok {
		chunk.Page = int(v.GetIntegerValue())
	}
	return chunk
}

// sortGroupsByScore orders every group by descending score.
func sortGroupsByScore(grouped domain.ChunksByDocument) {
	for _, group := range grouped {
		sort.Slice(group, func(a, b int) bool { return group[a].Score > group[b].Score })
	}
}
