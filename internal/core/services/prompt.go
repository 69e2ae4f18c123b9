package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// DefaultPromptTemplate is the answer-generation prompt used when no
// custom template is configured. Placeholders: {context}, {question},
// {base_url}.
const DefaultPromptTemplate = `You are an assistant that answers questions strictly from the provided document excerpts.

Rules:
- Answer only from the context below. If the context does not contain the answer, say so.
- Cite the document filename and page for every claim.
- When referencing a document, link it as {base_url}/documents/<document id>.
- Reply as a JSON object: {"answer": "<your answer>", "sources": ["<filename> p.<page>", ...]}.

Context:
{context}

Question: {question}`

// BuildContextBlock renders the reranked evidence into labelled text blocks.
// One block per document (filename and document hash header), one sub-block
// per chunk labelled with its page. Documents appear in order of their best
// chunk score.
func BuildContextBlock(grouped domain.ChunksByDocument) string {
	hashes := make([]string, 0, len(grouped))
	for hash, group := range grouped {
		if len(group) > 0 {
			hashes = append(hashes, hash)
		}
	}
	sort.Slice(hashes, func(a, b int) bool {
		left, right := grouped[hashes[a]][0], grouped[hashes[b]][0]
		if left.Score != right.Score {
			return left.Score > right.Score
		}
		return hashes[a] < hashes[b]
	})

	blocks := make([]string, 0, len(hashes))
	for _, hash := range hashes {
		group := grouped[hash]

		parts := []string{fmt.Sprintf("### Document: %s\nDocument id: %s\n", group[0].Filename, hash)}
		for _, chunk := range group {
			parts = append(parts, fmt.Sprintf("#### Page %d\n%s", chunk.Page, chunk.Text))
		}
		blocks = append(blocks, strings.Join(parts, "\n\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderPrompt substitutes the template placeholders.
func RenderPrompt(template, contextBlock, question, baseURL string) string {
	replacer := strings.NewReplacer(
		"{context}", contextBlock,
		"{question}", question,
		"{base_url}", baseURL,
	)
	return replacer.Replace(template)
}
