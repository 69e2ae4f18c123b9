package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// fakeEmbedder returns canned vectors by exact text, falling back to a unit
// vector so unknown texts still embed.
type fakeEmbedder struct {
	dims    int
	vectors map[string][]float32
}

func newFakeEmbedder(dims int) *fakeEmbedder {
	return &fakeEmbedder{dims: dims, vectors: make(map[string][]float32)}
}

func (f *fakeEmbedder) set(text string, vector []float32) *fakeEmbedder {
	f.vectors[text] = vector
	return f
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if vector, ok := f.vectors[text]; ok {
		return vector, nil
	}
	vector := make([]float32, f.dims)
	vector[0] = 1
	return vector, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vector
	}
	return result, nil
}

func (f *fakeEmbedder) Dimensions() int              { return f.dims }
func (f *fakeEmbedder) ModelName() string            { return "fake-embedder" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

// fakeScorer scores passages by exact text lookup; unknown passages score 0.
type fakeScorer struct {
	scores map[string]float64
	err    error
}

func newFakeScorer() *fakeScorer {
	return &fakeScorer{scores: make(map[string]float64)}
}

func (f *fakeScorer) set(passage string, score float64) *fakeScorer {
	f.scores[passage] = score
	return f
}

func (f *fakeScorer) Score(_ context.Context, _ string, passages []string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	scores := make([]float64, len(passages))
	for i, passage := range passages {
		scores[i] = f.scores[passage]
	}
	return scores, nil
}

func (f *fakeScorer) ModelName() string { return "fake-scorer" }
func (f *fakeScorer) Close() error      { return nil }

// fakeAnswerer records the prompt it was given and returns a fixed answer.
type fakeAnswerer struct {
	lastPrompt string
	answer     *domain.Answer
	err        error
}

func (f *fakeAnswerer) Answer(_ context.Context, prompt string) (*domain.Answer, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	if f.answer != nil {
		return f.answer, nil
	}
	return &domain.Answer{Text: "fake answer"}, nil
}

func (f *fakeAnswerer) ModelName() string { return "fake-answerer" }
func (f *fakeAnswerer) Close() error      { return nil }

// fakeExtractor returns canned pages regardless of input.
type fakeExtractor struct {
	pages []driven.Page
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, _ string) ([]driven.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

// fakeChunker emits one chunk per page.
type fakeChunker struct {
	err error
}

func (f *fakeChunker) Chunk(pages []driven.Page, documentHash, filename string) ([]domain.Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages: %w", domain.ErrNoText)
	}

	chunks := make([]domain.Chunk, len(pages))
	for i, page := range pages {
		chunks[i] = domain.Chunk{
			Text:         page.Text,
			DocumentHash: documentHash,
			Filename:     filename,
			Index:        i,
			Page:         page.Number,
		}
	}
	return chunks, nil
}
