package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// collectionSelector routes a question vector to collections.
type collectionSelector interface {
	SelectCollections(ctx context.Context, questionVector []float32) ([]string, error)
}

// chunkReranker rescores and filters candidate chunks.
type chunkReranker interface {
	Rerank(ctx context.Context, question string, grouped domain.ChunksByDocument) (domain.ChunksByDocument, error)
}

// RetrievalConfig holds the tunable parameters of the query pipeline.
type RetrievalConfig struct {
	// TopK caps the initial per-collection nearest-neighbour search.
	TopK int

	// ScoreThreshold drops initial hits below this similarity.
	ScoreThreshold float32

	// WindowMargin is the page margin of the window expansion strategy.
	WindowMargin int

	// BaseURL is substituted into the prompt for document links.
	BaseURL string

	// PromptTemplate overrides DefaultPromptTemplate when non-empty.
	PromptTemplate string
}

// RetrievalService answers questions: embed, route, search, expand, rerank,
// assemble the prompt and generate. Handled dead ends (nothing found, stores
// out of sync) come back as unsuccessful results, not errors.
type RetrievalService struct {
	embedder driven.EmbeddingService
	index    driven.DocumentIndex
	catalog  *DocumentCatalog
	router   collectionSelector
	reranker chunkReranker
	answerer driven.AnswerService
	cfg      RetrievalConfig
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	index driven.DocumentIndex,
	catalog *DocumentCatalog,
	router collectionSelector,
	reranker chunkReranker,
	answerer driven.AnswerService,
	cfg RetrievalConfig,
) *RetrievalService {
	if cfg.PromptTemplate == "" {
		cfg.PromptTemplate = DefaultPromptTemplate
	}
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		catalog:  catalog,
		router:   router,
		reranker: reranker,
		answerer: answerer,
		cfg:      cfg,
	}
}

// Ask runs the full query pipeline for one question.
func (s *RetrievalService) Ask(ctx context.Context, req driving.AskRequest) (*domain.AskResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return &domain.AskResult{OpResult: domain.Failure("The question is empty.")}, nil
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	collections := req.Collections
	if len(collections) > 0 {
		logger.Info("Searching caller-specified collections: %v", collections)
	} else {
		logger.Info("Routing question to relevant collections")
		collections, err = s.router.SelectCollections(ctx, vector)
		if err != nil {
			return nil, fmt.Errorf("select collections: %w", err)
		}
	}
	if len(collections) == 0 {
		return &domain.AskResult{OpResult: domain.Failure("No relevant collection found for the question.")}, nil
	}

	initial, err := s.index.SearchQuestion(ctx, vector, s.cfg.TopK, collections, s.cfg.ScoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("initial search: %w", err)
	}
	logTopScores(initial)
	if initial.TotalChunks() == 0 {
		return &domain.AskResult{
			OpResult:    domain.Failure("No documents found for the question."),
			Collections: collections,
		}, nil
	}

	strategy := domain.ExpandDocument
	if req.LimitContext {
		strategy = domain.ExpandWindow
	}
	logger.Info("Expanding context with the %s strategy", strategy)

	expanded, err := s.expand(ctx, strategy, initial, collections)
	if err != nil {
		if errors.Is(err, domain.ErrSyncDivergence) {
			return &domain.AskResult{
				OpResult:    domain.Failure("The vector store and the document catalog are out of sync."),
				Collections: collections,
			}, nil
		}
		return nil, err
	}
	if expanded.TotalChunks() == 0 {
		return &domain.AskResult{
			OpResult:    domain.Failure("Could not assemble the expanded context for the question."),
			Collections: collections,
		}, nil
	}
	logger.Debug("Expanded context to %d chunk(s) across %d document(s)", expanded.TotalChunks(), len(expanded))

	reranked, err := s.reranker.Rerank(ctx, question, expanded)
	if err != nil {
		return nil, fmt.Errorf("rerank context: %w", err)
	}
	if reranked.TotalChunks() == 0 {
		return &domain.AskResult{
			OpResult:    domain.Failure("After reranking, no chunk was relevant enough for the question."),
			Collections: collections,
		}, nil
	}

	prompt := RenderPrompt(s.cfg.PromptTemplate, BuildContextBlock(reranked), question, s.cfg.BaseURL)

	answer, err := s.answerer.Answer(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.AskResult{
		OpResult:    domain.Ok("Answer generated."),
		Answer:      answer,
		Collections: collections,
		Context:     reranked,
	}, nil
}

// expand widens the initial hit-set with the chosen strategy.
func (s *RetrievalService) expand(ctx context.Context, strategy domain.ExpandStrategy, initial domain.ChunksByDocument, collections []string) (domain.ChunksByDocument, error) {
	if strategy == domain.ExpandWindow {
		return s.expandWindow(ctx, initial, collections)
	}
	return s.expandDocument(ctx, initial, collections)
}

// expandWindow fetches, per matched document, every chunk within a page
// window around the matched pages.
func (s *RetrievalService) expandWindow(ctx context.Context, initial domain.ChunksByDocument, collections []string) (domain.ChunksByDocument, error) {
	type window struct {
		collection string
		minPage    int
		maxPage    int
	}

	windows := make(map[string]*window, len(initial))
	for hash, group := range initial {
		w := &window{minPage: group[0].Page, maxPage: group[0].Page}
		for _, chunk := range group {
			if chunk.Page < w.minPage {
				w.minPage = chunk.Page
			}
			if chunk.Page > w.maxPage {
				w.maxPage = chunk.Page
			}
		}
		windows[hash] = w
	}

	// With a single collection the owner is known; otherwise resolve each
	// hash's owning collection through the catalog.
	if len(collections) == 1 {
		for _, w := range windows {
			w.collection = collections[0]
		}
	} else {
		hashes := make([]string, 0, len(windows))
		for hash := range windows {
			hashes = append(hashes, hash)
		}
		for _, collection := range collections {
			records, err := s.catalog.FindByHashes(ctx, collection, hashes)
			if err != nil {
				return nil, fmt.Errorf("resolve owning collections: %w", err)
			}
			for _, rec := range records {
				if w, ok := windows[rec.ActiveVersionHash]; ok {
					w.collection = collection
				}
			}
		}
	}

	expanded := make(domain.ChunksByDocument)
	for hash, w := range windows {
		if w.collection == "" {
			logger.Warn("No owning collection resolved for document %s, skipping its window", hash)
			continue
		}

		chunks, err := s.index.ChunksInPageWindow(ctx, w.collection, hash, w.minPage-s.cfg.WindowMargin, w.maxPage+s.cfg.WindowMargin)
		if err != nil {
			return nil, fmt.Errorf("fetch page window for %s: %w", hash, err)
		}
		if len(chunks) > 0 {
			expanded[hash] = chunks
		}
	}
	return expanded, nil
}

// expandDocument fetches every chunk of each matched document plus its
// one-hop relatives. Hashes present in the index but absent from the catalog
// mean the stores have diverged.
func (s *RetrievalService) expandDocument(ctx context.Context, initial domain.ChunksByDocument, collections []string) (domain.ChunksByDocument, error) {
	hashes := make([]string, 0, len(initial))
	for hash := range initial {
		hashes = append(hashes, hash)
	}

	var records []domain.DocumentRecord
	for _, collection := range collections {
		found, err := s.catalog.FindByHashes(ctx, collection, hashes)
		if err != nil {
			return nil, fmt.Errorf("find catalog records: %w", err)
		}
		if len(found) > 0 {
			logger.Debug("Found %d catalog record(s) in collection %q", len(found), collection)
			records = append(records, found...)
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("hashes indexed but not catalogued: %w", domain.ErrSyncDivergence)
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}

	related, err := s.catalog.FindRelatedDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find related documents: %w", err)
	}
	logger.Debug("Context expanded to %d related document(s)", len(related))

	hashesByCollection := make(map[string][]string)
	for _, rec := range related {
		if rec.CollectionName == "" || rec.ActiveVersionHash == "" {
			continue
		}
		hashesByCollection[rec.CollectionName] = append(hashesByCollection[rec.CollectionName], rec.ActiveVersionHash)
	}

	expanded := make(domain.ChunksByDocument)
	for collection, collectionHashes := range hashesByCollection {
		grouped, err := s.index.ChunksForHashes(ctx, collection, collectionHashes)
		if err != nil {
			return nil, fmt.Errorf("fetch chunks from %q: %w", collection, err)
		}
		for hash, chunks := range grouped {
			expanded[hash] = chunks
		}
	}
	return expanded, nil
}

// logTopScores reports the strongest initial hits for tuning thresholds.
func logTopScores(initial domain.ChunksByDocument) {
	var scores []float64
	for _, group := range initial {
		for _, chunk := range group {
			scores = append(scores, chunk.Score)
		}
	}
	if len(scores) == 0 {
		return
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	if len(scores) > 3 {
		scores = scores[:3]
	}
	logger.Debug("Top initial search scores: %v", scores)
}
