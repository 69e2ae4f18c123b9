package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/rerank/tei"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/blob"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/catalog"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/vector/qdrant"
	"github.com/custodia-labs/corpus-cli/internal/chunker"
	"github.com/custodia-labs/corpus-cli/internal/config"
	"github.com/custodia-labs/corpus-cli/internal/core/services"
	"github.com/custodia-labs/corpus-cli/internal/extract"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// ensureServices builds the service graph once from the configuration.
// Commands call it at the top of their RunE; tests bypass it by assigning the
// service variables directly.
func ensureServices(ctx context.Context) error {
	if ingestService != nil && retrievalService != nil && collectionService != nil {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Verbose {
		logger.SetVerbose(true)
	}

	embedder, err := ai.CreateEmbeddingService(ai.EmbeddingSettings{
		Provider:          cfg.Embedding.Provider,
		APIKey:            cfg.Embedding.APIKey,
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		Dimensions:        cfg.Embedding.Dimensions,
		MaxBatchSize:      cfg.Embedding.MaxBatchSize,
		RequestsPerMinute: cfg.Embedding.RequestsPerMinute,
	})
	if err != nil {
		return fmt.Errorf("embedding service: %w", err)
	}

	index, err := qdrant.New(qdrant.Config{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		APIKey: cfg.Qdrant.APIKey,
		UseTLS: cfg.Qdrant.UseTLS,
	})
	if err != nil {
		return fmt.Errorf("vector index: %w", err)
	}

	blobs, err := blob.New(ctx, blob.Config{
		Endpoint:  cfg.Blob.Endpoint,
		AccessKey: cfg.Blob.AccessKey,
		SecretKey: cfg.Blob.SecretKey,
		Bucket:    cfg.Blob.Bucket,
		UseSSL:    cfg.Blob.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	store, err := openCatalogStore(cfg)
	if err != nil {
		return fmt.Errorf("catalog store: %w", err)
	}
	docCatalog := services.NewDocumentCatalog(store, blobs)

	scorer, err := tei.NewRerankService(tei.Config{
		BaseURL: cfg.Rerank.BaseURL,
		Model:   cfg.Rerank.Model,
	})
	if err != nil {
		return fmt.Errorf("rerank service: %w", err)
	}

	answerer, err := ai.CreateAnswerService(ai.AnswerSettings{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return fmt.Errorf("answer service: %w", err)
	}

	chunk, err := chunker.New(
		chunker.WithChunkSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)
	if err != nil {
		return fmt.Errorf("chunker: %w", err)
	}

	template, err := loadPromptTemplate(cfg)
	if err != nil {
		return err
	}

	ingestService = services.NewIngestService(
		extract.New(), chunk, embedder, index, docCatalog, cfg.ScratchDir)

	retrievalService = services.NewRetrievalService(
		embedder,
		index,
		docCatalog,
		services.NewCollectionRouter(embedder, cfg.Profiles(), float64(cfg.Retrieval.ScoreThreshold)),
		services.NewReranker(scorer, cfg.Retrieval.RerankThreshold, cfg.Retrieval.RerankMaxChunks),
		answerer,
		services.RetrievalConfig{
			TopK:           cfg.Retrieval.TopK,
			ScoreThreshold: cfg.Retrieval.ScoreThreshold,
			WindowMargin:   cfg.Retrieval.WindowMargin,
			BaseURL:        cfg.Retrieval.BaseURL,
			PromptTemplate: template,
		},
	)

	collectionService = services.NewCollectionService(index, embedder)
	return nil
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
	}
	return config.Load(path)
}

// openCatalogStore opens the configured metadata database. The sqlite driver
// defaults its file next to the config.
func openCatalogStore(cfg *config.Config) (*catalog.Store, error) {
	if cfg.Catalog.Driver == "postgres" {
		return catalog.OpenPostgres(cfg.Catalog.DSN)
	}

	dsn := cfg.Catalog.DSN
	if dsn == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(home, config.DefaultDirName)
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
		dsn = filepath.Join(dir, "catalog.db")
	}
	return catalog.OpenSQLite(dsn)
}

func loadPromptTemplate(cfg *config.Config) (string, error) {
	if cfg.Retrieval.PromptFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(cfg.Retrieval.PromptFile)
	if err != nil {
		return "", fmt.Errorf("read prompt template: %w", err)
	}
	return string(data), nil
}
