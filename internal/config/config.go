// Package config loads the corpus configuration from a TOML file.
//
// The file lives at ~/.corpus/config.toml by default. Every field has a
// working default so a missing file yields a usable configuration; the file
// only needs to carry overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/corpus-cli/internal/chunker"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

const (
	// DefaultDirName is the config directory under the user's home.
	DefaultDirName = ".corpus"

	// DefaultFileName is the config file name inside the config directory.
	DefaultFileName = "config.toml"
)

// Retrieval defaults. The search threshold doubles as the collection
// routing threshold.
const (
	DefaultTopK            = 20
	DefaultScoreThreshold  = 0.5
	DefaultRerankThreshold = 0.2
	DefaultRerankMaxChunks = 15
	DefaultWindowMargin    = 5
)

// Config is the full corpus configuration.
type Config struct {
	Verbose    bool   `toml:"verbose"`
	ScratchDir string `toml:"scratch_dir"`

	Chunking  Chunking  `toml:"chunking"`
	Retrieval Retrieval `toml:"retrieval"`
	Qdrant    Qdrant    `toml:"qdrant"`
	Blob      Blob      `toml:"blob"`
	Catalog   Catalog   `toml:"catalog"`
	Embedding Embedding `toml:"embedding"`
	Rerank    Rerank    `toml:"rerank"`
	LLM       LLM       `toml:"llm"`

	Collections []Collection `toml:"collections"`
}

// Chunking controls how extracted text is segmented.
type Chunking struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// Retrieval controls the question answering pipeline.
type Retrieval struct {
	TopK            int     `toml:"top_k"`
	ScoreThreshold  float32 `toml:"score_threshold"`
	RerankThreshold float64 `toml:"rerank_threshold"`
	RerankMaxChunks int     `toml:"rerank_max_chunks"`
	WindowMargin    int     `toml:"window_margin"`
	BaseURL         string  `toml:"base_url"`
	PromptFile      string  `toml:"prompt_file"`
}

// Qdrant is the vector store connection.
type Qdrant struct {
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	APIKey string `toml:"api_key"`
	UseTLS bool   `toml:"use_tls"`
}

// Blob is the object store connection.
type Blob struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Catalog is the metadata database. Driver is "sqlite" or "postgres"; DSN is
// a file path for sqlite and a connection string for postgres.
type Catalog struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// Embedding is the embedding provider connection. Provider is "openai"
// (default) or "ollama".
type Embedding struct {
	Provider          string `toml:"provider"`
	BaseURL           string `toml:"base_url"`
	APIKey            string `toml:"api_key"`
	Model             string `toml:"model"`
	Dimensions        int    `toml:"dimensions"`
	MaxBatchSize      int    `toml:"max_batch_size"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// Rerank is the cross-encoder scoring endpoint.
type Rerank struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// LLM is the answer model connection. Provider is "openai" (default),
// "anthropic" or "ollama".
type LLM struct {
	Provider    string  `toml:"provider"`
	BaseURL     string  `toml:"base_url"`
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
}

// Collection pairs a collection name with the description strings used for
// question routing.
type Collection struct {
	Name         string   `toml:"name"`
	Descriptions []string `toml:"descriptions"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Chunking: Chunking{
			Size:    chunker.DefaultChunkSize,
			Overlap: chunker.DefaultOverlap,
		},
		Retrieval: Retrieval{
			TopK:            DefaultTopK,
			ScoreThreshold:  DefaultScoreThreshold,
			RerankThreshold: DefaultRerankThreshold,
			RerankMaxChunks: DefaultRerankMaxChunks,
			WindowMargin:    DefaultWindowMargin,
		},
		Qdrant: Qdrant{
			Host: "localhost",
			Port: 6334,
		},
		Blob: Blob{
			Endpoint: "localhost:9000",
			Bucket:   "corpus-docs",
		},
		Catalog: Catalog{
			Driver: "sqlite",
		},
		Embedding: Embedding{
			Model: "text-embedding-3-small",
		},
		Rerank: Rerank{
			BaseURL: "http://localhost:8080",
		},
		LLM: LLM{
			Model: "gpt-4o-mini",
		},
		Collections: defaultCollections(),
	}
}

// defaultCollections are the routing profiles shipped with the tool. They
// cover the three course corpora the knowledge base was built around.
func defaultCollections() []Collection {
	return []Collection{
		{
			Name: "normas-estagio",
			Descriptions: []string{
				"Informações sobre regras e prazos do estágio curricular",
				"Orientações para alunos sobre o processo de estágio supervisionado",
				"Regulamento do estágio, carga horária, prazos de entrega e critérios de aprovação",
				"esclarecimentos de dúvidas relacionadas ao estágio",
				"A Lei do Estágio (Lei 11.788 de 25 setembro de 2008) estabelece definições e regras sobre qualquer tipo de estágio",
				"Normas, leis e prazos",
			},
		},
		{
			Name: "micologia",
			Descriptions: []string{
				"Apostila de micologia com conteúdo sobre os filos de fungos",
				"Fungos, características, estruturas, reprodução e importância ecológica",
				"Informações sobre fungos de importância médica e ambiental",
				"Classificação e morfologia dos fungos em diferentes filos",
			},
		},
		{
			Name: "ihc",
			Descriptions: []string{
				"Apostila de IHC (Interação Humano-Computador)",
				"Conceitos básicos de IHC, usabilidade e design de interfaces",
				"Princípios de interação humano-computador e avaliação de usabilidade",
				"Técnicas de design centrado no usuário e prototipagem",
			},
		},
	}
}

// DefaultPath returns ~/.corpus/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName, DefaultFileName), nil
}

// Load reads the config file at path, overlaying it on the defaults. A
// missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Collections declared in the file replace the shipped profiles rather
	// than merging with them.
	defaultProfiles := cfg.Collections
	cfg.Collections = nil

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Collections == nil {
		cfg.Collections = defaultProfiles
	}
	return cfg, cfg.validate()
}

// Save writes the config to path, creating the directory if needed. Key
// material goes in this file, so permissions are restricted.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Profiles converts the configured collections into routing profiles.
func (c *Config) Profiles() []domain.CollectionProfile {
	profiles := make([]domain.CollectionProfile, len(c.Collections))
	for i, col := range c.Collections {
		profiles[i] = domain.CollectionProfile{
			Name:         col.Name,
			Descriptions: col.Descriptions,
		}
	}
	return profiles
}

func (c *Config) validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunking.size must be positive", domain.ErrInvalidInput)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: chunking.overlap must be in [0, size)", domain.ErrInvalidInput)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", domain.ErrInvalidInput)
	}
	if c.Retrieval.WindowMargin < 0 {
		return fmt.Errorf("%w: retrieval.window_margin must not be negative", domain.ErrInvalidInput)
	}
	switch c.Catalog.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: catalog.driver must be sqlite or postgres", domain.ErrInvalidInput)
	}
	return nil
}
