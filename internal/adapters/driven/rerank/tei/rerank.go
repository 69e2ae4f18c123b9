// Package tei provides a rerank service adapter for cross-encoder servers
// speaking the text-embeddings-inference /rerank protocol.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure RerankService implements the interface.
var _ driven.RerankService = (*RerankService)(nil)

// Default configuration values.
const (
	DefaultModel   = "cross-encoder/ms-marco-MiniLM-L-6-v2"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the rerank service.
type Config struct {
	// BaseURL is the server base URL (required).
	BaseURL string

	// Model is reported by ModelName; the server decides what it runs.
	Model string

	// Timeout is the request timeout (default: 120s). Cross-encoders score
	// every passage, so this scales with context size.
	Timeout time.Duration
}

// RerankService scores question/passage pairs with a remote cross-encoder.
type RerankService struct {
	client  *http.Client
	baseURL string
	model   string
}

// rerankRequest is the /rerank request format.
type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

// rerankResult is one scored entry of the /rerank response.
type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// NewRerankService creates a new cross-encoder rerank service.
func NewRerankService(cfg Config) (*RerankService, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("tei: base URL is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &RerankService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}, nil
}

// Score returns one relevance score per passage, in passage order.
func (s *RerankService) Score(ctx context.Context, question string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	jsonBody, err := json.Marshal(rerankRequest{Query: question, Texts: passages})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/rerank",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRerankUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tei error (status %d): %s", resp.StatusCode, string(body))
	}

	var results []rerankResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// The server returns entries sorted by score; restore passage order.
	scores := make([]float64, len(passages))
	for _, result := range results {
		if result.Index < 0 || result.Index >= len(passages) {
			return nil, fmt.Errorf("tei: result index %d out of range for %d passages", result.Index, len(passages))
		}
		scores[result.Index] = result.Score
	}
	return scores, nil
}

// ModelName returns the configured cross-encoder model name.
func (s *RerankService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *RerankService) Close() error {
	return nil
}
