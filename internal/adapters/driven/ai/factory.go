// Package ai selects and constructs the embedding and answer providers.
package ai

import (
	"fmt"

	ollamaembed "github.com/custodia-labs/corpus-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/corpus-cli/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/corpus-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/corpus-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/corpus-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Provider names accepted in configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// EmbeddingSettings selects and configures the embedding provider.
type EmbeddingSettings struct {
	Provider          string
	APIKey            string
	BaseURL           string
	Model             string
	Dimensions        int
	MaxBatchSize      int
	RequestsPerMinute int
}

// AnswerSettings selects and configures the answer generation provider.
type AnswerSettings struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// CreateEmbeddingService creates the embedding service for the configured
// provider. An empty provider defaults to OpenAI.
func CreateEmbeddingService(settings EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case ProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case ProviderOpenAI, "":
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			MaxBatchSize:      settings.MaxBatchSize,
			RequestsPerMinute: settings.RequestsPerMinute,
		})

	case ProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateAnswerService creates the answer service for the configured
// provider. An empty provider defaults to OpenAI.
func CreateAnswerService(settings AnswerSettings) (driven.AnswerService, error) {
	switch settings.Provider {
	case ProviderOllama:
		return ollamallm.NewAnswerService(ollamallm.Config{
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		}), nil

	case ProviderOpenAI, "":
		return openaillm.NewAnswerService(openaillm.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})

	case ProviderAnthropic:
		return anthropicllm.NewAnswerService(anthropicllm.Config{
			APIKey:      settings.APIKey,
			BaseURL:     settings.BaseURL,
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})

	default:
		return nil, fmt.Errorf("unsupported answer provider: %s", settings.Provider)
	}
}
