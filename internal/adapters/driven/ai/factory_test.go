package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEmbeddingService(t *testing.T) {
	svc, err := CreateEmbeddingService(EmbeddingSettings{Provider: ProviderOpenAI, APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", svc.ModelName())

	svc, err = CreateEmbeddingService(EmbeddingSettings{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", svc.ModelName())
}

func TestCreateEmbeddingService_DefaultsToOpenAI(t *testing.T) {
	svc, err := CreateEmbeddingService(EmbeddingSettings{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", svc.ModelName())
}

func TestCreateEmbeddingService_AnthropicRejected(t *testing.T) {
	_, err := CreateEmbeddingService(EmbeddingSettings{Provider: ProviderAnthropic})
	assert.Error(t, err)
}

func TestCreateEmbeddingService_UnknownProvider(t *testing.T) {
	_, err := CreateEmbeddingService(EmbeddingSettings{Provider: "bedrock"})
	assert.Error(t, err)
}

func TestCreateAnswerService(t *testing.T) {
	svc, err := CreateAnswerService(AnswerSettings{Provider: ProviderOpenAI, APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", svc.ModelName())

	svc, err = CreateAnswerService(AnswerSettings{Provider: ProviderAnthropic, APIKey: "sk-ant"})
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet-latest", svc.ModelName())

	svc, err = CreateAnswerService(AnswerSettings{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", svc.ModelName())
}

func TestCreateAnswerService_MissingKey(t *testing.T) {
	_, err := CreateAnswerService(AnswerSettings{Provider: ProviderOpenAI})
	assert.Error(t, err)

	_, err = CreateAnswerService(AnswerSettings{Provider: ProviderAnthropic})
	assert.Error(t, err)
}
