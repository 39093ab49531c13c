package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultModel, cfg.LLM.Model)
	assert.Equal(t, 800, cfg.LLM.MaxTokens)
	assert.Equal(t, DefaultEmbeddingModel, cfg.Embedding.Model)
	assert.Equal(t, "memory", cfg.VectorDB.Provider)
	assert.Equal(t, "Loan_ID", cfg.Dataset.IDColumn)
	assert.Equal(t, DefaultKBThreshold, cfg.KnowledgeBase.Threshold)
	assert.Equal(t, DefaultTopK, cfg.Pipeline.TopK)
	assert.Equal(t, DefaultSemanticTopK, cfg.Pipeline.SemanticTopK)
	assert.Equal(t, DefaultSandboxTimeoutMS, cfg.Pipeline.SandboxTimeoutMS)
}

func TestValidateRejectsBadTemperature(t *testing.T) {
	cfg := &Config{LLM: LLMConfig{Temperature: 3.5}}
	assert.Error(t, cfg.Validate())
}

func TestValidateMilvusRequirements(t *testing.T) {
	cfg := &Config{VectorDB: VectorDBConfig{Provider: "milvus"}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{VectorDB: VectorDBConfig{Provider: "milvus", Host: "localhost"}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{VectorDB: VectorDBConfig{Provider: "milvus", Host: "localhost", Collection: "loans"}}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "vector", cfg.VectorDB.VectorField)
}

func TestValidateUnknownVectorDB(t *testing.T) {
	cfg := &Config{VectorDB: VectorDBConfig{Provider: "pinecone"}}
	assert.Error(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	content := `
llm:
  model: gpt-4o-mini
  temperature: 0.3
dataset:
  csv_path: /data/loans.csv
  embeddings_path: /data/embeddings.json
knowledge_base:
  path: /data/golden.yaml
  threshold: 0.7
pipeline:
  top_k: 8
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
	assert.Equal(t, "/data/loans.csv", cfg.Dataset.CSVPath)
	assert.Equal(t, 0.7, cfg.KnowledgeBase.Threshold)
	assert.Equal(t, 8, cfg.Pipeline.TopK)
	// Unset fields still get defaults.
	assert.Equal(t, DefaultSemanticTopK, cfg.Pipeline.SemanticTopK)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestFromEnvGroqBaseURL(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "gsk_test")

	cfg := FromEnv()
	assert.Equal(t, "gsk_test", cfg.LLM.APIKey)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, DefaultModel, cfg.LLM.Model)
}
