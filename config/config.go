package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the loan-insight pipeline.
type Config struct {
	LLM           LLMConfig           `json:"llm" yaml:"llm"`
	Embedding     EmbeddingConfig     `json:"embedding" yaml:"embedding"`
	VectorDB      VectorDBConfig      `json:"vectordb" yaml:"vectordb"`
	Dataset       DatasetConfig       `json:"dataset" yaml:"dataset"`
	KnowledgeBase KnowledgeBaseConfig `json:"knowledge_base" yaml:"knowledge_base"`
	Pipeline      PipelineConfig      `json:"pipeline" yaml:"pipeline"`
}

// LLMConfig defines the remote text-completion collaborator. An empty APIKey
// means the service is absent; every consumer must degrade gracefully.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // openai-compatible endpoints (openai, groq)
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TimeoutMS   int     `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// EmbeddingConfig defines the embedding collaborator.
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"`
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	CacheSize  int    `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`
	TimeoutMS  int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// VectorDBConfig selects the vector index backend. The default "memory"
// provider builds a flat inner-product index from the dataset's precomputed
// embeddings; "milvus" talks to an external Milvus deployment.
type VectorDBConfig struct {
	Provider    string `json:"provider" yaml:"provider"` // memory, milvus
	Host        string `json:"host,omitempty" yaml:"host,omitempty"`
	Port        int    `json:"port,omitempty" yaml:"port,omitempty"`
	Collection  string `json:"collection,omitempty" yaml:"collection,omitempty"`
	Username    string `json:"username,omitempty" yaml:"username,omitempty"`
	Password    string `json:"password,omitempty" yaml:"password,omitempty"`
	VectorField string `json:"vector_field,omitempty" yaml:"vector_field,omitempty"`
}

// DatasetConfig points at the loaded tabular dataset and its embedding
// sidecar.
type DatasetConfig struct {
	CSVPath        string `json:"csv_path" yaml:"csv_path"`
	EmbeddingsPath string `json:"embeddings_path,omitempty" yaml:"embeddings_path,omitempty"`
	IDColumn       string `json:"id_column,omitempty" yaml:"id_column,omitempty"`
	TextColumn     string `json:"text_column,omitempty" yaml:"text_column,omitempty"`
}

// KnowledgeBaseConfig points at the curated question/answer set.
type KnowledgeBaseConfig struct {
	Path      string  `json:"path" yaml:"path"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// PipelineConfig tunes the resolution pipeline itself.
type PipelineConfig struct {
	TopK             int `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	SemanticTopK     int `json:"semantic_top_k,omitempty" yaml:"semantic_top_k,omitempty"`
	HistoryTurns     int `json:"history_turns,omitempty" yaml:"history_turns,omitempty"`
	HistoryCharCap   int `json:"history_char_cap,omitempty" yaml:"history_char_cap,omitempty"`
	ContextTokenCap  int `json:"context_token_cap,omitempty" yaml:"context_token_cap,omitempty"`
	SandboxTimeoutMS int `json:"sandbox_timeout_ms,omitempty" yaml:"sandbox_timeout_ms,omitempty"`
}

// Load reads a YAML config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a config from environment variables only, for running
// without a config file. LLM/embedding keys come from OPENAI_API_KEY or
// GROQ_API_KEY; dataset paths from LOANSIGHT_DATA / LOANSIGHT_EMBEDDINGS.
func FromEnv() *Config {
	key := os.Getenv("OPENAI_API_KEY")
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if key == "" {
		if gk := os.Getenv("GROQ_API_KEY"); gk != "" {
			key = gk
			baseURL = "https://api.groq.com/openai/v1"
		}
	}
	cfg := &Config{
		LLM: LLMConfig{
			Provider: "openai",
			APIKey:   key,
			BaseURL:  baseURL,
			Model:    os.Getenv("LOANSIGHT_MODEL"),
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			APIKey:   key,
			BaseURL:  baseURL,
		},
		Dataset: DatasetConfig{
			CSVPath:        os.Getenv("LOANSIGHT_DATA"),
			EmbeddingsPath: os.Getenv("LOANSIGHT_EMBEDDINGS"),
		},
		KnowledgeBase: KnowledgeBaseConfig{
			Path: os.Getenv("LOANSIGHT_KB"),
		},
	}
	_ = cfg.Validate()
	return cfg
}
