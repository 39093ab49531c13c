package config

import "fmt"

// Defaults applied when fields are unset.
const (
	DefaultModel            = "llama-3.3-70b-versatile"
	DefaultEmbeddingModel   = "text-embedding-3-small"
	DefaultTopK             = 5
	DefaultSemanticTopK     = 10
	DefaultHistoryTurns     = 3
	DefaultHistoryCharCap   = 500
	DefaultContextTokenCap  = 6000
	DefaultKBThreshold      = 0.65
	DefaultSandboxTimeoutMS = 5000
)

// Validate fills defaults and rejects combinations that cannot work.
// A missing LLM API key is legal: the pipeline runs degraded.
func (c *Config) Validate() error {
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature %v out of range [0,2]", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 800
	}
	if c.LLM.TimeoutMS <= 0 {
		c.LLM.TimeoutMS = 30000
	}

	if c.Embedding.Model == "" {
		c.Embedding.Model = DefaultEmbeddingModel
	}
	if c.Embedding.CacheSize <= 0 {
		c.Embedding.CacheSize = 512
	}
	if c.Embedding.TimeoutMS <= 0 {
		c.Embedding.TimeoutMS = 15000
	}

	switch c.VectorDB.Provider {
	case "", "memory":
		c.VectorDB.Provider = "memory"
	case "milvus":
		if c.VectorDB.Host == "" {
			return fmt.Errorf("vectordb: milvus provider requires host")
		}
		if c.VectorDB.Collection == "" {
			return fmt.Errorf("vectordb: milvus provider requires collection")
		}
		if c.VectorDB.VectorField == "" {
			c.VectorDB.VectorField = "vector"
		}
	default:
		return fmt.Errorf("vectordb: unknown provider %q", c.VectorDB.Provider)
	}

	if c.Dataset.IDColumn == "" {
		c.Dataset.IDColumn = "Loan_ID"
	}
	if c.Dataset.TextColumn == "" {
		c.Dataset.TextColumn = "text_representation"
	}

	if c.KnowledgeBase.Threshold <= 0 {
		c.KnowledgeBase.Threshold = DefaultKBThreshold
	}

	if c.Pipeline.TopK <= 0 {
		c.Pipeline.TopK = DefaultTopK
	}
	if c.Pipeline.SemanticTopK <= 0 {
		c.Pipeline.SemanticTopK = DefaultSemanticTopK
	}
	if c.Pipeline.HistoryTurns <= 0 {
		c.Pipeline.HistoryTurns = DefaultHistoryTurns
	}
	if c.Pipeline.HistoryCharCap <= 0 {
		c.Pipeline.HistoryCharCap = DefaultHistoryCharCap
	}
	if c.Pipeline.ContextTokenCap <= 0 {
		c.Pipeline.ContextTokenCap = DefaultContextTokenCap
	}
	if c.Pipeline.SandboxTimeoutMS <= 0 {
		c.Pipeline.SandboxTimeoutMS = DefaultSandboxTimeoutMS
	}
	return nil
}
