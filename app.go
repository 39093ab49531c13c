package loansight

import (
	"fmt"
	"time"

	"github.com/loansight/loansight/common/logger"
	"github.com/loansight/loansight/config"
	"github.com/loansight/loansight/dataset"
	"github.com/loansight/loansight/embedding"
	"github.com/loansight/loansight/goldenkb"
	"github.com/loansight/loansight/intent"
	"github.com/loansight/loansight/llm"
	"github.com/loansight/loansight/memory"
	"github.com/loansight/loansight/orchestrator"
	"github.com/loansight/loansight/retriever"
	"github.com/loansight/loansight/router"
	"github.com/loansight/loansight/sandbox"
	"github.com/loansight/loansight/vectordb"
)

const Version = "1.0.0"

// App wires the full resolution stack from config: dataset, providers,
// retrieval and the orchestrator.
type App struct {
	Config       *config.Config
	Frame        *dataset.Frame
	Orchestrator *orchestrator.Orchestrator
}

func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	frame, err := dataset.LoadCSV(cfg.Dataset.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	if cfg.Dataset.EmbeddingsPath != "" {
		vecs, err := dataset.LoadEmbeddings(cfg.Dataset.EmbeddingsPath)
		if err != nil {
			return nil, fmt.Errorf("load embeddings: %w", err)
		}
		if len(vecs) != frame.NumRows() {
			return nil, fmt.Errorf("embeddings: %d vectors for %d rows", len(vecs), frame.NumRows())
		}
		frame.SetEmbeddings(vecs)
	}

	kb := goldenkb.Load(cfg.KnowledgeBase.Path)

	llmProvider := llm.NewProvider(cfg.LLM)

	embedProvider, err := embedding.NewProvider(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	embedProvider = embedding.WithCache(embedProvider, cfg.Embedding.CacheSize)

	store, err := vectordb.NewProvider(cfg.VectorDB, frame)
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}

	retr := retriever.New(embedProvider, store, frame, cfg.Dataset.IDColumn, cfg.Pipeline.TopK)
	exec := sandbox.NewExecutor(time.Duration(cfg.Pipeline.SandboxTimeoutMS) * time.Millisecond)
	rt := router.New(llmProvider, frame, retr, exec, cfg.Pipeline.SemanticTopK, cfg.Pipeline.ContextTokenCap)
	cls := intent.NewClassifier(llmProvider, cfg.Pipeline.TopK)

	orch := orchestrator.New(kb, cls, retr, rt, memory.NewStore(), orchestrator.Options{
		Threshold:      cfg.KnowledgeBase.Threshold,
		HistoryTurns:   cfg.Pipeline.HistoryTurns,
		HistoryCharCap: cfg.Pipeline.HistoryCharCap,
	})

	logger.Infof("loansight %s ready: %d cases, vectordb=%s, model=%s",
		Version, frame.NumRows(), store.GetProviderType(), cfg.LLM.Model)

	return &App{Config: cfg, Frame: frame, Orchestrator: orch}, nil
}
