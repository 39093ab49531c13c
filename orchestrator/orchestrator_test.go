package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loansight/loansight/dataset"
	"github.com/loansight/loansight/embedding"
	"github.com/loansight/loansight/goldenkb"
	"github.com/loansight/loansight/intent"
	"github.com/loansight/loansight/llm"
	"github.com/loansight/loansight/memory"
	"github.com/loansight/loansight/retriever"
	"github.com/loansight/loansight/router"
	"github.com/loansight/loansight/sandbox"
	"github.com/loansight/loansight/schema"
	"github.com/loansight/loansight/vectordb"
)

const orchestratorCSV = `Loan_ID,Customer_Name,Loan_Amount,Loan_Status,Credit_Score,DTI_Ratio
LN001,Asha,250000,Approved,710,0.28
LN002,Ravi,120000,Rejected,580,0.52
LN003,Meera,90000,Rejected,640,0.45
`

type scriptedLLM struct {
	replies []string
	calls   []llm.Request
}

func (m *scriptedLLM) GetProviderType() string { return "scripted" }

func (m *scriptedLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	m.calls = append(m.calls, req)
	if len(m.replies) == 0 {
		return "", llm.ErrUnavailable
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r, nil
}

type fixedEmbed struct{}

func (fixedEmbed) GetProviderType() string { return "fixed" }

func (fixedEmbed) GetEmbedding(_ context.Context, _ string) ([]float32, error) {
	return []float32{0, 1}, nil
}

func (fixedEmbed) GetEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0, 1}
	}
	return out, nil
}

type failingEmbed struct{}

func (failingEmbed) GetProviderType() string { return "failing" }

func (failingEmbed) GetEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("connection refused")
}

func (failingEmbed) GetEmbeddings(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errors.New("connection refused")
}

func newTestOrchestrator(t *testing.T, provider llm.Provider) *Orchestrator {
	t.Helper()
	return newTestOrchestratorWithEmbed(t, provider, fixedEmbed{})
}

func newTestOrchestratorWithEmbed(t *testing.T, provider llm.Provider, embed embedding.Provider) *Orchestrator {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loans.csv")
	require.NoError(t, os.WriteFile(path, []byte(orchestratorCSV), 0o644))
	frame, err := dataset.LoadCSV(path)
	require.NoError(t, err)
	frame.SetEmbeddings([][]float32{{1, 0}, {0, 1}, {0.6, 0.8}})

	store := vectordb.NewMemoryIndex(frame.Embeddings())
	retr := retriever.New(embed, store, frame, "Loan_ID", 5)
	exec := sandbox.NewExecutor(5 * time.Second)
	rt := router.New(provider, frame, retr, exec, 10, 6000)
	cls := intent.NewClassifier(provider, 5)

	kb := goldenkb.New([]schema.KnowledgeEntry{
		{
			ID:        "rejection-rate",
			Questions: []string{"what is the overall rejection rate"},
			Answer:    "The overall rejection rate is 66.7% in this portfolio.",
		},
	})

	return New(kb, cls, retr, rt, memory.NewStore(), Options{})
}

func TestResolveGoldenShortCircuit(t *testing.T) {
	mock := &scriptedLLM{}
	o := newTestOrchestrator(t, mock)

	resp, err := o.Resolve(context.Background(), "s1", "what is the overall rejection rate")
	require.NoError(t, err)

	assert.Equal(t, schema.SourceGoldenKB, resp.Source)
	assert.Equal(t, "The overall rejection rate is 66.7% in this portfolio.", resp.Summary)
	assert.Empty(t, resp.StructuredData)
	// The pipeline never ran.
	assert.Empty(t, mock.calls)

	// The curated turn still lands in session memory.
	turns := o.Memory.LastN("s1", 10)
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "assistant", turns[1].Role)
}

func TestResolveMathematicalPipeline(t *testing.T) {
	mock := &scriptedLLM{replies: []string{
		`{"intent": "general_inquiry", "loan_id": "", "filters": {}, "top_k_hint": 0, "compliance_tone": "neutral", "confidence_score": 0.9}`,
		"MATHEMATICAL",
		"```go\nresult = df.CountWhere(\"Loan_Status\", \"==\", \"Rejected\")\n```",
	}}
	o := newTestOrchestrator(t, mock)

	resp, err := o.Resolve(context.Background(), "s1", "how many loans were rejected")
	require.NoError(t, err)

	assert.Equal(t, schema.SourcePipeline, resp.Source)
	assert.Equal(t, "2", resp.Summary)
	assert.Equal(t, schema.IntentGeneralInquiry, resp.Intent)
	assert.Equal(t, 3, resp.RetrievedCaseCount)
	assert.Len(t, mock.calls, 3)
}

func TestResolveSemanticDegradedPipeline(t *testing.T) {
	// No LLM at all: keyword intent, keyword routing, raw-context answer.
	o := newTestOrchestrator(t, &scriptedLLM{})

	resp, err := o.Resolve(context.Background(), "s1", "why was LN001 rejected")
	require.NoError(t, err)

	assert.Equal(t, schema.SourcePipeline, resp.Source)
	assert.Equal(t, schema.IntentWhyRejected, resp.Intent)
	assert.Contains(t, resp.Summary, "Record 1 (Similarity:")
	assert.Equal(t, 3, resp.RetrievedCaseCount)
	assert.Len(t, resp.StructuredData, 3)

	// Evidence and risk notes come from the retrieved cases.
	require.NotEmpty(t, resp.EvidencePoints)
	assert.Contains(t, resp.EvidencePoints[0], "Case LN002")
	require.Len(t, resp.RiskNotes, 2)
	assert.Contains(t, resp.RiskNotes[0], "debt-to-income")
	assert.Contains(t, resp.RiskNotes[1], "credit score below 600")
	assert.NotEmpty(t, resp.ComplianceDisclaimer)
}

func TestResolveMathematicalSurvivesRetrievalOutage(t *testing.T) {
	// Embedding service down: retrieval yields nothing, but the mathematical
	// path needs only the frame and still produces the answer.
	mock := &scriptedLLM{replies: []string{
		`{"intent": "general_inquiry", "loan_id": "", "filters": {}, "top_k_hint": 0, "compliance_tone": "neutral", "confidence_score": 0.9}`,
		"MATHEMATICAL",
		"```go\nresult = df.CountWhere(\"Loan_Status\", \"==\", \"Rejected\")\n```",
	}}
	o := newTestOrchestratorWithEmbed(t, mock, failingEmbed{})

	resp, err := o.Resolve(context.Background(), "s1", "how many loans were rejected")
	require.NoError(t, err)

	assert.Equal(t, "2", resp.Summary)
	assert.Equal(t, 0, resp.RetrievedCaseCount)
	assert.Empty(t, resp.StructuredData)
}

func TestResolveSemanticRetrievalOutage(t *testing.T) {
	// Embedding service down and no LLM: the semantic path reports that no
	// records were found instead of surfacing a transport error.
	o := newTestOrchestratorWithEmbed(t, &scriptedLLM{}, failingEmbed{})

	resp, err := o.Resolve(context.Background(), "s1", "why was LN001 rejected")
	require.NoError(t, err)

	assert.Equal(t, schema.SourcePipeline, resp.Source)
	assert.Contains(t, resp.Summary, "No relevant records found")
	assert.Equal(t, 0, resp.RetrievedCaseCount)
	assert.Empty(t, resp.EvidencePoints)
}

func TestResolveAuditToneDisclaimer(t *testing.T) {
	o := newTestOrchestrator(t, &scriptedLLM{})

	resp, err := o.Resolve(context.Background(), "s1", "audit why LN002 was rejected")
	require.NoError(t, err)
	assert.Contains(t, resp.ComplianceDisclaimer, "audit")
}

func TestResolveEmptyQuery(t *testing.T) {
	o := newTestOrchestrator(t, &scriptedLLM{})
	_, err := o.Resolve(context.Background(), "s1", "")
	assert.Error(t, err)

	// Whitespace-only counts as empty too; it must not reach the curated
	// lookup, where an empty string substring-matches every entry.
	_, err = o.Resolve(context.Background(), "s1", " \t\n ")
	assert.Error(t, err)
	assert.Empty(t, o.Memory.LastN("s1", 10))
}

func TestClearHistory(t *testing.T) {
	o := newTestOrchestrator(t, &scriptedLLM{})

	_, err := o.Resolve(context.Background(), "s1", "what is the overall rejection rate")
	require.NoError(t, err)
	require.NotEmpty(t, o.Memory.LastN("s1", 10))

	o.ClearHistory("s1")
	assert.Empty(t, o.Memory.LastN("s1", 10))

	// A query after the reset leaves only its own turns behind.
	_, err = o.Resolve(context.Background(), "s1", "what is the overall rejection rate")
	require.NoError(t, err)
	turns := o.Memory.LastN("s1", 10)
	require.Len(t, turns, 2)
	assert.Equal(t, "what is the overall rejection rate", turns[0].Content)
}
