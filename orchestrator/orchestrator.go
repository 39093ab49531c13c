package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/loansight/loansight/common/logger"
	"github.com/loansight/loansight/goldenkb"
	"github.com/loansight/loansight/intent"
	"github.com/loansight/loansight/memory"
	"github.com/loansight/loansight/metrics"
	"github.com/loansight/loansight/retriever"
	"github.com/loansight/loansight/router"
	"github.com/loansight/loansight/schema"
)

// Orchestrator runs the layered resolution flow: curated answers first, then
// intent classification, case retrieval and routed answering.
type Orchestrator struct {
	KB             *goldenkb.KB
	Threshold      float64
	Classifier     *intent.Classifier
	Retriever      *retriever.Retriever
	Router         *router.Router
	Memory         *memory.Store
	HistoryTurns   int
	HistoryCharCap int
}

type Options struct {
	Threshold      float64
	HistoryTurns   int
	HistoryCharCap int
}

func New(kb *goldenkb.KB, cls *intent.Classifier, retr *retriever.Retriever, rt *router.Router, mem *memory.Store, opts Options) *Orchestrator {
	if opts.Threshold <= 0 {
		opts.Threshold = goldenkb.DefaultThreshold
	}
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = 3
	}
	if opts.HistoryCharCap <= 0 {
		opts.HistoryCharCap = 500
	}
	return &Orchestrator{
		KB:             kb,
		Threshold:      opts.Threshold,
		Classifier:     cls,
		Retriever:      retr,
		Router:         rt,
		Memory:         mem,
		HistoryTurns:   opts.HistoryTurns,
		HistoryCharCap: opts.HistoryCharCap,
	}
}

// Resolve answers one query for a session. Curated hits short-circuit the
// pipeline; everything, curated or not, is recorded in session memory so
// follow-up questions see it.
func (o *Orchestrator) Resolve(ctx context.Context, sessionID, query string) (*schema.FinalResponse, error) {
	// Trim before the guard: a whitespace-only query would otherwise reach
	// the curated lookup, where the empty string substring-matches every
	// entry.
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("orchestrator: empty query")
	}

	if match := o.KB.FindBestMatch(query, o.Threshold); match != nil {
		metrics.IncGoldenLookup("hit")
		logger.Debugf("orchestrator: curated hit %q confidence=%.3f", match.Entry.ID, match.Confidence)
		resp := &schema.FinalResponse{
			Query:                query,
			Intent:               schema.IntentGeneralInquiry,
			Summary:              match.Entry.Answer,
			ComplianceDisclaimer: disclaimer(schema.ToneNeutral),
			Source:               schema.SourceGoldenKB,
		}
		o.record(sessionID, query, resp.Summary)
		return resp, nil
	}
	metrics.IncGoldenLookup("miss")

	res := o.Classifier.Classify(ctx, query)
	logger.Debugf("orchestrator: intent=%s confidence=%.2f loan_id=%q", res.Intent, res.Confidence, res.LoanID)

	// Retrieval outages degrade to zero cases; the routed answer still runs
	// (the mathematical path needs no retrieval at all).
	cases, err := o.Retriever.Search(ctx, query, res.TopKHint)
	if err != nil {
		logger.Warnf("orchestrator: retrieval unavailable, continuing without cases: %v", err)
		cases = nil
	}
	cases = retriever.ApplyFilters(cases, res.Filters)

	history := memory.Render(o.Memory.LastN(sessionID, o.HistoryTurns), o.HistoryCharCap)
	answer, err := o.Router.Answer(ctx, query, history)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: answer: %w", err)
	}

	resp := &schema.FinalResponse{
		Query:                query,
		Intent:               res.Intent,
		RetrievedCaseCount:   len(cases),
		Summary:              answer.Answer,
		EvidencePoints:       evidencePoints(cases),
		RiskNotes:            riskNotes(cases),
		ComplianceDisclaimer: disclaimer(res.Tone),
		StructuredData:       cases,
		Source:               schema.SourcePipeline,
	}
	o.record(sessionID, query, resp.Summary)
	return resp, nil
}

// ClearHistory drops a session's conversation memory.
func (o *Orchestrator) ClearHistory(sessionID string) {
	o.Memory.Clear(sessionID)
}

func (o *Orchestrator) record(sessionID, query, answer string) {
	if sessionID == "" {
		return
	}
	o.Memory.Append(sessionID, schema.ConversationTurn{Role: "user", Content: query})
	o.Memory.Append(sessionID, schema.ConversationTurn{Role: "assistant", Content: answer})
}
