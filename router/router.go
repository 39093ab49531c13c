package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/loansight/loansight/common/logger"
	"github.com/loansight/loansight/dataset"
	"github.com/loansight/loansight/llm"
	"github.com/loansight/loansight/metrics"
	"github.com/loansight/loansight/retriever"
	"github.com/loansight/loansight/sandbox"
	"github.com/loansight/loansight/schema"
)

const routeSystem = "You are a query router for a loan analytics service. Answer with exactly one word."

const routePrompt = `Decide how to answer this query about a loan application dataset.

Reply MATHEMATICAL if the answer is a number, count, aggregate, ranking or
filtered subset computable from tabular data.
Reply SEMANTIC if the answer needs explanation, comparison, narrative or
judgment over retrieved cases.

Query: %s

Reply with exactly one word: MATHEMATICAL or SEMANTIC.`

var mathKeywords = []string{
	"how many", "count", "number of", "average", "mean", "sum", "total",
	"median", "minimum", "maximum", "min ", "max ", "highest", "lowest",
	"percentage", "percent", "ratio", "top ",
}

var semanticKeywords = []string{
	"why", "explain", "describe", "tell me about", "similar", "compare",
	"comparison", "reason", "insight", "pattern", "summarize", "analysis",
	"what does", "should",
}

// tieBreakers force MATHEMATICAL on an even keyword score; anything else on a
// tie reads as a narrative ask.
var tieBreakers = []string{"how many", "count", "average", "total"}

// Router answers pipeline queries by dispatching between code synthesis over
// the frame and narrative generation over retrieved cases.
type Router struct {
	LLM          llm.Provider
	Frame        *dataset.Frame
	Retriever    *retriever.Retriever
	Exec         *sandbox.Executor
	SemanticTopK int
	TokenCap     int
}

// Result carries the routing decision alongside the produced answer.
type Result struct {
	Decision schema.RoutingDecision
	Answer   string
}

func New(provider llm.Provider, frame *dataset.Frame, retr *retriever.Retriever, exec *sandbox.Executor, semanticTopK, tokenCap int) *Router {
	if semanticTopK <= 0 {
		semanticTopK = 10
	}
	if tokenCap <= 0 {
		tokenCap = 6000
	}
	return &Router{
		LLM:          provider,
		Frame:        frame,
		Retriever:    retr,
		Exec:         exec,
		SemanticTopK: semanticTopK,
		TokenCap:     tokenCap,
	}
}

// Route classifies a query as MATHEMATICAL or SEMANTIC. The LLM gets one
// word; anything else falls back to keyword scoring.
func (r *Router) Route(ctx context.Context, query string) schema.RouteCategory {
	raw, err := r.LLM.Complete(ctx, llm.Request{
		System:      routeSystem,
		Prompt:      fmt.Sprintf(routePrompt, query),
		Temperature: 0,
		MaxTokens:   10,
	})
	if err == nil {
		word := strings.ToUpper(strings.TrimSpace(raw))
		switch {
		case strings.HasPrefix(word, "MATHEMATICAL"):
			metrics.IncRouting(string(schema.RouteMathematical))
			return schema.RouteMathematical
		case strings.HasPrefix(word, "SEMANTIC"):
			metrics.IncRouting(string(schema.RouteSemantic))
			return schema.RouteSemantic
		}
		logger.Warnf("router: unexpected route reply %q, using keyword fallback", strings.TrimSpace(raw))
	} else if err != llm.ErrUnavailable {
		logger.Warnf("router: route call failed: %v", err)
	}

	cat := keywordRoute(query)
	metrics.IncRouting(string(cat))
	return cat
}

func keywordRoute(query string) schema.RouteCategory {
	q := strings.ToLower(query)
	mathScore := scoreKeywords(q, mathKeywords)
	semScore := scoreKeywords(q, semanticKeywords)
	if mathScore > semScore {
		return schema.RouteMathematical
	}
	if mathScore == semScore {
		for _, kw := range tieBreakers {
			if strings.Contains(q, kw) {
				return schema.RouteMathematical
			}
		}
	}
	return schema.RouteSemantic
}

func scoreKeywords(q string, kws []string) int {
	n := 0
	for _, kw := range kws {
		if strings.Contains(q, kw) {
			n++
		}
	}
	return n
}

// Answer routes the query and runs the chosen path. The mathematical path
// degrades to semantic when synthesis or execution fails, so the caller
// always gets a usable answer.
func (r *Router) Answer(ctx context.Context, query, history string) (*Result, error) {
	switch r.Route(ctx, query) {
	case schema.RouteMathematical:
		res, err := r.answerMathematical(ctx, query)
		if err == nil {
			return res, nil
		}
		logger.Warnf("router: mathematical path failed (%v), degrading to semantic", err)
		res2, serr := r.answerSemantic(ctx, query, history)
		if serr != nil {
			return nil, err
		}
		res2.Decision.Reason = "mathematical path failed: " + err.Error()
		return res2, nil
	default:
		return r.answerSemantic(ctx, query, history)
	}
}
