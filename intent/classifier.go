package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/loansight/loansight/common/logger"
	"github.com/loansight/loansight/llm"
	"github.com/loansight/loansight/metrics"
	"github.com/loansight/loansight/schema"
)

const classifySystem = "You are an intent classification engine for a loan-decision analytics service. Respond with a single JSON object and nothing else."

const classifyPrompt = `Classify the user query about loan applications.

Allowed intents:
- why_rejected: the user asks why an application was rejected or denied
- why_approved: the user asks why an application was approved or sanctioned
- similar_cases: the user asks for applications similar to a given one
- risk_analysis: the user asks about risk factors, credit, DTI or default likelihood
- audit_reason: the user asks for a compliance or audit trail of a decision
- general_inquiry: anything else about the portfolio

Return JSON with exactly these keys:
{
  "intent": "<one of the allowed intents>",
  "loan_id": "<application identifier mentioned in the query, or empty string>",
  "filters": {"<field>": <value>, ...},
  "top_k_hint": <number of cases the user wants, or 0>,
  "compliance_tone": "<audit|business|neutral>",
  "confidence_score": <0.0-1.0>
}

Query: %s`

var loanIDPattern = regexp.MustCompile(`\b[A-Z]{2,}[A-Z0-9]*\d{3,}\b`)

// Classifier maps free-form queries to a structured IntentResult. The LLM path
// runs in JSON mode; when it is unavailable or returns garbage, a keyword
// fallback keeps the pipeline moving at reduced confidence.
type Classifier struct {
	LLM         llm.Provider
	DefaultTopK int
}

func NewClassifier(provider llm.Provider, defaultTopK int) *Classifier {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &Classifier{LLM: provider, DefaultTopK: defaultTopK}
}

// Classify never fails: any LLM or parse error degrades to the keyword
// fallback.
func (c *Classifier) Classify(ctx context.Context, query string) schema.IntentResult {
	raw, err := c.LLM.Complete(ctx, llm.Request{
		System:      classifySystem,
		Prompt:      fmt.Sprintf(classifyPrompt, query),
		Temperature: 0,
		MaxTokens:   300,
		JSONMode:    true,
	})
	if err == nil {
		if res, ok := parseResult(raw); ok {
			metrics.IncIntent("llm")
			if res.TopKHint <= 0 {
				res.TopKHint = c.DefaultTopK
			}
			if res.LoanID == "" {
				res.LoanID = extractLoanID(query)
			}
			return res
		}
		logger.Warnf("intent: unparseable classification %q, using fallback", truncate(raw, 120))
	} else if err != llm.ErrUnavailable {
		logger.Warnf("intent: classification call failed: %v", err)
	}

	metrics.IncIntent("fallback")
	return c.fallback(query)
}

func parseResult(raw string) (schema.IntentResult, bool) {
	body := gjson.Parse(strings.TrimSpace(raw))
	if !body.IsObject() {
		// Models sometimes wrap the object in prose or a fence.
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return schema.IntentResult{}, false
		}
		body = gjson.Parse(raw[start : end+1])
		if !body.IsObject() {
			return schema.IntentResult{}, false
		}
	}

	rawIntent := strings.ToLower(strings.TrimSpace(body.Get("intent").String()))
	if !schema.ValidIntent(rawIntent) {
		return schema.IntentResult{}, false
	}
	rawTone := strings.ToLower(strings.TrimSpace(body.Get("compliance_tone").String()))
	if !schema.ValidTone(rawTone) {
		rawTone = string(schema.ToneNeutral)
	}
	confidence := body.Get("confidence_score").Float()
	if confidence < 0 || confidence > 1 {
		confidence = 0.5
	}

	res := schema.IntentResult{
		Intent:     schema.Intent(rawIntent),
		LoanID:     strings.TrimSpace(body.Get("loan_id").String()),
		TopKHint:   int(body.Get("top_k_hint").Int()),
		Tone:       schema.Tone(rawTone),
		Confidence: confidence,
	}
	if filters := body.Get("filters"); filters.IsObject() {
		res.Filters = make(map[string]any)
		filters.ForEach(func(key, value gjson.Result) bool {
			res.Filters[key.String()] = value.Value()
			return true
		})
	}
	return res, true
}

// fallback checks a fixed keyword per intent in a fixed priority so that
// mixed queries ("why was this rejected, not approved?") resolve
// deterministically. The sets stay narrow on purpose: widening them (e.g.
// matching "credit" for risk) reclassifies queries the LLM path would have
// treated as general inquiries.
func (c *Classifier) fallback(query string) schema.IntentResult {
	q := strings.ToLower(query)

	intent := schema.IntentGeneralInquiry
	switch {
	case strings.Contains(q, "reject"):
		intent = schema.IntentWhyRejected
	case strings.Contains(q, "approve"):
		intent = schema.IntentWhyApproved
	case strings.Contains(q, "similar"):
		intent = schema.IntentSimilarCases
	case strings.Contains(q, "risk"):
		intent = schema.IntentRiskAnalysis
	}

	// Tone is orthogonal to intent here: an audit mention changes the
	// register, not the category.
	tone := schema.ToneNeutral
	if strings.Contains(q, "audit") {
		tone = schema.ToneAudit
	}

	return schema.IntentResult{
		Intent:     intent,
		LoanID:     extractLoanID(query),
		TopKHint:   c.DefaultTopK,
		Tone:       tone,
		Confidence: 0.5,
	}
}

func extractLoanID(query string) string {
	return loanIDPattern.FindString(query)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
