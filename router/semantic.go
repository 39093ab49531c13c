package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/loansight/loansight/common/logger"
	"github.com/loansight/loansight/llm"
	"github.com/loansight/loansight/schema"
)

const analysisSystem = "You are a loan portfolio analyst. Ground every statement in the supplied records; never invent data."

const analysisPrompt = `Use the retrieved loan records to answer the question. Cite record numbers
when you reference a specific case. If the records do not support an answer,
say so.

%sRetrieved records:
%s

Question: %s`

func (r *Router) answerSemantic(ctx context.Context, query, history string) (*Result, error) {
	cases, err := r.Retriever.Search(ctx, query, r.SemanticTopK)
	if err != nil {
		logger.Warnf("router: semantic retrieval unavailable (%v), continuing without records", err)
		cases = nil
	}
	if len(cases) == 0 {
		return &Result{
			Decision: schema.RoutingDecision{Category: schema.RouteSemantic, Reason: "no relevant records retrieved"},
			Answer:   "No relevant records found for this query.",
		}, nil
	}
	contextText := capTokens(BuildContext(cases), r.TokenCap)

	historyBlock := ""
	if history != "" {
		historyBlock = "Conversation so far:\n" + history + "\n\n"
	}

	decision := schema.RoutingDecision{Category: schema.RouteSemantic}

	answer, err := r.LLM.Complete(ctx, llm.Request{
		System:      analysisSystem,
		Prompt:      fmt.Sprintf(analysisPrompt, historyBlock, contextText, query),
		Temperature: 0.2,
		MaxTokens:   600,
	})
	if err != nil {
		logger.Warnf("router: semantic analysis failed (%v), returning raw context", err)
		decision.Reason = "analysis unavailable, raw records returned"
		return &Result{
			Decision: decision,
			Answer:   "Retrieved records (analysis unavailable):\n\n" + contextText,
		}, nil
	}
	return &Result{Decision: decision, Answer: strings.TrimSpace(answer)}, nil
}

// BuildContext renders retrieved cases as numbered record blocks for the
// analysis prompt.
func BuildContext(cases []schema.RetrievedCase) string {
	if len(cases) == 0 {
		return "(no records retrieved)"
	}
	var b strings.Builder
	for i, c := range cases {
		fmt.Fprintf(&b, "Record %d (Similarity: %.3f):\n", i+1, c.SimilarityScore)
		writeField(&b, "Customer", c.CustomerName)
		writeField(&b, "Loan Status", c.ApprovalStatus)
		if c.LoanAmount != nil {
			fmt.Fprintf(&b, "  Loan Amount: %.2f\n", *c.LoanAmount)
		}
		writeField(&b, "Income", rawString(c, "Income", "Applicant_Income", "Annual_Income"))
		writeField(&b, "Credit Score", rawString(c, "Credit_Score", "Cibil_Score"))
		writeField(&b, "DTI Ratio", rawString(c, "DTI_Ratio", "DTI"))
		writeField(&b, "Age", rawString(c, "Age"))
		writeField(&b, "Employment", rawString(c, "Employment_Type", "Self_Employed"))
		writeField(&b, "Purpose", rawString(c, "Loan_Purpose", "Purpose"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %s: %s\n", label, value)
}

func rawString(c schema.RetrievedCase, keys ...string) string {
	for _, k := range keys {
		if v, ok := c.Raw[k]; ok {
			s := strings.TrimSpace(fmt.Sprint(v))
			if s != "" && s != "<nil>" {
				return s
			}
		}
	}
	return ""
}

// capTokens bounds the context block by token count, falling back to a rough
// character cap when the encoder cannot be loaded.
func capTokens(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warnf("router: token encoder unavailable (%v), using character cap", err)
		if r := []rune(text); len(r) > limit*4 {
			return string(r[:limit*4])
		}
		return text
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= limit {
		return text
	}
	return enc.Decode(tokens[:limit])
}
