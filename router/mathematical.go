package router

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/loansight/loansight/llm"
	"github.com/loansight/loansight/sandbox"
	"github.com/loansight/loansight/schema"
)

const codegenSystem = "You are a code generation engine. Emit only a fenced Go snippet, no commentary."

const codegenPrompt = `Write a short Go snippet that answers the question by calling methods on
the dataset handle df. Assign the final answer to the variable result.

Rules:
- no import statements, no function declarations, no goroutines
- only these df methods exist:
    df.NumRows() int
    df.Count(column string) int            // non-null count; "" counts rows
    df.Sum(column string) float64
    df.Mean(column string) float64
    df.Min(column string) float64
    df.Max(column string) float64
    df.Median(column string) float64
    df.CountWhere(column, op, value string) int   // ops: == != > < >= <=
    df.Filter(column, op, value string) *Frame    // returns a smaller frame
    df.NLargest(n int, column string) *Frame
    df.NSmallest(n int, column string) *Frame
    df.Unique(column string) []string
    df.Cell(row int, column string) string
    Round(v float64, places int) float64
- result may be a number, a string, a []string, or a *Frame

Dataset schema:
%s

Question: %s`

var (
	goFence      = regexp.MustCompile("(?s)```go\\s*\n(.*?)```")
	anyFence     = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\n(.*?)```")
	snippetyLine = regexp.MustCompile(`df\.|df\[|result|Round\(`)
)

func (r *Router) answerMathematical(ctx context.Context, query string) (*Result, error) {
	raw, err := r.LLM.Complete(ctx, llm.Request{
		System:      codegenSystem,
		Prompt:      fmt.Sprintf(codegenPrompt, r.Frame.Describe(), query),
		Temperature: 0,
		MaxTokens:   400,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	code := ExtractCode(raw)
	if code == "" {
		return nil, fmt.Errorf("synthesize: no code in completion")
	}
	decision := schema.RoutingDecision{
		Category:        schema.RouteMathematical,
		SynthesizedCode: code,
	}

	if err := sandbox.Validate(code); err != nil {
		decision.Reason = err.Error()
		return &Result{Decision: decision}, err
	}
	decision.ValidationPassed = true

	value, err := r.Exec.Run(ctx, code, r.Frame)
	if err != nil {
		decision.Reason = err.Error()
		return &Result{Decision: decision}, err
	}

	return &Result{
		Decision: decision,
		Answer:   FormatValue(value, query),
	}, nil
}

// ExtractCode pulls the snippet out of a completion: a go fence first, then
// any fence, then a line heuristic for unfenced replies.
func ExtractCode(raw string) string {
	if m := goFence.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := anyFence.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if snippetyLine.MatchString(line) {
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
