package sandbox

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"

	"github.com/loansight/loansight/dataset"
	"github.com/loansight/loansight/metrics"
)

// The interpreter is created without any stdlib symbols. The only importable
// package is the frame binding below, so synthesized snippets can reach the
// dataset and nothing else. The denylist is a cheap first gate; the closed
// symbol table is what actually confines execution.
var denylist = []string{
	"import ",
	"os.",
	"syscall",
	"unsafe",
	"exec",
	"eval(",
	"open(",
	"__",
	"subprocess",
	"net/http",
	"go func",
	"panic(",
	"recover(",
}

var resultBinding = regexp.MustCompile(`(?m)^\s*result\s*:?=`)

// Validate rejects snippets that reference banned constructs or never assign
// the result variable. It runs before any interpretation.
func Validate(code string) error {
	lowered := strings.ToLower(code)
	for _, banned := range denylist {
		if strings.Contains(lowered, banned) {
			metrics.IncSandboxRejection("denylist")
			return fmt.Errorf("sandbox: banned construct %q", strings.TrimSpace(banned))
		}
	}
	if !resultBinding.MatchString(code) {
		metrics.IncSandboxRejection("binding")
		return fmt.Errorf("sandbox: snippet never assigns result")
	}
	return nil
}

// Executor interprets synthesized snippets against a frame, bounded by a
// per-run timeout.
type Executor struct {
	Timeout time.Duration
}

func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Executor{Timeout: timeout}
}

// Run validates and executes a snippet. The snippet sees two names: df, the
// loan frame, and Round, a float rounding helper. It must assign its answer
// to result.
func (e *Executor) Run(ctx context.Context, code string, frame *dataset.Frame) (any, error) {
	if err := Validate(code); err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(interp.Exports{
		"loanframe/loanframe": {
			"DF":    reflect.ValueOf(frame),
			"Round": reflect.ValueOf(dataset.Round),
		},
	}); err != nil {
		return nil, fmt.Errorf("sandbox: bind frame: %w", err)
	}

	if _, err := i.Eval(wrap(code)); err != nil {
		metrics.IncSandboxRejection("runtime")
		return nil, fmt.Errorf("sandbox: evaluate: %w", err)
	}
	v, err := i.Eval("main.Run")
	if err != nil {
		return nil, fmt.Errorf("sandbox: entrypoint missing: %w", err)
	}
	run, ok := v.Interface().(func() interface{})
	if !ok {
		return nil, fmt.Errorf("sandbox: entrypoint has wrong signature")
	}

	runCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	resCh := make(chan any, 1)
	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("sandbox: snippet panicked: %v", r)
			}
		}()
		resCh <- run()
	}()

	select {
	case res := <-resCh:
		// A snippet can pass validation yet leave result unset at runtime
		// (assignment behind a branch that never fires). That is a failed
		// execution, not an empty answer.
		if res == nil {
			metrics.IncSandboxRejection("unset")
			return nil, fmt.Errorf("sandbox: result unset after execution")
		}
		return res, nil
	case err := <-errCh:
		metrics.IncSandboxRejection("runtime")
		return nil, err
	case <-runCtx.Done():
		metrics.IncSandboxRejection("timeout")
		return nil, fmt.Errorf("sandbox: execution timed out after %s", e.Timeout)
	}
}

// wrap embeds the snippet in a main package with the frame bound to df.
// Short declarations of result are normalized to plain assignments so the
// snippet writes the predeclared variable.
func wrap(code string) string {
	code = strings.ReplaceAll(code, "result :=", "result =")
	var b strings.Builder
	b.WriteString("package main\n\n")
	b.WriteString("import \"loanframe\"\n\n")
	b.WriteString("var df = loanframe.DF\n")
	b.WriteString("var Round = loanframe.Round\n\n")
	b.WriteString("func Run() interface{} {\n")
	b.WriteString("\tvar result interface{}\n")
	b.WriteString("\t_ = result\n")
	for _, line := range strings.Split(code, "\n") {
		b.WriteString("\t")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\treturn result\n")
	b.WriteString("}\n")
	return b.String()
}
