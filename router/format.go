package router

import (
	"fmt"
	"strings"

	"github.com/loansight/loansight/dataset"
)

const maxRenderedRows = 10

var currencyHints = []string{"income", "amount", "loan", "salary", "emi", "balance"}
var percentHints = []string{"percent", "percentage", "rate", "proportion", "share"}

// FormatValue renders a sandbox result for the user. The query text decides
// the numeric style: percentages get two decimals and a sign, monetary
// questions get INR with digit grouping, counts stay plain integers.
func FormatValue(value any, query string) string {
	q := strings.ToLower(query)
	switch v := value.(type) {
	case nil:
		return "No result."
	case int:
		return groupDigits(fmt.Sprintf("%d", v))
	case int64:
		return groupDigits(fmt.Sprintf("%d", v))
	case float64:
		return formatFloat(v, q)
	case float32:
		return formatFloat(float64(v), q)
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case *dataset.Frame:
		return renderFrame(v)
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(v float64, q string) string {
	if containsAny(q, percentHints) {
		return fmt.Sprintf("%.2f%%", v)
	}
	if containsAny(q, currencyHints) {
		return "INR " + groupDigits(fmt.Sprintf("%.2f", v))
	}
	if v == float64(int64(v)) {
		return groupDigits(fmt.Sprintf("%d", int64(v)))
	}
	return fmt.Sprintf("%.2f", v)
}

func renderFrame(f *dataset.Frame) string {
	if f == nil || f.NumRows() == 0 {
		return "No matching rows."
	}
	cols := f.Columns()
	var b strings.Builder
	b.WriteString(strings.Join(cols, " | "))
	b.WriteString("\n")

	n := f.NumRows()
	shown := n
	if shown > maxRenderedRows {
		shown = maxRenderedRows
	}
	for i := 0; i < shown; i++ {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = f.Cell(i, c)
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString("\n")
	}
	if n > shown {
		b.WriteString(fmt.Sprintf("... (%d total)\n", n))
	}
	return strings.TrimRight(b.String(), "\n")
}

// groupDigits inserts thousands separators into the integer part of a
// formatted number.
func groupDigits(s string) string {
	intPart := s
	rest := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, rest = s[:i], s[i:]
	}
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	if len(intPart) <= 3 {
		if neg {
			return "-" + intPart + rest
		}
		return intPart + rest
	}
	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)
	out := strings.Join(groups, ",") + rest
	if neg {
		return "-" + out
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
