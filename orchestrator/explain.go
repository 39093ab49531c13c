package orchestrator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loansight/loansight/schema"
)

const maxEvidencePoints = 5

// Risk heuristics applied to retrieved cases. These mirror common credit
// policy cutoffs, not a scoring model.
const (
	highDTICutoff   = 0.4
	lowCreditCutoff = 600
)

func evidencePoints(cases []schema.RetrievedCase) []string {
	var points []string
	for _, c := range cases {
		if len(points) >= maxEvidencePoints {
			break
		}
		var parts []string
		if c.ApprovalStatus != "" {
			parts = append(parts, "status "+c.ApprovalStatus)
		}
		if c.LoanAmount != nil {
			parts = append(parts, fmt.Sprintf("amount %.0f", *c.LoanAmount))
		}
		parts = append(parts, fmt.Sprintf("similarity %.2f", c.SimilarityScore))
		points = append(points, fmt.Sprintf("Case %s: %s", c.CaseID, strings.Join(parts, ", ")))
	}
	return points
}

func riskNotes(cases []schema.RetrievedCase) []string {
	highDTI := 0
	lowCredit := 0
	for _, c := range cases {
		if v, ok := rawNumber(c, "DTI_Ratio", "DTI"); ok && v > highDTICutoff {
			highDTI++
		}
		if v, ok := rawNumber(c, "Credit_Score", "Cibil_Score"); ok && v < lowCreditCutoff {
			lowCredit++
		}
	}
	var notes []string
	if highDTI > 0 {
		notes = append(notes, fmt.Sprintf("%d of %d retrieved cases carry a debt-to-income ratio above %.0f%%", highDTI, len(cases), highDTICutoff*100))
	}
	if lowCredit > 0 {
		notes = append(notes, fmt.Sprintf("%d of %d retrieved cases have a credit score below %d", lowCredit, len(cases), lowCreditCutoff))
	}
	return notes
}

func rawNumber(c schema.RetrievedCase, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := c.Raw[k]
		if !ok {
			continue
		}
		switch x := v.(type) {
		case float64:
			return x, true
		case int:
			return float64(x), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func disclaimer(tone schema.Tone) string {
	switch tone {
	case schema.ToneAudit:
		return "This explanation reconstructs the recorded decision factors for audit purposes. It reflects the data available at decision time and is not a re-adjudication of the application."
	case schema.ToneBusiness:
		return "This analysis is generated from historical application data to support business review. Final lending decisions remain subject to the institution's credit policy."
	default:
		return "This response is generated from historical loan application data and does not constitute financial advice or a lending decision."
	}
}
