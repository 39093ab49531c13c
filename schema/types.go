package schema

// Intent is the coarse category of what the user is asking.
type Intent string

const (
	IntentWhyRejected    Intent = "why_rejected"
	IntentWhyApproved    Intent = "why_approved"
	IntentSimilarCases   Intent = "similar_cases"
	IntentRiskAnalysis   Intent = "risk_analysis"
	IntentAuditReason    Intent = "audit_reason"
	IntentGeneralInquiry Intent = "general_inquiry"
)

// ValidIntent reports whether s names a known intent.
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentWhyRejected, IntentWhyApproved, IntentSimilarCases,
		IntentRiskAnalysis, IntentAuditReason, IntentGeneralInquiry:
		return true
	}
	return false
}

// Tone controls the compliance register of the generated answer.
type Tone string

const (
	ToneAudit    Tone = "audit"
	ToneBusiness Tone = "business"
	ToneNeutral  Tone = "neutral"
)

// ValidTone reports whether s names a known compliance tone.
func ValidTone(s string) bool {
	switch Tone(s) {
	case ToneAudit, ToneBusiness, ToneNeutral:
		return true
	}
	return false
}

// KnowledgeEntry is one curated question/answer record. Loaded once at
// startup and read-only for the process lifetime.
type KnowledgeEntry struct {
	ID        string   `json:"id" yaml:"id"`
	Questions []string `json:"questions" yaml:"questions"`
	Answer    string   `json:"answer" yaml:"answer"`
}

// MatchResult pairs a curated entry with the confidence of the match.
type MatchResult struct {
	Entry      *KnowledgeEntry `json:"entry"`
	Confidence float64         `json:"confidence_score"`
}

// IntentResult is the classifier's view of a query. Never mutated after
// creation.
type IntentResult struct {
	Intent     Intent         `json:"intent"`
	LoanID     string         `json:"loan_id,omitempty"`
	Filters    map[string]any `json:"filters,omitempty"`
	TopKHint   int            `json:"top_k_hint"`
	Tone       Tone           `json:"compliance_tone"`
	Confidence float64        `json:"confidence_score"`
}

// RetrievedCase is one nearest-neighbor hit mapped onto the loan domain.
// Ordering by descending SimilarityScore is significant and preserved end
// to end.
type RetrievedCase struct {
	CaseID          string         `json:"case_id"`
	CustomerName    string         `json:"customer_name,omitempty"`
	LoanAmount      *float64       `json:"loan_amount,omitempty"`
	ApprovalStatus  string         `json:"approval_status,omitempty"`
	SimilarityScore float64        `json:"similarity_score"`
	Raw             map[string]any `json:"original_data"`
}

// RouteCategory is the router's binary classification.
type RouteCategory string

const (
	RouteMathematical RouteCategory = "MATHEMATICAL"
	RouteSemantic     RouteCategory = "SEMANTIC"
)

// RoutingDecision is the transient per-query routing artifact. A decision
// with ValidationPassed=false must never be executed.
type RoutingDecision struct {
	Category         RouteCategory `json:"category"`
	SynthesizedCode  string        `json:"synthesized_code,omitempty"`
	ValidationPassed bool          `json:"validation_passed"`
	Reason           string        `json:"reason,omitempty"`
}

// ResponseSource marks which path produced a FinalResponse.
type ResponseSource string

const (
	SourceGoldenKB ResponseSource = "golden_kb"
	SourcePipeline ResponseSource = "pipeline"
)

// ConversationTurn is one user or assistant message in a session.
type ConversationTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// FinalResponse is the terminal artifact returned to the caller. Never
// mutated after construction.
type FinalResponse struct {
	Query                string          `json:"query"`
	Intent               Intent          `json:"intent"`
	RetrievedCaseCount   int             `json:"retrieved_case_count"`
	Summary              string          `json:"summary"`
	EvidencePoints       []string        `json:"evidence_points"`
	RiskNotes            []string        `json:"risk_notes"`
	ComplianceDisclaimer string          `json:"compliance_disclaimer"`
	StructuredData       []RetrievedCase `json:"structured_data,omitempty"`
	Source               ResponseSource  `json:"source"`
}

// SearchHit is a raw vector-index result: the source row plus its
// similarity score under inner-product metric.
type SearchHit struct {
	RowIndex int
	Score    float64
}
