package model

import "time"

// Report is the complete evaluation of one hypergraph
type Report struct {
	Subject     string    `json:"subject"`               // Document title or file name
	SourcePath  string    `json:"source_path,omitempty"` // File the graph was loaded from
	EvaluatedAt time.Time `json:"evaluated_at"`
	Revision    uint64    `json:"revision"` // Store revision the report was computed on

	Goals      []string         `json:"goals,omitempty"`
	Summary    Summary          `json:"summary"`
	Claims     []ClaimCost      `json:"claims"`
	Validation ValidationReport `json:"validation"`
}

// Summary holds aggregate counts shown at the top of a report
type Summary struct {
	Claims       int `json:"claims"`
	Implications int `json:"implications"`
	Certain      int `json:"certain"`     // Cost -Inf
	Unsupported  int `json:"unsupported"` // Cost +Inf
	Errors       int `json:"errors"`
	Warnings     int `json:"warnings"`
	Cycles       int `json:"cycles"`
}

// ClaimCost is the derived cost of one claim with its display form
type ClaimCost struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Score       *float64 `json:"score,omitempty"`
	Cost        Cost     `json:"cost"`
	Probability float64  `json:"probability"`
	Display     string   `json:"display"`
	Source      string   `json:"source,omitempty"` // axiom, direct, or the winning implication id
}

// ValidationReport is the structural validator's output
type ValidationReport struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Valid reports whether no errors were found (warnings allowed)
func (r ValidationReport) Valid() bool {
	return len(r.Errors) == 0
}

// Issue is a single validation finding
type Issue struct {
	Kind          IssueKind `json:"kind"`
	Severity      Severity  `json:"severity"`
	Message       string    `json:"message"`
	ImplicationID string    `json:"implication_id,omitempty"`
	ClaimIDs      []string  `json:"claim_ids,omitempty"`
}

// IssueKind classifies a validation finding
type IssueKind string

const (
	IssueDanglingPremise    IssueKind = "dangling_premise"    // Premise id not in the store
	IssueDanglingConclusion IssueKind = "dangling_conclusion" // Conclusion id not in the store
	IssueEmptyPremises      IssueKind = "empty_premises"
	IssueDuplicatePremise   IssueKind = "duplicate_premise"
	IssueSelfLoop           IssueKind = "self_loop" // Conclusion listed among own premises
	IssueCycle              IssueKind = "cycle"     // Detected during cost propagation
)

// Severity indicates the importance of an issue
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)
