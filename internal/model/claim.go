package model

import (
	"fmt"
	"strings"
)

// Claim represents an atomic statement in the hypergraph
type Claim struct {
	ID   string `json:"id" yaml:"id" validate:"required"`
	Text string `json:"text" yaml:"text"`

	// Score is the direct confidence in [0,10]; nil means not directly evaluated
	Score *float64 `json:"score,omitempty" yaml:"score,omitempty" validate:"omitempty,gte=0,lte=10"`

	// BaseCost is a direct cost supplied independently of graph derivation
	BaseCost *Cost `json:"baseCost,omitempty" yaml:"baseCost,omitempty" validate:"omitempty,cost"`

	// EvidenceCost and ExperimentalCost are blended into one direct candidate
	EvidenceCost     *Cost `json:"evidenceCost,omitempty" yaml:"evidenceCost,omitempty" validate:"omitempty,cost"`
	ExperimentalCost *Cost `json:"experimentalCost,omitempty" yaml:"experimentalCost,omitempty" validate:"omitempty,cost"`

	// Axiomatic marks the claim as certain (cost -Inf), distinct from a 10/10 score
	Axiomatic bool `json:"axiomatic,omitempty" yaml:"axiomatic,omitempty"`

	Tags        []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Reasoning   string            `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	Evidence    []Evidence        `json:"evidence,omitempty" yaml:"evidence,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// HasDirectSource reports whether the claim carries any cost source besides implications
func (c Claim) HasDirectSource() bool {
	return c.Axiomatic || c.Score != nil || c.BaseCost != nil || c.EvidenceCost != nil || c.ExperimentalCost != nil
}

// Combinator controls how an implication's premises combine
type Combinator string

const (
	CombinatorAnd Combinator = "AND" // All premises jointly required
	CombinatorOr  Combinator = "OR"  // Any single premise sufficient
)

// UnmarshalText normalizes case so "and"/"or" load too
func (c *Combinator) UnmarshalText(text []byte) error {
	*c = Combinator(strings.ToUpper(strings.TrimSpace(string(text))))
	return nil
}

// Valid reports whether c is a known combinator
func (c Combinator) Valid() bool {
	return c == CombinatorAnd || c == CombinatorOr
}

// EntailmentStatus is the external checker's verdict on an implication
type EntailmentStatus string

const (
	EntailmentUnknown     EntailmentStatus = ""
	EntailmentEntailed    EntailmentStatus = "entailed"
	EntailmentNotEntailed EntailmentStatus = "not_entailed"
	EntailmentUncertain   EntailmentStatus = "uncertain"
)

// Implication is a hyperedge: premises jointly (AND) or alternatively (OR) support the conclusion
type Implication struct {
	ID         string     `json:"id" yaml:"id" validate:"required"`
	Premises   []string   `json:"premises" yaml:"premises"`
	Conclusion string     `json:"conclusion" yaml:"conclusion" validate:"required"`
	Combinator Combinator `json:"combinator" yaml:"combinator" validate:"required,oneof=AND OR"`

	EntailmentStatus      EntailmentStatus `json:"entailmentStatus,omitempty" yaml:"entailmentStatus,omitempty"`
	EntailmentExplanation string           `json:"entailmentExplanation,omitempty" yaml:"entailmentExplanation,omitempty"`
}

// Evidence is an evidentiary annotation on a claim, carried through unchanged
type Evidence struct {
	URL       string        `json:"url,omitempty" yaml:"url,omitempty"`
	Kind      EvidenceKind  `json:"kind,omitempty" yaml:"kind,omitempty"`
	Text      string        `json:"text,omitempty" yaml:"text,omitempty"`
	Authority AuthorityTier `json:"authority,omitempty" yaml:"authority,omitempty"`
}

// EvidenceKind classifies the type of evidence
type EvidenceKind string

const (
	EvidenceKindCitation   EvidenceKind = "citation"
	EvidenceKindExperiment EvidenceKind = "experiment"
	EvidenceKindReference  EvidenceKind = "reference"
)

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0
	TierPrimary   AuthorityTier = 1 // Papers, datasets, official documents
	TierSecondary AuthorityTier = 2 // Reviews, encyclopedias, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, personal websites
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// FormatScore renders an optional score for display
func FormatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%g/10", *score)
}
