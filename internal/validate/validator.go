package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/argmap/internal/graph"
	"github.com/ppiankov/argmap/internal/model"
	"github.com/ppiankov/argmap/internal/score"
)

// Validator checks the structural soundness of a hypergraph snapshot.
// It never mutates the graph and never blocks edits; callers display its report.
type Validator struct {
	propagator *score.Propagator
}

// NewValidator creates a validator that runs the given propagator to detect cycles.
// A nil propagator uses default options.
func NewValidator(propagator *score.Propagator) *Validator {
	if propagator == nil {
		propagator = score.NewPropagator(score.Options{})
	}
	return &Validator{propagator: propagator}
}

// Validate runs the structural checks and a propagation pass for cycle detection
func (v *Validator) Validate(snap *graph.Snapshot) model.ValidationReport {
	return v.ValidateWithCycles(snap, v.propagator.Calculate(snap).Cycles)
}

// ValidateWithCycles runs the structural checks and reports cycles already found
// by a propagation pass over the same snapshot
func (v *Validator) ValidateWithCycles(snap *graph.Snapshot, cycles [][]string) model.ValidationReport {
	report := model.ValidationReport{
		Errors:   []model.Issue{},
		Warnings: []model.Issue{},
	}

	for _, id := range snap.ImplicationIDs() {
		impl, _ := snap.Implication(id)
		report.Errors = append(report.Errors, checkImplication(snap, impl)...)
	}

	for _, members := range cycles {
		report.Warnings = append(report.Warnings, model.Issue{
			Kind:     model.IssueCycle,
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("cyclic reasoning among claims %s", strings.Join(members, ", ")),
			ClaimIDs: append([]string(nil), members...),
		})
	}

	sortIssues(report.Errors)
	sortIssues(report.Warnings)
	return report
}

// checkImplication returns every referential and well-formedness error of one implication
func checkImplication(snap *graph.Snapshot, impl model.Implication) []model.Issue {
	var issues []model.Issue
	issue := func(kind model.IssueKind, claims []string, format string, args ...interface{}) {
		issues = append(issues, model.Issue{
			Kind:          kind,
			Severity:      model.SeverityError,
			Message:       fmt.Sprintf("implication %s: ", impl.ID) + fmt.Sprintf(format, args...),
			ImplicationID: impl.ID,
			ClaimIDs:      claims,
		})
	}

	if len(impl.Premises) == 0 {
		issue(model.IssueEmptyPremises, nil, "has no premises")
	}

	if !snap.HasClaim(impl.Conclusion) {
		issue(model.IssueDanglingConclusion, []string{impl.Conclusion}, "conclusion %q is not a claim", impl.Conclusion)
	}

	seen := make(map[string]bool, len(impl.Premises))
	reported := make(map[string]bool)
	for _, p := range impl.Premises {
		if seen[p] {
			if !reported[p] {
				issue(model.IssueDuplicatePremise, []string{p}, "premise %q is listed more than once", p)
				reported[p] = true
			}
			continue
		}
		seen[p] = true

		if !snap.HasClaim(p) {
			issue(model.IssueDanglingPremise, []string{p}, "premise %q is not a claim", p)
		}
	}

	if seen[impl.Conclusion] {
		issue(model.IssueSelfLoop, []string{impl.Conclusion}, "conclusion %q is also one of its premises", impl.Conclusion)
	}

	return issues
}

func sortIssues(issues []model.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.ImplicationID != b.ImplicationID {
			return a.ImplicationID < b.ImplicationID
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return strings.Join(a.ClaimIDs, ",") < strings.Join(b.ClaimIDs, ",")
	})
}
