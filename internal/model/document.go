package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Document is the persisted form of a hypergraph
type Document struct {
	Title        string        `json:"title,omitempty" yaml:"title,omitempty"`
	Goals        []string      `json:"goals,omitempty" yaml:"goals,omitempty"`
	Claims       []Claim       `json:"claims" yaml:"claims"`
	Implications []Implication `json:"implications" yaml:"implications"`
}

// SchemaError lists every problem found while checking a document or an edit
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	if len(e.Problems) == 1 {
		return "schema: " + e.Problems[0]
	}
	return fmt.Sprintf("schema: %d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

var (
	schemaOnce     sync.Once
	schemaValidate *validator.Validate
)

func schema() *validator.Validate {
	schemaOnce.Do(func() {
		schemaValidate = validator.New(validator.WithRequiredStructEnabled())
		_ = schemaValidate.RegisterValidation("cost", validCost)
	})
	return schemaValidate
}

// validCost accepts ±Inf and finite non-negative values
func validCost(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	if math.IsNaN(f) {
		return false
	}
	return math.IsInf(f, 0) || f >= 0
}

// CheckClaim validates a single claim's fields
func CheckClaim(c Claim) error {
	return schemaErrorFrom(schema().Struct(c), fmt.Sprintf("claim %q", c.ID))
}

// CheckImplication validates a single implication's fields
func CheckImplication(i Implication) error {
	return schemaErrorFrom(schema().Struct(i), fmt.Sprintf("implication %q", i.ID))
}

// Check validates field constraints and id uniqueness across the document.
// Referential problems (dangling ids, empty premises, self-loops) are left
// to the structural validator.
func (d *Document) Check() error {
	var problems []string

	claimIDs := make(map[string]bool, len(d.Claims))
	for i, c := range d.Claims {
		if err := CheckClaim(c); err != nil {
			problems = append(problems, unwrapProblems(err, fmt.Sprintf("claims[%d]", i))...)
		}
		if c.ID != "" && claimIDs[c.ID] {
			problems = append(problems, fmt.Sprintf("claims[%d]: duplicate claim id %q", i, c.ID))
		}
		claimIDs[c.ID] = true
	}

	implIDs := make(map[string]bool, len(d.Implications))
	for i, impl := range d.Implications {
		if err := CheckImplication(impl); err != nil {
			problems = append(problems, unwrapProblems(err, fmt.Sprintf("implications[%d]", i))...)
		}
		if impl.ID != "" && implIDs[impl.ID] {
			problems = append(problems, fmt.Sprintf("implications[%d]: duplicate implication id %q", i, impl.ID))
		}
		implIDs[impl.ID] = true
	}

	if len(problems) > 0 {
		return &SchemaError{Problems: problems}
	}
	return nil
}

func schemaErrorFrom(err error, subject string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &SchemaError{Problems: []string{fmt.Sprintf("%s: %v", subject, err)}}
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s: %s", subject, describeField(fe)))
	}
	return &SchemaError{Problems: problems}
}

func unwrapProblems(err error, prefix string) []string {
	var se *SchemaError
	if !errors.As(err, &se) {
		return []string{prefix + ": " + err.Error()}
	}
	out := make([]string, len(se.Problems))
	for i, p := range se.Problems {
		out[i] = prefix + " " + p
	}
	return out
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gte", "lte":
		return fmt.Sprintf("%s must be within [0,10], got %v", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s, got %q", field, fe.Param(), fe.Value())
	case "cost":
		return fmt.Sprintf("%s must be a non-negative number, inf or -inf, got %v", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
