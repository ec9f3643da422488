package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Cost is an epistemic cost: -log2 of a probability.
// Lower is more probable; +Inf is impossible, -Inf is certain.
type Cost float64

var (
	// Impossible is the cost of a claim with no available support (P = 0)
	Impossible = Cost(math.Inf(1))

	// Certain is the cost of an axiomatic claim (P = 1)
	Certain = Cost(math.Inf(-1))
)

// IsImpossible reports whether c is +Inf
func (c Cost) IsImpossible() bool { return math.IsInf(float64(c), 1) }

// IsCertain reports whether c is -Inf
func (c Cost) IsCertain() bool { return math.IsInf(float64(c), -1) }

// IsFinite reports whether c is a regular number
func (c Cost) IsFinite() bool {
	f := float64(c)
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// Probability converts the cost to P = 2^(-cost)
func (c Cost) Probability() float64 {
	switch {
	case c.IsImpossible():
		return 0
	case c.IsCertain():
		return 1
	}
	return math.Exp2(-float64(c))
}

// String formats the cost the way the presentation layer displays it
func (c Cost) String() string {
	switch {
	case c.IsImpossible():
		return "∞ (P = 0)"
	case c.IsCertain():
		return "-∞ (P = 1)"
	}
	return fmt.Sprintf("%.3f (P = %.4f)", float64(c), c.Probability())
}

// text returns the serialized form: a number, "inf" or "-inf"
func (c Cost) text() string {
	switch {
	case c.IsImpossible():
		return "inf"
	case c.IsCertain():
		return "-inf"
	}
	return strconv.FormatFloat(float64(c), 'g', -1, 64)
}

// ParseCost parses a number or one of inf, +inf, -inf (case-insensitive, ∞ accepted)
func ParseCost(s string) (Cost, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "inf", "+inf", "infinity", "∞", "+∞":
		return Impossible, nil
	case "-inf", "-infinity", "-∞":
		return Certain, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cost %q", s)
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("invalid cost %q", s)
	}
	return Cost(f), nil
}

// MarshalJSON encodes infinities as strings since JSON has no literal for them
func (c Cost) MarshalJSON() ([]byte, error) {
	if c.IsFinite() {
		return []byte(c.text()), nil
	}
	return json.Marshal(c.text())
}

// UnmarshalJSON accepts a number or an infinity string
func (c *Cost) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	parsed, err := ParseCost(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML encodes the cost as a plain scalar
func (c Cost) MarshalYAML() (interface{}, error) {
	if c.IsFinite() {
		return float64(c), nil
	}
	return c.text(), nil
}

// UnmarshalYAML accepts a number, inf/-inf, or the YAML .inf/-.inf literals
func (c *Cost) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: cost must be a scalar", value.Line)
	}
	var f float64
	if err := value.Decode(&f); err == nil {
		if math.IsNaN(f) {
			return fmt.Errorf("line %d: cost must not be NaN", value.Line)
		}
		*c = Cost(f)
		return nil
	}
	parsed, err := ParseCost(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = parsed
	return nil
}
