package score

import (
	"math"

	"github.com/ppiankov/argmap/internal/model"
)

// combineFunc folds the costs of an implication's premises into one candidate cost
type combineFunc func(costs []model.Cost) model.Cost

// combiners holds the numeric contract of each combinator in one place
var combiners = map[model.Combinator]combineFunc{
	model.CombinatorAnd: conjunction,
	model.CombinatorOr:  disjunction,
}

// conjunction adds costs (probabilities multiply).
// +Inf absorbs before any addition happens, so -Inf + +Inf never yields NaN.
// Certain premises contribute nothing; if every premise is certain the result is certain.
func conjunction(costs []model.Cost) model.Cost {
	if len(costs) == 0 {
		return model.Impossible
	}
	for _, c := range costs {
		if c.IsImpossible() {
			return model.Impossible
		}
	}

	var sum float64
	finite := 0
	for _, c := range costs {
		if c.IsCertain() {
			continue
		}
		sum += float64(c)
		finite++
	}
	if finite == 0 {
		return model.Certain
	}
	return model.Cost(sum)
}

// disjunction picks the most probable premise
func disjunction(costs []model.Cost) model.Cost {
	best := model.Impossible
	for _, c := range costs {
		if c < best {
			best = c
		}
	}
	return best
}

// Combine applies the combinator's rule to premise costs.
// Unknown combinators cannot support anything.
func Combine(combinator model.Combinator, costs []model.Cost) model.Cost {
	fn, ok := combiners[combinator]
	if !ok {
		return model.Impossible
	}
	return fn(costs)
}

// FromScore converts a 0-10 confidence score to a cost: -log2(score/10).
// Score 0 is impossible; score 10 is exactly 0, not certain.
func FromScore(score float64) model.Cost {
	switch {
	case score <= 0:
		return model.Impossible
	case score >= 10:
		return 0
	}
	return model.Cost(-math.Log2(score / 10))
}

// blend merges evidence and experimental costs into one direct candidate
func blend(mode string, weight float64, evidence, experimental *model.Cost) (model.Cost, bool) {
	switch {
	case evidence == nil && experimental == nil:
		return 0, false
	case evidence == nil:
		return *experimental, true
	case experimental == nil:
		return *evidence, true
	}

	e, x := *evidence, *experimental
	if mode != model.BaseCostWeighted {
		return disjunction([]model.Cost{e, x}), true
	}

	switch {
	case weight <= 0:
		return x, true
	case weight >= 1:
		return e, true
	}
	if e.IsImpossible() || x.IsImpossible() {
		return model.Impossible, true
	}
	v := weight*float64(e) + (1-weight)*float64(x)
	if math.IsNaN(v) {
		return model.Impossible, true
	}
	return model.Cost(v), true
}
