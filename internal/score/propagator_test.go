package score

import (
	"math"
	"reflect"
	"testing"

	"github.com/ppiankov/argmap/internal/graph"
	"github.com/ppiankov/argmap/internal/model"
)

func ptr[T any](v T) *T { return &v }

func cost(c float64) *model.Cost {
	v := model.Cost(c)
	return &v
}

func claim(id string) model.Claim { return model.Claim{ID: id, Text: "claim " + id} }

func scored(id string, score float64) model.Claim {
	c := claim(id)
	c.Score = ptr(score)
	return c
}

func based(id string, base float64) model.Claim {
	c := claim(id)
	c.BaseCost = cost(base)
	return c
}

func axiom(id string) model.Claim {
	c := claim(id)
	c.Axiomatic = true
	return c
}

func impl(id string, comb model.Combinator, conclusion string, premises ...string) model.Implication {
	return model.Implication{ID: id, Premises: premises, Conclusion: conclusion, Combinator: comb}
}

func snapshot(t *testing.T, claims []model.Claim, implications ...model.Implication) *graph.Snapshot {
	t.Helper()
	s, err := graph.Load(&model.Document{Claims: claims, Implications: implications})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s.Snapshot()
}

func calculate(t *testing.T, claims []model.Claim, implications ...model.Implication) *Result {
	t.Helper()
	return NewPropagator(Options{}).Calculate(snapshot(t, claims, implications...))
}

func approx(a, b model.Cost) bool {
	if !a.IsFinite() || !b.IsFinite() {
		return a == b
	}
	return math.Abs(float64(a-b)) < 1e-9
}

func TestFromScore_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  model.Cost
	}{
		{0, model.Impossible},
		{10, 0},
		{5, 1},
		{2.5, 2},
	}

	for _, tt := range tests {
		got := FromScore(tt.score)
		if !approx(got, tt.want) {
			t.Errorf("FromScore(%v) = %v, want %v", tt.score, float64(got), float64(tt.want))
		}
	}

	if FromScore(10).IsCertain() {
		t.Error("Score 10 must be cost 0, not -Inf")
	}
}

func TestCalculate_UnsupportedClaimIsImpossible(t *testing.T) {
	r := calculate(t, []model.Claim{claim("a")})

	if !r.Cost("a").IsImpossible() {
		t.Errorf("Expected +Inf for claim without sources, got %v", float64(r.Cost("a")))
	}
	if src, ok := r.Sources["a"]; ok {
		t.Errorf("Expected no source for unsupported claim, got %q", src)
	}
}

func TestCalculate_AndSumsOrMins(t *testing.T) {
	r := calculate(t,
		[]model.Claim{based("a", 1), based("b", 2), claim("and"), claim("or")},
		impl("i-and", model.CombinatorAnd, "and", "a", "b"),
		impl("i-or", model.CombinatorOr, "or", "a", "b"),
	)

	if got := r.Cost("and"); !approx(got, 3) {
		t.Errorf("Expected AND cost 3, got %v", float64(got))
	}
	if got := r.Cost("or"); !approx(got, 1) {
		t.Errorf("Expected OR cost 1, got %v", float64(got))
	}
	if r.Sources["and"] != "i-and" || r.Sources["a"] != SourceDirect {
		t.Errorf("Unexpected sources: %v", r.Sources)
	}
}

func TestCalculate_BestAlternativeWins(t *testing.T) {
	r := calculate(t,
		[]model.Claim{based("p", 2), based("q", 5), claim("c")},
		impl("i-slow", model.CombinatorAnd, "c", "q"),
		impl("i-fast", model.CombinatorAnd, "c", "p"),
	)

	if got := r.Cost("c"); !approx(got, 2) {
		t.Errorf("Expected best alternative 2.0, got %v", float64(got))
	}
	if r.Sources["c"] != "i-fast" {
		t.Errorf("Expected i-fast to win, got %q", r.Sources["c"])
	}
}

func TestCalculate_DirectCostCompetesWithImplications(t *testing.T) {
	r := calculate(t,
		[]model.Claim{based("p", 3), scored("c", 5)},
		impl("i", model.CombinatorAnd, "c", "p"),
	)

	if got := r.Cost("c"); !approx(got, 1) {
		t.Errorf("Expected direct score cost 1 to win, got %v", float64(got))
	}
	if r.Sources["c"] != SourceDirect {
		t.Errorf("Expected direct source, got %q", r.Sources["c"])
	}
}

func TestCalculate_AxiomDominance(t *testing.T) {
	r := calculate(t,
		[]model.Claim{axiom("ax"), based("f1", 1.5), based("f2", 2), claim("and"), claim("or"), claim("all")},
		impl("i-and", model.CombinatorAnd, "and", "ax", "f1", "f2"),
		impl("i-or", model.CombinatorOr, "or", "f1", "ax"),
		impl("i-all", model.CombinatorAnd, "all", "ax"),
	)

	if got := r.Cost("and"); !approx(got, 3.5) {
		t.Errorf("Expected axiom to contribute nothing to AND (3.5), got %v", float64(got))
	}
	if got := r.Cost("or"); !got.IsCertain() {
		t.Errorf("Expected -Inf for OR with an axiom, got %v", float64(got))
	}
	if got := r.Cost("all"); !got.IsCertain() {
		t.Errorf("Expected -Inf for AND of axioms only, got %v", float64(got))
	}
	if r.Sources["ax"] != SourceAxiom {
		t.Errorf("Expected axiom source, got %q", r.Sources["ax"])
	}
}

func TestCalculate_AxiomAndImpossibleIsImpossible(t *testing.T) {
	r := calculate(t,
		[]model.Claim{axiom("ax"), scored("zero", 0), claim("c")},
		impl("i", model.CombinatorAnd, "c", "ax", "zero"),
	)

	got := r.Cost("c")
	if !got.IsImpossible() {
		t.Errorf("Expected +Inf for certain AND impossible, got %v", float64(got))
	}
	if math.IsNaN(float64(got)) {
		t.Error("AND must never produce NaN")
	}
}

func TestCalculate_Score10IsNotAxiomatic(t *testing.T) {
	r := calculate(t, []model.Claim{scored("ten", 10)})

	if got := r.Cost("ten"); got != 0 || got.IsCertain() {
		t.Errorf("Expected cost 0 for score 10, got %v", float64(got))
	}
}

func TestCalculate_DanglingPremiseIsImpossible(t *testing.T) {
	r := calculate(t,
		[]model.Claim{based("a", 1), claim("and"), claim("or")},
		impl("i-and", model.CombinatorAnd, "and", "a", "ghost"),
		impl("i-or", model.CombinatorOr, "or", "a", "ghost"),
	)

	if !r.Cost("and").IsImpossible() {
		t.Errorf("Expected +Inf with dangling AND premise, got %v", float64(r.Cost("and")))
	}
	if got := r.Cost("or"); !approx(got, 1) {
		t.Errorf("Expected OR to ignore dangling premise, got %v", float64(got))
	}
	if _, ok := r.Costs["ghost"]; ok {
		t.Error("Dangling ids must not appear in the result")
	}
}

func TestCalculate_TwoClaimCycleTerminates(t *testing.T) {
	r := calculate(t,
		[]model.Claim{claim("A"), claim("B")},
		impl("i-a", model.CombinatorAnd, "A", "B"),
		impl("i-b", model.CombinatorAnd, "B", "A"),
	)

	if !r.Cost("A").IsImpossible() || !r.Cost("B").IsImpossible() {
		t.Errorf("Expected both cyclic claims to be +Inf, got A=%v B=%v", float64(r.Cost("A")), float64(r.Cost("B")))
	}
	if want := [][]string{{"A", "B"}}; !reflect.DeepEqual(r.Cycles, want) {
		t.Errorf("Expected cycle %v, got %v", want, r.Cycles)
	}
}

func TestCalculate_CycleWithExternalSupport(t *testing.T) {
	// B is supported directly; A <- B, B <- A is still reported as a cycle
	// when A is evaluated first, but B keeps its direct cost.
	r := calculate(t,
		[]model.Claim{claim("A"), based("B", 2)},
		impl("i-a", model.CombinatorAnd, "A", "B"),
		impl("i-b", model.CombinatorAnd, "B", "A"),
	)

	if got := r.Cost("B"); !approx(got, 2) {
		t.Errorf("Expected B = 2 from its direct cost, got %v", float64(got))
	}
	if got := r.Cost("A"); !approx(got, 2) {
		t.Errorf("Expected A = 2 through B, got %v", float64(got))
	}
	if len(r.Cycles) != 1 {
		t.Errorf("Expected one cycle, got %v", r.Cycles)
	}
}

func TestCalculate_CycleSupportedFromFirstVisitedClaim(t *testing.T) {
	// Mirror of the case above: the supported claim is visited first, so B
	// meets A while A is still being evaluated. B must still derive 2 via A.
	r := calculate(t,
		[]model.Claim{based("A", 2), claim("B")},
		impl("i-a", model.CombinatorAnd, "A", "B"),
		impl("i-b", model.CombinatorAnd, "B", "A"),
	)

	if got := r.Cost("A"); !approx(got, 2) {
		t.Errorf("Expected A = 2 from its direct cost, got %v", float64(got))
	}
	if got := r.Cost("B"); !approx(got, 2) {
		t.Errorf("Expected B = 2 through A, got %v", float64(got))
	}
	if r.Sources["B"] != "i-b" {
		t.Errorf("Expected B sourced from i-b, got %q", r.Sources["B"])
	}
	if want := [][]string{{"A", "B"}}; !reflect.DeepEqual(r.Cycles, want) {
		t.Errorf("Expected cycle %v, got %v", want, r.Cycles)
	}
}

func TestCalculate_CycleCostsIndependentOfIDs(t *testing.T) {
	tests := []struct {
		name      string
		supported string
		other     string
	}{
		{name: "supported sorts first", supported: "A", other: "B"},
		{name: "supported sorts last", supported: "Z", other: "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := calculate(t,
				[]model.Claim{based(tt.supported, 2), claim(tt.other)},
				impl("i-1", model.CombinatorAnd, tt.supported, tt.other),
				impl("i-2", model.CombinatorAnd, tt.other, tt.supported),
			)

			if got := r.Cost(tt.supported); !approx(got, 2) {
				t.Errorf("Expected %s = 2, got %v", tt.supported, float64(got))
			}
			if got := r.Cost(tt.other); !approx(got, 2) {
				t.Errorf("Expected %s = 2, got %v", tt.other, float64(got))
			}
			if len(r.Cycles) != 1 {
				t.Errorf("Expected one cycle, got %v", r.Cycles)
			}
		})
	}
}

func TestCalculate_CheaperDerivationThroughAncestor(t *testing.T) {
	// B's own cost is 5, but B <- A gives 1. A is visited first.
	r := calculate(t,
		[]model.Claim{based("A", 1), based("B", 5)},
		impl("i-a", model.CombinatorAnd, "A", "B"),
		impl("i-b", model.CombinatorAnd, "B", "A"),
	)

	if got := r.Cost("B"); !approx(got, 1) {
		t.Errorf("Expected B = 1 through A, got %v", float64(got))
	}
	if got := r.Cost("A"); !approx(got, 1) {
		t.Errorf("Expected A = 1, got %v", float64(got))
	}
}

func TestCalculate_ThreeClaimCycleEnteredMidway(t *testing.T) {
	// A <- C <- B <- A, with only B supported directly
	r := calculate(t,
		[]model.Claim{claim("A"), based("B", 3), claim("C")},
		impl("i-a", model.CombinatorAnd, "A", "C"),
		impl("i-b", model.CombinatorAnd, "B", "A"),
		impl("i-c", model.CombinatorAnd, "C", "B"),
	)

	for _, id := range []string{"A", "B", "C"} {
		if got := r.Cost(id); !approx(got, 3) {
			t.Errorf("Expected %s = 3, got %v", id, float64(got))
		}
	}
	if want := [][]string{{"A", "B", "C"}}; !reflect.DeepEqual(r.Cycles, want) {
		t.Errorf("Expected cycle %v, got %v", want, r.Cycles)
	}
}

func TestCalculate_OrIgnoresCyclicPremise(t *testing.T) {
	r := calculate(t,
		[]model.Claim{claim("A"), claim("B"), based("C", 4)},
		impl("i-a", model.CombinatorOr, "A", "B", "C"),
		impl("i-b", model.CombinatorAnd, "B", "A"),
	)

	if got := r.Cost("A"); !approx(got, 4) {
		t.Errorf("Expected A = 4 via the acyclic OR branch, got %v", float64(got))
	}
}

func TestCalculate_SelfLoopTerminates(t *testing.T) {
	r := calculate(t,
		[]model.Claim{claim("a")},
		impl("loop", model.CombinatorAnd, "a", "a"),
	)

	if !r.Cost("a").IsImpossible() {
		t.Errorf("Expected +Inf for self-supporting claim, got %v", float64(r.Cost("a")))
	}
	if want := [][]string{{"a"}}; !reflect.DeepEqual(r.Cycles, want) {
		t.Errorf("Expected cycle %v, got %v", want, r.Cycles)
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	claims := []model.Claim{claim("A"), claim("B"), based("C", 1), scored("D", 7), claim("E")}
	implications := []model.Implication{
		impl("i1", model.CombinatorAnd, "A", "B", "C"),
		impl("i2", model.CombinatorOr, "B", "A", "D"),
		impl("i3", model.CombinatorAnd, "E", "A", "D"),
	}
	snap := snapshot(t, claims, implications...)
	p := NewPropagator(Options{})

	first := p.Calculate(snap)
	for i := 0; i < 20; i++ {
		again := p.Calculate(snap)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Calculate is not deterministic:\nfirst %+v\nagain %+v", first, again)
		}
	}
}

func TestCalculate_Monotonicity(t *testing.T) {
	claims := []model.Claim{based("p1", 0.5), scored("p2", 3), based("p3", 2), claim("and"), claim("or")}
	r := calculate(t, claims,
		impl("i-and", model.CombinatorAnd, "and", "p1", "p2", "p3"),
		impl("i-or", model.CombinatorOr, "or", "p1", "p2", "p3"),
	)

	for _, p := range []string{"p1", "p2", "p3"} {
		if r.Cost("and") < r.Cost(p) {
			t.Errorf("AND conclusion (%v) more probable than premise %s (%v)", float64(r.Cost("and")), p, float64(r.Cost(p)))
		}
		if r.Cost("or") > r.Cost(p) {
			t.Errorf("OR conclusion (%v) less probable than premise %s (%v)", float64(r.Cost("or")), p, float64(r.Cost(p)))
		}
	}
}

func TestCalculate_EvidenceBlend(t *testing.T) {
	c := claim("c")
	c.EvidenceCost = cost(1)
	c.ExperimentalCost = cost(3)
	snap := snapshot(t, []model.Claim{c})

	minResult := NewPropagator(Options{BaseCostMode: model.BaseCostMin}).Calculate(snap)
	if got := minResult.Cost("c"); !approx(got, 1) {
		t.Errorf("Expected min blend 1, got %v", float64(got))
	}

	weighted := NewPropagator(Options{BaseCostMode: model.BaseCostWeighted, EvidenceWeight: 0.25}).Calculate(snap)
	if got := weighted.Cost("c"); !approx(got, 2.5) {
		t.Errorf("Expected weighted blend 2.5, got %v", float64(got))
	}
}

func TestCombine(t *testing.T) {
	inf := model.Impossible
	ninf := model.Certain

	tests := []struct {
		name  string
		comb  model.Combinator
		costs []model.Cost
		want  model.Cost
	}{
		{"and sum", model.CombinatorAnd, []model.Cost{1, 2}, 3},
		{"and absorbs inf", model.CombinatorAnd, []model.Cost{1, inf}, inf},
		{"and certain and impossible", model.CombinatorAnd, []model.Cost{ninf, inf}, inf},
		{"and skips certain", model.CombinatorAnd, []model.Cost{ninf, 2}, 2},
		{"and empty", model.CombinatorAnd, nil, inf},
		{"or min", model.CombinatorOr, []model.Cost{3, 1, 2}, 1},
		{"or certain dominates", model.CombinatorOr, []model.Cost{3, ninf}, ninf},
		{"or inf is no-op", model.CombinatorOr, []model.Cost{inf, 4}, 4},
		{"or empty", model.CombinatorOr, nil, inf},
		{"unknown combinator", model.Combinator("XOR"), []model.Cost{1}, inf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Combine(tt.comb, tt.costs); !approx(got, tt.want) {
				t.Errorf("Combine(%s, %v) = %v, want %v", tt.comb, tt.costs, float64(got), float64(tt.want))
			}
		})
	}
}
