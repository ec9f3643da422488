package score

import (
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/argmap/internal/graph"
	"github.com/ppiankov/argmap/internal/model"
)

// Source labels for the candidate that decided a claim's cost.
// Any other non-empty source is the id of the winning implication.
const (
	SourceAxiom  = "axiom"
	SourceDirect = "direct"
)

// Options configure how direct costs are formed
type Options struct {
	BaseCostMode   string  // model.BaseCostMin or model.BaseCostWeighted
	EvidenceWeight float64 // weight of evidenceCost in weighted mode
}

// OptionsFromConfig converts the engine section of the configuration
func OptionsFromConfig(cfg model.EngineConfig) Options {
	return Options{
		BaseCostMode:   cfg.BaseCostMode,
		EvidenceWeight: cfg.EvidenceWeight,
	}
}

// Result is the outcome of one propagation pass
type Result struct {
	Costs   map[string]model.Cost
	Sources map[string]string
	// Cycles lists each distinct set of claims found on a cyclic evaluation path, ids sorted
	Cycles [][]string
}

// Cost returns the cost of a claim, +Inf for unknown ids
func (r *Result) Cost(id string) model.Cost {
	if c, ok := r.Costs[id]; ok {
		return c
	}
	return model.Impossible
}

// Propagator computes the minimal derivable cost of every claim
type Propagator struct {
	opts Options
}

// NewPropagator creates a new propagator
func NewPropagator(opts Options) *Propagator {
	if opts.BaseCostMode == "" {
		opts.BaseCostMode = model.BaseCostMin
	}
	return &Propagator{opts: opts}
}

type visitState uint8

const (
	unvisited visitState = iota
	inProgress
	finalized
)

// noAncestor is the stack depth reported by values that depend on no in-progress claim
const noAncestor = math.MaxInt

// pass holds the per-call memo so a Propagator is safe for concurrent use
type pass struct {
	opts    Options
	snap    *graph.Snapshot
	state   map[string]visitState
	depth   map[string]int
	stack   []string
	result  *Result
	seenCyc map[string]bool
}

// Calculate evaluates every claim bottom-up with memoization.
// Claims are visited in sorted id order; the costs do not depend on that order.
func (p *Propagator) Calculate(snap *graph.Snapshot) *Result {
	ps := &pass{
		opts:  p.opts,
		snap:  snap,
		state: make(map[string]visitState, snap.NumClaims()),
		depth: make(map[string]int),
		result: &Result{
			Costs:   make(map[string]model.Cost, snap.NumClaims()),
			Sources: make(map[string]string, snap.NumClaims()),
		},
		seenCyc: make(map[string]bool),
	}

	for _, id := range snap.ClaimIDs() {
		ps.visit(id)
	}

	sort.Slice(ps.result.Cycles, func(i, j int) bool {
		return strings.Join(ps.result.Cycles[i], "\x00") < strings.Join(ps.result.Cycles[j], "\x00")
	})
	return ps.result
}

// visit returns the claim's cost, or ok=false when the claim is already being
// evaluated further up the stack. Such a path is no derivation for this pass.
// low is the shallowest stack depth of an in-progress claim the value relied on.
// A value whose low is less than the claim's own depth holds only for the current
// stack, so it is returned but not memoized.
func (ps *pass) visit(id string) (model.Cost, bool, int) {
	switch ps.state[id] {
	case finalized:
		return ps.result.Costs[id], true, noAncestor
	case inProgress:
		ps.recordCycle(id)
		return 0, false, ps.depth[id]
	}

	claim, ok := ps.snap.Claim(id)
	if !ok {
		// Dangling reference
		return model.Impossible, true, noAncestor
	}

	if claim.Axiomatic {
		ps.finalize(id, model.Certain, SourceAxiom)
		return model.Certain, true, noAncestor
	}

	depth := len(ps.stack)
	ps.state[id] = inProgress
	ps.depth[id] = depth
	ps.stack = append(ps.stack, id)

	best := model.Impossible
	source := ""
	if direct, ok := ps.direct(claim); ok {
		best = direct
		source = SourceDirect
	}

	low := noAncestor
	for _, implID := range ps.snap.ConcludedBy(id) {
		impl, _ := ps.snap.Implication(implID)
		candidate, ok, l := ps.combine(impl)
		low = min(low, l)
		if !ok {
			continue
		}
		if candidate < best {
			best = candidate
			source = implID
		}
	}

	ps.stack = ps.stack[:depth]
	delete(ps.depth, id)

	if low < depth {
		ps.state[id] = unvisited
		return best, true, low
	}
	ps.finalize(id, best, source)
	return best, true, noAncestor
}

func (ps *pass) finalize(id string, cost model.Cost, source string) {
	ps.state[id] = finalized
	ps.result.Costs[id] = cost
	if source != "" {
		ps.result.Sources[id] = source
	}
}

// direct returns the best of the claim's own cost sources
func (ps *pass) direct(c model.Claim) (model.Cost, bool) {
	var candidates []model.Cost
	if c.Score != nil {
		candidates = append(candidates, FromScore(*c.Score))
	}
	if c.BaseCost != nil {
		candidates = append(candidates, *c.BaseCost)
	}
	if b, ok := blend(ps.opts.BaseCostMode, ps.opts.EvidenceWeight, c.EvidenceCost, c.ExperimentalCost); ok {
		candidates = append(candidates, b)
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return disjunction(candidates), true
}

// combine evaluates one implication. Premises on a cyclic path are dropped:
// an AND implication then has no derivation, an OR implication uses the rest.
func (ps *pass) combine(impl model.Implication) (model.Cost, bool, int) {
	costs := make([]model.Cost, 0, len(impl.Premises))
	cyclic := false
	low := noAncestor
	for _, p := range impl.Premises {
		c, ok, l := ps.visit(p)
		low = min(low, l)
		if !ok {
			cyclic = true
			continue
		}
		costs = append(costs, c)
	}

	if len(costs) == 0 {
		return 0, false, low
	}
	if cyclic && impl.Combinator != model.CombinatorOr {
		return 0, false, low
	}
	return Combine(impl.Combinator, costs), true, low
}

// recordCycle stores the claims between the re-entered claim and the top of the stack
func (ps *pass) recordCycle(id string) {
	start := -1
	for i := len(ps.stack) - 1; i >= 0; i-- {
		if ps.stack[i] == id {
			start = i
			break
		}
	}
	if start < 0 {
		return
	}

	members := append([]string(nil), ps.stack[start:]...)
	sort.Strings(members)
	members = dedupe(members)

	key := strings.Join(members, "\x00")
	if ps.seenCyc[key] {
		return
	}
	ps.seenCyc[key] = true
	ps.result.Cycles = append(ps.result.Cycles, members)
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
