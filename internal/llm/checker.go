package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/argmap/internal/graph"
	"github.com/ppiankov/argmap/internal/logging"
)

// RequestFor builds the entailment request for one implication of a snapshot
func RequestFor(snap *graph.Snapshot, implID string) (EntailmentRequest, error) {
	impl, ok := snap.Implication(implID)
	if !ok {
		return EntailmentRequest{}, fmt.Errorf("implication %q: %w", implID, graph.ErrNotFound)
	}

	req := EntailmentRequest{
		ImplicationID: impl.ID,
		Premises:      make([]Statement, 0, len(impl.Premises)),
		Conclusion:    statementFor(snap, impl.Conclusion),
		Combinator:    impl.Combinator,
	}
	for _, p := range impl.Premises {
		req.Premises = append(req.Premises, statementFor(snap, p))
	}
	return req, nil
}

func statementFor(snap *graph.Snapshot, id string) Statement {
	c, _ := snap.Claim(id)
	return Statement{ID: id, Text: c.Text}
}

// Outcome is the result of checking one implication.
// Err is set when the provider failed or the verdict could not be stored.
type Outcome struct {
	ImplicationID string
	Result        *EntailmentResult
	Err           error
	Elapsed       time.Duration
}

// Checker runs a provider over the implications of a store
type Checker struct {
	provider Provider
	workers  int
	log      *logging.Logger
}

// NewChecker creates a checker. Workers <= 0 runs one request at a time.
func NewChecker(provider Provider, workers int, log *logging.Logger) *Checker {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Checker{provider: provider, workers: workers, log: log}
}

// CheckAll checks the given implications, or every implication when ids is empty,
// and stores each verdict with Store.SetEntailment. Outcomes follow the order of ids
// (sorted id order when ids is empty). Provider failures are reported per outcome;
// the returned error is set for unknown ids or a canceled context.
func (c *Checker) CheckAll(ctx context.Context, store *graph.Store, ids []string) ([]Outcome, error) {
	snap := store.Snapshot()
	if len(ids) == 0 {
		ids = snap.ImplicationIDs()
	}

	requests := make([]EntailmentRequest, len(ids))
	for i, id := range ids {
		req, err := RequestFor(snap, id)
		if err != nil {
			return nil, err
		}
		requests[i] = req
	}

	outcomes := make([]Outcome, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i := range requests {
		i := i
		req := requests[i]
		g.Go(func() error {
			outcomes[i] = c.checkOne(gctx, store, req)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (c *Checker) checkOne(ctx context.Context, store *graph.Store, req EntailmentRequest) Outcome {
	start := time.Now()
	out := Outcome{ImplicationID: req.ImplicationID}

	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	result, err := c.provider.CheckEntailment(ctx, req)
	out.Elapsed = time.Since(start)
	if err != nil {
		c.log.Warn("entailment check failed", "implication", req.ImplicationID, "provider", c.provider.Name(), "error", err)
		out.Err = err
		return out
	}
	out.Result = result

	if _, err := store.SetEntailment(req.ImplicationID, result.Status, result.Explanation); err != nil {
		out.Err = fmt.Errorf("store verdict: %w", err)
		return out
	}

	c.log.Debug("entailment checked",
		"implication", req.ImplicationID,
		"status", string(result.Status),
		"model", result.Model,
		"tokens", result.TokensUsed,
		"elapsed", out.Elapsed,
	)
	return out
}

// Summary counts outcomes by verdict; failed checks count under "error"
func Summary(outcomes []Outcome) map[string]int {
	counts := make(map[string]int)
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			counts["error"]++
		case o.Result != nil:
			counts[string(o.Result.Status)]++
		}
	}
	return counts
}
