package graph

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/ppiankov/argmap/internal/model"
)

// argumentGraph: root <- (p1 AND p2); p2 <- (p3 OR p4); p4 <- p2 (cycle);
// x <- y is disconnected from root; z uses root as a premise.
func argumentGraph() model.Document {
	return model.Document{
		Claims: claims("root", "p1", "p2", "p3", "p4", "x", "y", "z"),
		Implications: []model.Implication{
			and("i-root", "root", "p1", "p2"),
			or("i-p2", "p2", "p3", "p4"),
			and("i-p4", "p4", "p2"),
			and("i-x", "x", "y"),
			and("i-z", "z", "root"),
		},
	}
}

func TestReachable(t *testing.T) {
	s := mustLoad(t, argumentGraph())

	set, err := Reachable(s.Snapshot(), []string{"root"})
	if err != nil {
		t.Fatalf("Reachable failed: %v", err)
	}

	if got, want := set.ClaimIDs(), []string{"p1", "p2", "p3", "p4", "root"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected claims %v, got %v", want, got)
	}
	if got, want := set.ImplicationIDs(), []string{"i-p2", "i-p4", "i-root"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected implications %v, got %v", want, got)
	}
}

func TestReachable_MultipleGoals(t *testing.T) {
	s := mustLoad(t, argumentGraph())

	set, err := Reachable(s.Snapshot(), []string{"x", "p3", "x"})
	if err != nil {
		t.Fatalf("Reachable failed: %v", err)
	}
	if got, want := set.ClaimIDs(), []string{"p3", "x", "y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected claims %v, got %v", want, got)
	}
}

func TestReachable_SkipsDanglingPremises(t *testing.T) {
	s := mustLoad(t, model.Document{
		Claims:       claims("goal", "a"),
		Implications: []model.Implication{and("i", "goal", "a", "ghost")},
	})

	set, err := Reachable(s.Snapshot(), []string{"goal"})
	if err != nil {
		t.Fatalf("Reachable failed: %v", err)
	}
	if set.Claims["ghost"] {
		t.Error("Dangling premise must not be reported as a reachable claim")
	}
	if !set.Implications["i"] {
		t.Error("Implication concluding the goal must be reachable")
	}
}

func TestReachable_Errors(t *testing.T) {
	s := mustLoad(t, argumentGraph())

	if _, err := Reachable(s.Snapshot(), nil); !errors.Is(err, ErrNoGoals) {
		t.Errorf("Expected ErrNoGoals, got %v", err)
	}
	if _, err := Reachable(s.Snapshot(), []string{"root", "nope"}); !errors.Is(err, ErrUnknownGoal) {
		t.Errorf("Expected ErrUnknownGoal, got %v", err)
	}
}

func TestCleanup(t *testing.T) {
	s := mustLoad(t, argumentGraph())

	removed, _, err := s.Cleanup([]string{"root"})
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	// x, y, z and i-x, i-z are off every path to root
	if removed != 5 {
		t.Errorf("Expected 5 removed elements, got %d", removed)
	}

	snap := s.Snapshot()
	if got, want := snap.ClaimIDs(), []string{"p1", "p2", "p3", "p4", "root"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected claims %v, got %v", want, got)
	}

	// Every remaining claim still reaches root through remaining implications
	set, err := Reachable(snap, []string{"root"})
	if err != nil {
		t.Fatalf("Reachable after cleanup failed: %v", err)
	}
	if len(set.Claims) != snap.NumClaims() || len(set.Implications) != snap.NumImplications() {
		t.Errorf("Expected everything to be reachable after cleanup, got %d/%d claims, %d/%d implications",
			len(set.Claims), snap.NumClaims(), len(set.Implications), snap.NumImplications())
	}

	// Idempotent
	again, _, err := s.Cleanup([]string{"root"})
	if err != nil || again != 0 {
		t.Errorf("Expected second cleanup to remove nothing, got %d, %v", again, err)
	}
}

func TestCleanup_RejectsBadGoalsWithoutMutating(t *testing.T) {
	s := mustLoad(t, argumentGraph())
	before := s.Snapshot()

	if _, _, err := s.Cleanup(nil); !errors.Is(err, ErrNoGoals) {
		t.Errorf("Expected ErrNoGoals, got %v", err)
	}
	if _, _, err := s.Cleanup([]string{"missing"}); !errors.Is(err, ErrUnknownGoal) {
		t.Errorf("Expected ErrUnknownGoal, got %v", err)
	}

	if s.Snapshot() != before {
		t.Error("Rejected cleanup must not publish a new snapshot")
	}
	if s.Snapshot().NumClaims() != 8 {
		t.Errorf("Expected all 8 claims to remain, got %d", s.Snapshot().NumClaims())
	}
}

func TestCleanup_ReadersSeeWholeSnapshots(t *testing.T) {
	s := mustLoad(t, argumentGraph())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := s.Snapshot()
			n := snap.NumClaims()
			if n != 8 && n != 5 {
				t.Errorf("Reader observed a partial cleanup: %d claims", n)
			}
			for _, id := range snap.ImplicationIDs() {
				impl, _ := snap.Implication(id)
				if !snap.HasClaim(impl.Conclusion) {
					t.Errorf("Implication %s outlived its conclusion within one snapshot", id)
				}
			}
		}()
	}

	if _, _, err := s.Cleanup([]string{"root"}); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	wg.Wait()
}
