package graph

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ppiankov/argmap/internal/model"
)

// Store holds the current hypergraph snapshot.
// Reads are lock-free: callers take a Snapshot and run passes over it.
// Mutations serialize on mu, build a new snapshot and publish it atomically,
// so a reader sees either the old graph or the new one, never a mix.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]

	title string
	goals []string
}

// NewStore creates an empty store
func NewStore() *Store {
	s := &Store{}
	s.current.Store(newSnapshot(0, map[string]model.Claim{}, map[string]model.Implication{}))
	return s
}

// Load builds a store from a document after checking its schema
func Load(doc *model.Document) (*Store, error) {
	if err := doc.Check(); err != nil {
		return nil, err
	}

	claims := make(map[string]model.Claim, len(doc.Claims))
	for _, c := range doc.Claims {
		claims[c.ID] = c
	}
	implications := make(map[string]model.Implication, len(doc.Implications))
	for _, impl := range doc.Implications {
		implications[impl.ID] = impl
	}

	s := &Store{
		title: doc.Title,
		goals: append([]string(nil), doc.Goals...),
	}
	s.current.Store(newSnapshot(1, claims, implications))
	return s, nil
}

// Snapshot returns the current immutable view of the graph
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Title returns the document title the store was loaded with
func (s *Store) Title() string { return s.title }

// Goals returns the document's default goal claims
func (s *Store) Goals() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.goals...)
}

// Document exports the current graph including title and goals
func (s *Store) Document() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.Snapshot().Document()
	doc.Title = s.title
	doc.Goals = append([]string(nil), s.goals...)
	return doc
}

// mutate runs fn on copies of the current collections and publishes the result.
// fn returning an error discards the copies; the published snapshot is untouched.
// fn runs with mu held. The returned snapshot is the one this call published.
func (s *Store) mutate(fn func(claims map[string]model.Claim, implications map[string]model.Implication) error) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.Snapshot()
	claims, implications := cur.clone()
	if err := fn(claims, implications); err != nil {
		return nil, err
	}
	next := newSnapshot(cur.revision+1, claims, implications)
	s.current.Store(next)
	return next, nil
}

// AddClaim inserts a new claim. An empty id is replaced with a fresh UUID.
// Every edit returns the snapshot it published.
func (s *Store) AddClaim(c model.Claim) (model.Claim, *Snapshot, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := model.CheckClaim(c); err != nil {
		return model.Claim{}, nil, err
	}

	snap, err := s.mutate(func(claims map[string]model.Claim, _ map[string]model.Implication) error {
		if _, exists := claims[c.ID]; exists {
			return fmt.Errorf("claim %q: %w", c.ID, ErrDuplicateID)
		}
		claims[c.ID] = c
		return nil
	})
	if err != nil {
		return model.Claim{}, nil, err
	}
	return c, snap, nil
}

// UpdateClaim replaces an existing claim
func (s *Store) UpdateClaim(c model.Claim) (*Snapshot, error) {
	if err := model.CheckClaim(c); err != nil {
		return nil, err
	}
	return s.mutate(func(claims map[string]model.Claim, _ map[string]model.Implication) error {
		if _, exists := claims[c.ID]; !exists {
			return fmt.Errorf("claim %q: %w", c.ID, ErrNotFound)
		}
		claims[c.ID] = c
		return nil
	})
}

// DeleteClaim removes a claim together with every implication that concludes
// it or uses it as a premise. It returns the ids of the removed implications.
// A deleted goal is dropped from the default goals.
func (s *Store) DeleteClaim(id string) ([]string, *Snapshot, error) {
	var removed []string
	snap, err := s.mutate(func(claims map[string]model.Claim, implications map[string]model.Implication) error {
		if _, exists := claims[id]; !exists {
			return fmt.Errorf("claim %q: %w", id, ErrNotFound)
		}
		delete(claims, id)
		s.goals = without(s.goals, id)

		cur := s.Snapshot()
		seen := make(map[string]bool)
		for _, implID := range append(append([]string(nil), cur.ConcludedBy(id)...), cur.PremiseOf(id)...) {
			if seen[implID] {
				continue
			}
			seen[implID] = true
			delete(implications, implID)
			removed = append(removed, implID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return removed, snap, nil
}

// AddImplication inserts a new implication. An empty id is replaced with a fresh UUID.
// Premises and conclusion are not required to exist; the validator reports dangling ids.
func (s *Store) AddImplication(impl model.Implication) (model.Implication, *Snapshot, error) {
	if impl.ID == "" {
		impl.ID = uuid.NewString()
	}
	impl.Premises = append([]string(nil), impl.Premises...)
	if err := model.CheckImplication(impl); err != nil {
		return model.Implication{}, nil, err
	}

	snap, err := s.mutate(func(_ map[string]model.Claim, implications map[string]model.Implication) error {
		if _, exists := implications[impl.ID]; exists {
			return fmt.Errorf("implication %q: %w", impl.ID, ErrDuplicateID)
		}
		implications[impl.ID] = impl
		return nil
	})
	if err != nil {
		return model.Implication{}, nil, err
	}
	return impl, snap, nil
}

// UpdateImplication replaces an existing implication
func (s *Store) UpdateImplication(impl model.Implication) (*Snapshot, error) {
	impl.Premises = append([]string(nil), impl.Premises...)
	if err := model.CheckImplication(impl); err != nil {
		return nil, err
	}
	return s.mutate(func(_ map[string]model.Claim, implications map[string]model.Implication) error {
		if _, exists := implications[impl.ID]; !exists {
			return fmt.Errorf("implication %q: %w", impl.ID, ErrNotFound)
		}
		implications[impl.ID] = impl
		return nil
	})
}

// DeleteImplication removes an implication
func (s *Store) DeleteImplication(id string) (*Snapshot, error) {
	return s.mutate(func(_ map[string]model.Claim, implications map[string]model.Implication) error {
		if _, exists := implications[id]; !exists {
			return fmt.Errorf("implication %q: %w", id, ErrNotFound)
		}
		delete(implications, id)
		return nil
	})
}

// SetEntailment stores an external entailment judgment verbatim
func (s *Store) SetEntailment(id string, status model.EntailmentStatus, explanation string) (*Snapshot, error) {
	return s.mutate(func(_ map[string]model.Claim, implications map[string]model.Implication) error {
		impl, exists := implications[id]
		if !exists {
			return fmt.Errorf("implication %q: %w", id, ErrNotFound)
		}
		impl.EntailmentStatus = status
		impl.EntailmentExplanation = explanation
		implications[id] = impl
		return nil
	})
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
