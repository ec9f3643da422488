package graph

import (
	"sort"

	"github.com/ppiankov/argmap/internal/model"
)

// Snapshot is an immutable view of the hypergraph at one revision.
// Claims and implications live in flat id-keyed maps; adjacency is kept in
// derived indices, never as references between elements.
// Returned slices and element fields must be treated as read-only.
type Snapshot struct {
	revision     uint64
	claims       map[string]model.Claim
	implications map[string]model.Implication

	claimIDs       []string            // sorted
	implicationIDs []string            // sorted
	concludedBy    map[string][]string // claim id -> implications concluding it, sorted
	premiseOf      map[string][]string // claim id -> implications using it as a premise, sorted
}

func newSnapshot(revision uint64, claims map[string]model.Claim, implications map[string]model.Implication) *Snapshot {
	s := &Snapshot{
		revision:     revision,
		claims:       claims,
		implications: implications,
	}
	s.reindex()
	return s
}

// reindex rebuilds every derived index from the two collections
func (s *Snapshot) reindex() {
	s.claimIDs = make([]string, 0, len(s.claims))
	for id := range s.claims {
		s.claimIDs = append(s.claimIDs, id)
	}
	sort.Strings(s.claimIDs)

	s.implicationIDs = make([]string, 0, len(s.implications))
	for id := range s.implications {
		s.implicationIDs = append(s.implicationIDs, id)
	}
	sort.Strings(s.implicationIDs)

	s.concludedBy = make(map[string][]string)
	s.premiseOf = make(map[string][]string)
	for _, id := range s.implicationIDs {
		impl := s.implications[id]
		s.concludedBy[impl.Conclusion] = append(s.concludedBy[impl.Conclusion], id)

		seen := make(map[string]bool, len(impl.Premises))
		for _, p := range impl.Premises {
			if seen[p] {
				continue
			}
			seen[p] = true
			s.premiseOf[p] = append(s.premiseOf[p], id)
		}
	}
}

// clone copies the collections so the copy can be mutated and republished
func (s *Snapshot) clone() (map[string]model.Claim, map[string]model.Implication) {
	claims := make(map[string]model.Claim, len(s.claims))
	for id, c := range s.claims {
		claims[id] = c
	}
	implications := make(map[string]model.Implication, len(s.implications))
	for id, impl := range s.implications {
		implications[id] = impl
	}
	return claims, implications
}

// Revision increases by one with every published mutation
func (s *Snapshot) Revision() uint64 { return s.revision }

// Claim returns the claim with the given id
func (s *Snapshot) Claim(id string) (model.Claim, bool) {
	c, ok := s.claims[id]
	return c, ok
}

// HasClaim reports whether id names a claim
func (s *Snapshot) HasClaim(id string) bool {
	_, ok := s.claims[id]
	return ok
}

// Implication returns the implication with the given id
func (s *Snapshot) Implication(id string) (model.Implication, bool) {
	impl, ok := s.implications[id]
	return impl, ok
}

// ClaimIDs returns all claim ids in sorted order
func (s *Snapshot) ClaimIDs() []string { return s.claimIDs }

// ImplicationIDs returns all implication ids in sorted order
func (s *Snapshot) ImplicationIDs() []string { return s.implicationIDs }

// ConcludedBy returns the ids of implications whose conclusion is claimID
func (s *Snapshot) ConcludedBy(claimID string) []string { return s.concludedBy[claimID] }

// PremiseOf returns the ids of implications that use claimID as a premise
func (s *Snapshot) PremiseOf(claimID string) []string { return s.premiseOf[claimID] }

// NumClaims returns the number of claims
func (s *Snapshot) NumClaims() int { return len(s.claims) }

// NumImplications returns the number of implications
func (s *Snapshot) NumImplications() int { return len(s.implications) }

// Document exports the snapshot in sorted id order
func (s *Snapshot) Document() model.Document {
	doc := model.Document{
		Claims:       make([]model.Claim, 0, len(s.claimIDs)),
		Implications: make([]model.Implication, 0, len(s.implicationIDs)),
	}
	for _, id := range s.claimIDs {
		doc.Claims = append(doc.Claims, s.claims[id])
	}
	for _, id := range s.implicationIDs {
		doc.Implications = append(doc.Implications, s.implications[id])
	}
	return doc
}
