package graph

import (
	"fmt"
	"sort"
)

// ReachableSet is the subgraph contributing to a set of goal claims
type ReachableSet struct {
	Claims       map[string]bool
	Implications map[string]bool
}

// ClaimIDs returns the reachable claim ids in sorted order
func (r ReachableSet) ClaimIDs() []string { return sortedKeys(r.Claims) }

// ImplicationIDs returns the reachable implication ids in sorted order
func (r ReachableSet) ImplicationIDs() []string { return sortedKeys(r.Implications) }

// Reachable walks backwards from the goals: a claim is reachable if it is a goal
// or a premise of a reachable implication, and an implication is reachable if
// its conclusion is. Cycles are handled by the visited set.
func Reachable(snap *Snapshot, goals []string) (ReachableSet, error) {
	if len(goals) == 0 {
		return ReachableSet{}, ErrNoGoals
	}
	for _, g := range goals {
		if !snap.HasClaim(g) {
			return ReachableSet{}, fmt.Errorf("%q: %w", g, ErrUnknownGoal)
		}
	}

	result := ReachableSet{
		Claims:       make(map[string]bool),
		Implications: make(map[string]bool),
	}

	queue := make([]string, 0, len(goals))
	for _, g := range goals {
		if !result.Claims[g] {
			result.Claims[g] = true
			queue = append(queue, g)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		for _, implID := range snap.ConcludedBy(id) {
			if result.Implications[implID] {
				continue
			}
			result.Implications[implID] = true

			impl, _ := snap.Implication(implID)
			for _, p := range impl.Premises {
				// Dangling premises are not claims and cannot be kept
				if result.Claims[p] || !snap.HasClaim(p) {
					continue
				}
				result.Claims[p] = true
				queue = append(queue, p)
			}
		}
	}

	return result, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
