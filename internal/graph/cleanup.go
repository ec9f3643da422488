package graph

import "github.com/ppiankov/argmap/internal/model"

// Cleanup removes every claim and implication that does not contribute to the
// goals and returns how many elements were removed. The reachable set is
// computed and applied under the mutation lock on a single snapshot; on error
// nothing is removed. Callers must recompute costs afterwards.
func (s *Store) Cleanup(goals []string) (int, *Snapshot, error) {
	removed := 0
	snap, err := s.mutate(func(claims map[string]model.Claim, implications map[string]model.Implication) error {
		keep, err := Reachable(s.Snapshot(), goals)
		if err != nil {
			return err
		}

		for id := range claims {
			if !keep.Claims[id] {
				delete(claims, id)
				removed++
			}
		}
		for id := range implications {
			if !keep.Implications[id] {
				delete(implications, id)
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return removed, snap, nil
}
