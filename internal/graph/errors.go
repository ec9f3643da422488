package graph

import "errors"

var (
	// ErrNotFound is returned when an edit targets an id that is not in the store
	ErrNotFound = errors.New("not found")

	// ErrDuplicateID is returned when adding an element whose id is already taken
	ErrDuplicateID = errors.New("duplicate id")

	// ErrNoGoals is returned when reachability or cleanup is asked to run without goals.
	// An empty goal set would make every element unreachable.
	ErrNoGoals = errors.New("at least one goal claim is required")

	// ErrUnknownGoal is returned when a goal id does not name a claim in the store
	ErrUnknownGoal = errors.New("goal is not a claim in the graph")
)
