package session

// validTransitions is the session lifecycle table. INITIALIZING is entered
// only once, at construction; both terminal states can re-enter themselves
// (re-login adopts over an active session, repeated invalidation is a no-op).
var validTransitions = map[State][]State{
	StateInitializing:  {StateInitializing, StateAuthenticated, StateAnonymous},
	StateAuthenticated: {StateAuthenticated, StateAnonymous},
	StateAnonymous:     {StateAnonymous, StateAuthenticated},
}

// CanTransition reports whether the lifecycle permits moving from one state
// to another. There is no path back to INITIALIZING: the loading window
// opens once per application load.
func CanTransition(from, to State) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
