package session

import "fmt"

// State is the Coordinator's lifecycle phase.
type State string

const (
	// StateInitializing covers the startup reconciliation window.
	StateInitializing State = "initializing"
	// StateAuthenticated means a backend-issued identity is active.
	StateAuthenticated State = "authenticated"
	// StateAnonymous means no identity; only an explicit login or
	// registration leaves this state.
	StateAnonymous State = "anonymous"
)

// Snapshot is an immutable view of the reconciled session. User != nil
// implies Token != "": a server-issued identity is never accepted without
// its credential.
type Snapshot struct {
	User    *User
	Token   string
	Loading bool
}

// State derives the lifecycle phase from the snapshot.
func (s Snapshot) State() State {
	if s.Loading {
		return StateInitializing
	}
	if s.User != nil {
		return StateAuthenticated
	}
	return StateAnonymous
}

// Authenticated reports whether a backend identity is active.
func (s Snapshot) Authenticated() bool {
	return s.User != nil
}

// HasRole reports whether the authenticated user holds the given role.
func (s Snapshot) HasRole(role UserRole) bool {
	return s.User != nil && s.User.Role == role
}

func (s Snapshot) String() string {
	user := "<nil>"
	if s.User != nil {
		user = fmt.Sprintf("%s (%s)", s.User.ID, s.User.Role)
	}
	token := "absent"
	if s.Token != "" {
		token = "present"
	}
	return fmt.Sprintf("user=%s token=%s loading=%t", user, token, s.Loading)
}
