package session

// Status is the session state machine's current state.
type Status int

const (
	// StatusUninitialized is the state before Bootstrap has run. Guards
	// treat it like Loading: no access decision can be made yet.
	StatusUninitialized Status = iota

	// StatusLoading means a bootstrap or login is in flight.
	StatusLoading

	// StatusAuthenticated means a valid principal is present.
	StatusAuthenticated

	// StatusUnauthenticated means there is no session.
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}
