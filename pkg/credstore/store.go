package credstore

// Well-known keys. KeyTheme holds UI preference data that shares the
// credential namespace but is not part of the auth session; ClearAuth
// leaves it untouched.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyCachedUser   = "cached_user"
	KeyTheme        = "theme"
)

// Store is the persistence port for session credentials.
//
// Implementations must never fail loudly: Get reports absence via the
// boolean, Set and Remove swallow backend errors. The token manager and
// session controller are the only writers.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)

	// Set stores value under key, replacing any previous value.
	Set(key, value string)

	// Remove deletes key. Removing an absent key is a no-op.
	Remove(key string)
}

// ClearAuth removes the three auth-related entries from s, leaving
// unrelated keys (such as KeyTheme) in place.
func ClearAuth(s Store) {
	s.Remove(KeyAccessToken)
	s.Remove(KeyRefreshToken)
	s.Remove(KeyCachedUser)
}
