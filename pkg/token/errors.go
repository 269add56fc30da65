package token

import "errors"

var (
	// ErrNoRefreshToken is returned when a refresh is attempted with no
	// refresh token in the store.
	ErrNoRefreshToken = errors.New("no refresh token stored")

	// ErrRefreshFailed wraps a backend rejection of the refresh token. The
	// stored tokens have already been cleared when this is returned.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrSuperseded is returned when a refresh settles after the session
	// was cleared or replaced underneath it. The late result is discarded
	// so it cannot resurrect a cleared session.
	ErrSuperseded = errors.New("refresh superseded by session change")
)
