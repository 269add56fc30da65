// Package credstore abstracts persistence of the session's credentials
// (access token, refresh token, cached user snapshot) behind a small
// key-value port.
//
// The store is deliberately infallible from the caller's point of view:
// implementations degrade to "absent" rather than returning errors, so the
// token and session layers never have to branch on storage availability.
// Headless or non-interactive processes inject NoopStore at construction
// time instead of guarding every call site.
package credstore
