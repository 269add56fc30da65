// Package session owns the application's authentication state machine.
//
// A Controller moves between four states (uninitialized, loading,
// authenticated, unauthenticated), is the only writer of the credential
// store besides the token manager, and exposes the read surface the policy
// guards consult: a snapshot of status and principal plus the permission
// and role checks. It also owns the proactive-refresh scheduler, started on
// entering the authenticated state and stopped on leaving it.
package session
