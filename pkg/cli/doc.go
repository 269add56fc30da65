// Package cli provides the concierge command-line interface for session
// management against the Lodgekeep backend.
//
// # Commands
//
// login: establish a session and persist the credentials
//
//	concierge login --email ada@example.com --password secret
//
// logout: end the session locally and, best-effort, on the backend
//
//	concierge logout
//
// whoami: show the current principal
//
//	concierge whoami
//	concierge whoami --json
//
// serve: run the guarded local admin proxy
//
//	concierge serve
//
// # Configuration
//
// All commands read CONCIERGE_* environment variables and the optional
// YAML file named by CONCIERGE_CONFIG_FILE; see pkg/config.
//
// # Related Packages
//
//   - pkg/session: the state machine every command drives
//   - pkg/guard: route guards used by serve
package cli
