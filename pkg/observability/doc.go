// Package observability provides structured logging and Prometheus metrics
// for the session core. The Logger wraps stdlib slog with a small
// field-chaining API; Metrics counts the auth-relevant events (refreshes,
// logins, guard decisions) and is safe to leave nil when metrics are
// disabled.
package observability
