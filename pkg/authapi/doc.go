// Package authapi is the client for the backend auth endpoints
// (/auth/login, /auth/refresh, /auth/logout) and the outbound HTTP
// transport used by the wider application.
//
// The transport attaches the bearer token to every request and, on a 401
// response, performs exactly one refresh-and-retry per original request; a
// second 401 propagates as the final answer. The core consumes these
// endpoints, it does not implement them.
package authapi
