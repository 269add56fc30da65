// Package token owns the access/refresh token lifecycle: claim decoding,
// expiry prediction, coalesced refresh and proactive renewal.
//
// Expiry reads are advisory only. The access token's claims are decoded
// without signature verification (the backend is the authority of record),
// and any decode failure degrades to "expired/absent" rather than an error,
// so the worst outcome is an unnecessary refresh or login.
//
// Refresh calls are coalesced: while an exchange is in flight, every caller
// requesting a refresh observes that exchange's eventual outcome instead of
// issuing a new network call. There is at most one outstanding exchange per
// token generation.
package token
