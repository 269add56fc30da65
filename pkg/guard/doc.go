// Package guard holds the policy enforcement points: thin HTTP adapters
// over one shared requirement evaluator and one shared destination
// resolver. Every adapter answers identically for identical session state
// and requirement; only the shape of the response differs (serve a
// fallback, redirect, or pass through).
//
// Guards consult only the session controller's read surface. They never
// touch tokens or grant tables directly.
package guard
