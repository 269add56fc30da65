package authapi

import (
	"context"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lodgekeep/concierge/pkg/observability"
	"github.com/lodgekeep/concierge/pkg/token"
)

// retriedKey marks a request that already went through the 401
// refresh-and-retry path, so a second 401 propagates instead of looping.
type retriedKey struct{}

// Transport is the outbound RoundTripper for the wider application: it
// attaches the bearer token to every request and performs at most one
// refresh-and-retry per original request on a 401 response.
type Transport struct {
	base     http.RoundTripper
	manager  *token.Manager
	exchange token.ExchangeFunc
	logger   *observability.Logger
}

// NewTransport wraps base (default http.DefaultTransport, instrumented
// with otelhttp) with bearer injection and the single refresh-and-retry.
func NewTransport(manager *token.Manager, exchange token.ExchangeFunc, base http.RoundTripper, logger *observability.Logger) *Transport {
	if base == nil {
		base = otelhttp.NewTransport(http.DefaultTransport)
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Transport{
		base:     base,
		manager:  manager,
		exchange: exchange,
		logger:   logger,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if access, ok := t.manager.AccessToken(); ok && access != "" {
		out.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || t.alreadyRetried(req) {
		return resp, nil
	}
	if !t.canReplay(req) {
		return resp, nil
	}

	access, refreshErr := t.manager.Refresh(req.Context(), t.exchange)
	if refreshErr != nil {
		t.logger.WithError(refreshErr).Debug("refresh after 401 failed, propagating original response")
		return resp, nil
	}

	// The original 401 body is no longer needed.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	retry := req.Clone(context.WithValue(req.Context(), retriedKey{}, true))
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			return nil, bodyErr
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+access)

	return t.base.RoundTrip(retry)
}

func (t *Transport) alreadyRetried(req *http.Request) bool {
	retried, _ := req.Context().Value(retriedKey{}).(bool)
	return retried
}

// canReplay reports whether the request body can be reissued. Bodiless
// requests always can; streamed bodies without GetBody cannot.
func (t *Transport) canReplay(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}
