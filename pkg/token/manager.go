package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/lodgekeep/concierge/pkg/access"
	"github.com/lodgekeep/concierge/pkg/credstore"
	"github.com/lodgekeep/concierge/pkg/observability"
)

const (
	// DefaultExpiryWindow is how far ahead of exp a token counts as
	// "expiring soon".
	DefaultExpiryWindow = 5 * time.Minute

	claimsCacheSize = 16
	claimsCacheTTL  = time.Minute
)

// Pair is an access/refresh token pair. The two are always stored and
// cleared together; the system never persists one without the other.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ExchangeFunc trades a refresh token for a new pair. Implemented by the
// backend auth client; injected so the manager stays free of HTTP concerns.
type ExchangeFunc func(ctx context.Context, refreshToken string) (Pair, error)

// Manager is the process-wide authority over tokens. It is constructed
// explicitly and passed by reference; there is exactly one per running
// application, owned by the root composition.
type Manager struct {
	store   credstore.Store
	now     func() time.Time
	logger  *observability.Logger
	metrics *observability.Metrics

	// Decoding happens on every guard check and scheduler tick, so decoded
	// claims are memoized per token string.
	claims *expirable.LRU[string, *Claims]

	group singleflight.Group

	mu  sync.Mutex
	gen uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(logger *observability.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// NewManager creates a token manager over the given credential store.
func NewManager(store credstore.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		now:    time.Now,
		claims: expirable.NewLRU[string, *Claims](claimsCacheSize, nil, claimsCacheTTL),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return m
}

// AccessToken returns the stored access token, if any.
func (m *Manager) AccessToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Get(credstore.KeyAccessToken)
}

// RefreshToken returns the stored refresh token, if any.
func (m *Manager) RefreshToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Get(credstore.KeyRefreshToken)
}

// SetTokens stores both tokens together and advances the token generation.
// Readers never observe an access token from one generation paired with a
// refresh token from another: both writes happen under the same lock that
// guards the getters.
func (m *Manager) SetTokens(access, refresh string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Set(credstore.KeyAccessToken, access)
	m.store.Set(credstore.KeyRefreshToken, refresh)
	m.gen++
}

// ClearTokens removes both tokens and the cached user snapshot, advancing
// the generation so in-flight refreshes cannot resurrect the session. It
// never fails.
func (m *Manager) ClearTokens() {
	m.mu.Lock()
	defer m.mu.Unlock()
	credstore.ClearAuth(m.store)
	m.gen++
	m.claims.Purge()
}

// Generation returns the current token generation. It changes on every
// SetTokens and ClearTokens.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// IsExpired reports whether the stored access token is past its exp claim.
// Absent tokens, unreadable claims and missing exp all count as expired:
// expiry prediction fails closed, toward requiring a refresh or login.
func (m *Manager) IsExpired() bool {
	return m.IsExpiringSoon(0)
}

// IsExpiringSoon reports whether the access token expires within window
// from now. A non-positive window means "already expired" checks use the
// current instant.
func (m *Manager) IsExpiringSoon(window time.Duration) bool {
	raw, ok := m.AccessToken()
	if !ok || raw == "" {
		return true
	}
	claims := m.decode(raw)
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Before(m.now().Add(window))
}

// PrincipalFromToken extracts a best-effort principal from the access
// token's claims. It returns nil on any decode failure or when the claims
// carry no role; it never fails loudly.
func (m *Manager) PrincipalFromToken() *access.Principal {
	raw, ok := m.AccessToken()
	if !ok || raw == "" {
		return nil
	}
	return m.decode(raw).principal()
}

// Refresh exchanges the stored refresh token for a new pair. Concurrent
// callers coalesce onto one exchange invocation and all observe the same
// outcome. On success both tokens are stored before any caller is released
// and the new access token is returned; on failure the tokens are cleared
// and the error propagates. The in-flight slot is freed after settlement
// either way, so a later genuine retry is possible.
func (m *Manager) Refresh(ctx context.Context, exchange ExchangeFunc) (string, error) {
	m.mu.Lock()
	refresh, ok := m.store.Get(credstore.KeyRefreshToken)
	gen := m.gen
	m.mu.Unlock()

	if !ok || refresh == "" {
		return "", ErrNoRefreshToken
	}

	result, err, shared := m.group.Do(refresh, func() (interface{}, error) {
		pair, err := exchange(ctx, refresh)
		if err != nil {
			m.ClearTokens()
			m.metrics.ObserveRefresh("failure")
			m.logger.WithError(err).Warn("token refresh rejected, clearing session")
			return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		}

		m.mu.Lock()
		if m.gen != gen {
			m.mu.Unlock()
			m.metrics.ObserveRefresh("superseded")
			m.logger.Debug("discarding stale refresh result")
			return nil, ErrSuperseded
		}
		m.store.Set(credstore.KeyAccessToken, pair.AccessToken)
		m.store.Set(credstore.KeyRefreshToken, pair.RefreshToken)
		m.gen++
		m.mu.Unlock()

		m.metrics.ObserveRefresh("success")
		return pair.AccessToken, nil
	})
	if shared {
		m.metrics.ObserveRefreshCoalesced()
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// decode returns the memoized claims for raw, or nil when unreadable.
func (m *Manager) decode(raw string) *Claims {
	if cached, ok := m.claims.Get(raw); ok {
		return cached
	}
	claims, err := decodeClaims(raw)
	if err != nil {
		return nil
	}
	m.claims.Add(raw, claims)
	return claims
}
