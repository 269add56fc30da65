package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lodgekeep/concierge/pkg/access"
	"github.com/lodgekeep/concierge/pkg/authapi"
	"github.com/lodgekeep/concierge/pkg/credstore"
	"github.com/lodgekeep/concierge/pkg/observability"
	"github.com/lodgekeep/concierge/pkg/token"
)

// ErrInvalidPrincipal is returned when the backend hands back a user
// without a role. Such a principal is unusable for access decisions and
// the session is rejected rather than established half-broken.
var ErrInvalidPrincipal = errors.New("principal has no role")

// AuthAPI is the slice of the backend auth client the controller needs.
// *authapi.Client satisfies it; tests substitute fakes.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*authapi.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (token.Pair, error)
	Logout(ctx context.Context, accessToken string) error
}

// Snapshot is a read-only view of the session state. The principal pointer
// is shared and must be treated as immutable by readers.
type Snapshot struct {
	Status    Status
	Principal *access.Principal
	SessionID string
}

// Config assembles a Controller's collaborators. API, Manager and Store
// are required; the rest default sensibly.
type Config struct {
	API     AuthAPI
	Manager *token.Manager
	Store   credstore.Store
	Grants  access.GrantTable
	Logger  *observability.Logger
	Metrics *observability.Metrics

	// RefreshInterval and ExpiryWindow tune the proactive-refresh
	// scheduler. Zero values take the token package defaults.
	RefreshInterval time.Duration
	ExpiryWindow    time.Duration
}

// Controller is the session state machine. There is one per running
// application, constructed explicitly at composition time and passed by
// reference to everything that needs session answers.
type Controller struct {
	api       AuthAPI
	manager   *token.Manager
	store     credstore.Store
	grants    access.GrantTable
	logger    *observability.Logger
	metrics   *observability.Metrics
	scheduler *token.Scheduler
	window    time.Duration

	mu           sync.RWMutex
	status       Status
	principal    *access.Principal
	sessionID    string
	listeners    map[int]func(Snapshot)
	nextListener int
}

// NewController creates a controller in the uninitialized state. Call
// Bootstrap to resolve the stored session before serving any traffic.
func NewController(cfg Config) *Controller {
	if cfg.Grants == nil {
		cfg.Grants = access.DefaultGrantTable()
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if cfg.ExpiryWindow <= 0 {
		cfg.ExpiryWindow = token.DefaultExpiryWindow
	}

	c := &Controller{
		api:       cfg.API,
		manager:   cfg.Manager,
		store:     cfg.Store,
		grants:    cfg.Grants,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		window:    cfg.ExpiryWindow,
		status:    StatusUninitialized,
		listeners: make(map[int]func(Snapshot)),
	}
	c.scheduler = token.NewScheduler(cfg.Manager, cfg.API.Refresh, token.SchedulerConfig{
		Interval:     cfg.RefreshInterval,
		ExpiryWindow: cfg.ExpiryWindow,
		Logger:       cfg.Logger,
		// The scheduler loop exits on its own after this fires; the
		// handler must not call Stop from inside the callback.
		OnForcedLogout: func() { c.handleForcedLogout("refresh_failed") },
	})
	return c
}

// Bootstrap resolves the stored credentials into a session. Absent or
// unusable credentials end in the unauthenticated state; that is a normal
// outcome, not an error. The returned error is reserved for context
// cancellation.
func (c *Controller) Bootstrap(ctx context.Context) error {
	c.setState(StatusLoading, nil)

	refresh, ok := c.manager.RefreshToken()
	if !ok || refresh == "" {
		c.manager.ClearTokens()
		c.setState(StatusUnauthenticated, nil)
		return nil
	}

	if c.manager.IsExpiringSoon(c.window) {
		if _, err := c.manager.Refresh(ctx, c.api.Refresh); err != nil {
			if ctx.Err() != nil {
				c.setState(StatusUnauthenticated, nil)
				return ctx.Err()
			}
			c.logger.WithError(err).Info("stored session could not be resumed")
			c.setState(StatusUnauthenticated, nil)
			return nil
		}
	}

	principal := c.resolvePrincipal()
	if !principal.Valid() {
		c.manager.ClearTokens()
		c.setState(StatusUnauthenticated, nil)
		return nil
	}

	c.becomeAuthenticated(principal)
	return nil
}

// Login exchanges credentials for a session. On backend rejection the
// error carries the backend's message (*authapi.APIError) for display. A
// response that lands after the session changed underneath it (logout,
// forced logout) is discarded with token.ErrSuperseded.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	// A re-login replaces whatever session is live. The refresh loop stops
	// and the old credentials are cleared before the new ones are tried, so
	// a rejected attempt cannot leave the previous session running behind
	// an unauthenticated status.
	if c.Snapshot().Status == StatusAuthenticated {
		c.scheduler.Stop()
		c.manager.ClearTokens()
	}

	c.setState(StatusLoading, nil)
	gen := c.manager.Generation()

	result, err := c.api.Login(ctx, email, password)
	if err != nil {
		c.metrics.ObserveLogin("failure")
		c.setState(StatusUnauthenticated, nil)
		return err
	}

	if c.manager.Generation() != gen {
		c.metrics.ObserveLogin("superseded")
		c.logger.Debug("discarding login response that arrived after a session change")
		c.setState(StatusUnauthenticated, nil)
		return token.ErrSuperseded
	}

	principal := c.principalFromUser(result.User)
	if !principal.Valid() {
		c.metrics.ObserveLogin("failure")
		c.setState(StatusUnauthenticated, nil)
		return ErrInvalidPrincipal
	}

	c.manager.SetTokens(result.Tokens.AccessToken, result.Tokens.RefreshToken)
	c.cacheUser(result.User)
	c.metrics.ObserveLogin("success")
	c.becomeAuthenticated(principal)
	return nil
}

// Logout ends the session. The backend call is best-effort: its failure is
// logged and the local session is cleared regardless, so a dead backend
// can never trap a user in an authenticated state.
func (c *Controller) Logout(ctx context.Context) error {
	accessToken, _ := c.manager.AccessToken()
	c.scheduler.Stop()

	if err := c.api.Logout(ctx, accessToken); err != nil {
		c.logger.WithError(err).Warn("backend logout failed, clearing session locally")
	}

	c.manager.ClearTokens()
	c.metrics.ObserveLogout("user")
	c.setState(StatusUnauthenticated, nil)
	return nil
}

// Close stops the background scheduler. The controller is not usable
// afterwards.
func (c *Controller) Close() {
	c.scheduler.Stop()
}

// Snapshot returns the current status and principal.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{Status: c.status, Principal: c.principal, SessionID: c.sessionID}
}

// Subscribe registers fn to be called synchronously on every state
// transition. The returned function cancels the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// CheckPermission reports whether the authenticated principal holds the
// permission. Always false outside the authenticated state.
func (c *Controller) CheckPermission(permission string) bool {
	snap := c.Snapshot()
	if snap.Status != StatusAuthenticated || !snap.Principal.Valid() {
		return false
	}
	return access.HasPermission(snap.Principal.Permissions, permission)
}

// CheckAnyPermission reports whether at least one of permissions is held.
func (c *Controller) CheckAnyPermission(permissions []string) bool {
	snap := c.Snapshot()
	if snap.Status != StatusAuthenticated || !snap.Principal.Valid() {
		return false
	}
	return access.HasAnyPermission(snap.Principal.Permissions, permissions)
}

// CheckAllPermissions reports whether every one of permissions is held.
// Vacuously true for an empty list, but still false when unauthenticated.
func (c *Controller) CheckAllPermissions(permissions []string) bool {
	snap := c.Snapshot()
	if snap.Status != StatusAuthenticated || !snap.Principal.Valid() {
		return false
	}
	return access.HasAllPermissions(snap.Principal.Permissions, permissions)
}

// HasRole reports whether the authenticated principal holds the named
// role. The match is case-sensitive.
func (c *Controller) HasRole(roleName string) bool {
	snap := c.Snapshot()
	if snap.Status != StatusAuthenticated {
		return false
	}
	return access.HasRole(snap.Principal, roleName)
}

// MonitorExternal watches for credential changes made by another process
// (for example a FileStore watch signal). When a signal arrives and the
// refresh token is gone, the session is force-logged-out. The goroutine
// exits when ctx is cancelled or signals closes.
func (c *Controller) MonitorExternal(ctx context.Context, signals <-chan struct{}) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, open := <-signals:
				if !open {
					return
				}
				refresh, ok := c.manager.RefreshToken()
				if ok && refresh != "" {
					continue
				}
				if c.Snapshot().Status != StatusAuthenticated {
					continue
				}
				c.logger.Warn("credentials removed externally, ending session")
				c.scheduler.Stop()
				c.handleForcedLogout("external")
			}
		}
	}()
}

// handleForcedLogout is the single path for session termination that the
// user did not ask for: proactive-refresh failure and external credential
// removal both land here.
func (c *Controller) handleForcedLogout(trigger string) {
	c.manager.ClearTokens()
	c.metrics.ObserveLogout(trigger)
	c.logger.WithField("trigger", trigger).Warn("session terminated")
	c.setState(StatusUnauthenticated, nil)
}

func (c *Controller) becomeAuthenticated(principal *access.Principal) {
	c.setState(StatusAuthenticated, principal)
	snap := c.Snapshot()
	c.logger.WithFields(map[string]interface{}{
		"session_id": snap.SessionID,
		"role":       principal.Role.Name,
	}).Info("session established")
	c.scheduler.Start(context.Background())
}

// resolvePrincipal rebuilds the principal during bootstrap: the cached
// user snapshot wins, token claims are the fallback.
func (c *Controller) resolvePrincipal() *access.Principal {
	if raw, ok := c.store.Get(credstore.KeyCachedUser); ok && raw != "" {
		var user authapi.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			if p := c.principalFromUser(user); p.Valid() {
				return p
			}
		} else {
			c.logger.WithError(err).Debug("cached user snapshot unreadable, falling back to token claims")
		}
	}

	p := c.manager.PrincipalFromToken()
	if !p.Valid() {
		return nil
	}
	p.Permissions = c.grants.GrantsForRole(p.Role.Name)
	return p
}

func (c *Controller) principalFromUser(user authapi.User) *access.Principal {
	return &access.Principal{
		ID:          user.ID,
		DisplayName: user.FullName,
		Email:       user.Email,
		Role:        user.Role,
		Permissions: c.grants.GrantsForRole(user.Role.Name),
	}
}

func (c *Controller) cacheUser(user authapi.User) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	c.store.Set(credstore.KeyCachedUser, string(data))
}

// setState applies the transition and notifies subscribers outside the
// lock. Entering the authenticated state mints a fresh session id.
func (c *Controller) setState(status Status, principal *access.Principal) {
	c.mu.Lock()
	c.status = status
	c.principal = principal
	if status == StatusAuthenticated {
		c.sessionID = uuid.NewString()
	} else {
		c.sessionID = ""
	}
	snap := Snapshot{Status: c.status, Principal: c.principal, SessionID: c.sessionID}
	fns := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
