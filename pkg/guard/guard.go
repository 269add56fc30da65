package guard

import (
	"net/http"

	"github.com/lodgekeep/concierge/pkg/access"
	"github.com/lodgekeep/concierge/pkg/contextkeys"
	"github.com/lodgekeep/concierge/pkg/observability"
	"github.com/lodgekeep/concierge/pkg/session"
)

// DefaultLoginPath is where unauthenticated requests are redirected.
const DefaultLoginPath = "/login"

// decision is the outcome of evaluating a requirement against the
// session. All adapters share it; they differ only in how each outcome
// is rendered.
type decision int

const (
	decisionWait decision = iota
	decisionLogin
	decisionDeny
	decisionAllow
)

func (d decision) String() string {
	switch d {
	case decisionWait:
		return "waiting"
	case decisionLogin:
		return "redirect_login"
	case decisionDeny:
		return "deny"
	case decisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Guard builds policy enforcement handlers over a session controller.
type Guard struct {
	session      Session
	loginPath    string
	destinations *Destinations
	metrics      *observability.Metrics
	logger       *observability.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithLoginPath overrides the unauthenticated redirect target.
func WithLoginPath(path string) Option {
	return func(g *Guard) { g.loginPath = path }
}

// WithDestinations overrides the denial redirect resolver.
func WithDestinations(d *Destinations) Option {
	return func(g *Guard) { g.destinations = d }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(g *Guard) { g.metrics = m }
}

// WithLogger sets the structured logger.
func WithLogger(l *observability.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

// New creates a Guard over the session.
func New(s Session, opts ...Option) *Guard {
	g := &Guard{
		session:      s,
		loginPath:    DefaultLoginPath,
		destinations: DefaultDestinations(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return g
}

// evaluate maps the session state and requirement to a decision. This is
// the single evaluation path for every adapter.
func (g *Guard) evaluate(req Requirement) (decision, *access.Principal) {
	snap := g.session.Snapshot()
	switch snap.Status {
	case session.StatusUninitialized, session.StatusLoading:
		// No access decision exists before bootstrap settles.
		return decisionWait, nil
	case session.StatusUnauthenticated:
		return decisionLogin, nil
	}
	if !req.Satisfied(g.session) {
		return decisionDeny, snap.Principal
	}
	return decisionAllow, snap.Principal
}

// Conditional serves children when the requirement is satisfied and
// fallback otherwise. It never redirects; absent a fallback it answers
// 204 with an empty body. Waiting states count as unsatisfied here, which
// keeps the adapter free of retry semantics.
func (g *Guard) Conditional(req Requirement, children, fallback http.Handler) http.Handler {
	if fallback == nil {
		fallback = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, _ := g.evaluate(req)
		g.observe("conditional", d)
		if d == decisionAllow {
			children.ServeHTTP(w, r)
			return
		}
		fallback.ServeHTTP(w, r)
	})
}

// Route enforces the requirement on a route: waiting states get a neutral
// 503 with Retry-After (no decision has been made yet), unauthenticated
// requests are redirected to the login path, denied principals are
// redirected to their role's landing page, and satisfied requests pass
// through.
func (g *Guard) Route(req Requirement, next http.Handler) http.Handler {
	return g.handler("route", req, next)
}

// Wrap returns middleware enforcing the requirement, for composing with
// router middleware chains. Decisions are identical to Route's.
func (g *Guard) Wrap(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.handler("wrap", req, next)
	}
}

func (g *Guard) handler(name string, req Requirement, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, principal := g.evaluate(req)
		g.observe(name, d)
		switch d {
		case decisionWait:
			w.Header().Set("Retry-After", "1")
			http.Error(w, "session is initializing", http.StatusServiceUnavailable)
		case decisionLogin:
			http.Redirect(w, r, g.loginPath, http.StatusFound)
		case decisionDeny:
			g.logger.WithFields(map[string]interface{}{
				"path": r.URL.Path,
				"role": roleName(principal),
			}).Debug("access denied, redirecting to role landing page")
			http.Redirect(w, r, g.destinations.Resolve(principal), http.StatusFound)
		case decisionAllow:
			ctx := contextkeys.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	})
}

func (g *Guard) observe(name string, d decision) {
	g.metrics.ObserveGuardDecision(name, d.String())
}

func roleName(p *access.Principal) string {
	if p == nil {
		return ""
	}
	return p.Role.Name
}
