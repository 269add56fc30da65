package cli

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	reverseproxy "net/http/httputil"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"

	"github.com/lodgekeep/concierge/pkg/authapi"
	"github.com/lodgekeep/concierge/pkg/credstore"
	"github.com/lodgekeep/concierge/pkg/guard"
	"github.com/lodgekeep/concierge/pkg/httputil"
)

func newServeCommand() *Command {
	return &Command{
		Name:        "serve",
		Description: "Run the guarded local admin proxy",
		Flags:       flag.NewFlagSet("serve", flag.ExitOnError),
		Run:         runServe,
	}
}

func runServe(args []string) error {
	cmd := newServeCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.controller.Bootstrap(ctx); err != nil {
		return err
	}

	// A file-backed store can be wiped by another process (e.g. a second
	// concierge running logout); watch it and end the session in kind.
	if fs, ok := a.store.(*credstore.FileStore); ok {
		events, err := fs.Watch(ctx)
		if err != nil {
			a.logger.WithError(err).Warn("credential file watch unavailable")
		} else {
			a.controller.MonitorExternal(ctx, events)
		}
	}

	handler := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(a.logger),
		httputil.RecoveryMiddleware(a.logger),
	)(a.newRouter())

	srv := &http.Server{
		Addr:         net.JoinHostPort(a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	a.logger.WithField("addr", srv.Addr).Info("admin proxy listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter builds the proxy's route table: open session endpoints,
// guarded backend mounts and operational endpoints.
func (a *app) newRouter() *mux.Router {
	g := guard.New(a.controller,
		guard.WithLoginPath(a.cfg.Server.LoginPath),
		guard.WithMetrics(a.metrics),
		guard.WithLogger(a.logger),
	)

	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteSuccess(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	if a.metrics != nil {
		router.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)
	}

	router.HandleFunc("/login", a.handleLogin).Methods(http.MethodPost)
	router.HandleFunc("/logout", a.handleLogout).Methods(http.MethodPost)
	router.HandleFunc("/session", a.handleSession).Methods(http.MethodGet)

	// Backend mounts, each behind the matching view permission. The
	// proxy forwards with a fresh bearer token and a single 401
	// refresh-and-retry.
	proxy := a.newBackendProxy()
	for _, mount := range []struct {
		prefix string
		req    guard.Requirement
	}{
		{"/api/rooms", guard.Requirement{Permissions: []string{"room.view"}}},
		{"/api/amenities", guard.Requirement{Permissions: []string{"amenity.view"}}},
		{"/api/users", guard.Requirement{Permissions: []string{"user.view"}}},
	} {
		router.PathPrefix(mount.prefix).Handler(g.Route(mount.req, proxy))
	}

	return router
}

func (a *app) newBackendProxy() http.Handler {
	proxy := reverseproxy.NewSingleHostReverseProxy(a.backendURL)
	proxy.Transport = authapi.NewTransport(a.manager, a.client.Refresh, nil, a.logger)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		a.logger.WithError(err).Warn("backend proxy error")
		httputil.WriteBadGateway(w, "backend unreachable")
	}
	return proxy
}

func (a *app) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") ||
		!httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	if err := a.controller.Login(r.Context(), req.Email, req.Password); err != nil {
		var apiErr *authapi.APIError
		if errors.As(err, &apiErr) {
			httputil.WriteErrorMessage(w, apiErr.Status, apiErr.Message)
			return
		}
		httputil.WriteBadGateway(w, "login failed")
		return
	}

	a.writeSession(w)
}

func (a *app) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.controller.Logout(r.Context()); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (a *app) handleSession(w http.ResponseWriter, r *http.Request) {
	a.writeSession(w)
}

// writeSession renders the controller snapshot. Unauthenticated and
// in-flight states still answer 200: the session endpoint reports state,
// it does not enforce it.
func (a *app) writeSession(w http.ResponseWriter) {
	snap := a.controller.Snapshot()
	body := map[string]interface{}{
		"status": snap.Status.String(),
	}
	if snap.Principal != nil {
		body["principal"] = snap.Principal
		body["session_id"] = snap.SessionID
	}
	httputil.WriteSuccess(w, body)
}
