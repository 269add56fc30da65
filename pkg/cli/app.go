package cli

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lodgekeep/concierge/pkg/access"
	"github.com/lodgekeep/concierge/pkg/authapi"
	"github.com/lodgekeep/concierge/pkg/config"
	"github.com/lodgekeep/concierge/pkg/credstore"
	"github.com/lodgekeep/concierge/pkg/observability"
	"github.com/lodgekeep/concierge/pkg/session"
	"github.com/lodgekeep/concierge/pkg/token"
)

// app is the assembled session core shared by every command: one store,
// one token manager, one session controller.
type app struct {
	cfg        *config.Config
	backendURL *url.URL
	store      credstore.Store
	manager    *token.Manager
	client     *authapi.Client
	controller *session.Controller
	logger     *observability.Logger
	metrics    *observability.Metrics

	closers []func()
}

// buildApp loads configuration and wires the session core together.
func buildApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return buildAppWithConfig(cfg)
}

func buildAppWithConfig(cfg *config.Config) (*app, error) {
	backendURL, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stderr)

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	store, closeStore, err := newStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	manager := token.NewManager(store,
		token.WithLogger(logger),
		token.WithMetrics(metrics),
	)

	client := authapi.NewClient(cfg.Backend.BaseURL,
		authapi.WithClientLogger(logger),
		authapi.WithHTTPClient(&http.Client{
			Timeout:   cfg.Backend.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}),
	)

	grants := access.DefaultGrantTable()
	if cfg.Session.GrantTablePath != "" {
		grants, err = access.LoadGrantTable(cfg.Session.GrantTablePath)
		if err != nil {
			closeStore()
			return nil, err
		}
	}

	controller := session.NewController(session.Config{
		API:             client,
		Manager:         manager,
		Store:           store,
		Grants:          grants,
		Logger:          logger,
		Metrics:         metrics,
		RefreshInterval: cfg.Session.RefreshInterval,
		ExpiryWindow:    cfg.Session.ExpiryWindow,
	})

	return &app{
		cfg:        cfg,
		backendURL: backendURL,
		store:      store,
		manager:    manager,
		client:     client,
		controller: controller,
		logger:     logger,
		metrics:    metrics,
		closers:    []func(){controller.Close, closeStore},
	}, nil
}

// Close releases the controller's scheduler and any store connections.
func (a *app) Close() {
	for _, closer := range a.closers {
		closer()
	}
}

// newStore builds the credential store selected by configuration.
func newStore(cfg config.StoreConfig) (credstore.Store, func(), error) {
	noop := func() {}
	switch cfg.Type {
	case "memory":
		return credstore.NewMemoryStore(), noop, nil
	case "noop":
		return credstore.NewNoopStore(), noop, nil
	case "file":
		s, err := credstore.NewFileStore(cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open credential file: %w", err)
		}
		return s, noop, nil
	case "redis":
		s, err := credstore.NewRedisStore(credstore.RedisConfig{
			URL:       cfg.RedisURL,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.RedisNamespace,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
