package token

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lodgekeep/concierge/pkg/observability"
)

// DefaultRefreshInterval is how often the proactive-refresh loop checks
// the access token.
const DefaultRefreshInterval = time.Minute

// Scheduler runs the proactive-refresh loop: an immediate check at start,
// then a periodic one. When the access token is expiring soon it refreshes
// it in the background; when that refresh fails it clears the tokens and
// signals a forced logout instead of letting the session die mid-request.
//
// The scheduler is owned by the session controller, started on entering the
// authenticated state and stopped on leaving it.
type Scheduler struct {
	manager  *Manager
	exchange ExchangeFunc
	interval time.Duration
	window   time.Duration
	logger   *observability.Logger

	// onForcedLogout is invoked (from the scheduler goroutine) after a
	// failed proactive refresh has cleared the tokens. It must not block.
	onForcedLogout func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// SchedulerConfig configures a Scheduler. Zero values take defaults.
type SchedulerConfig struct {
	Interval       time.Duration
	ExpiryWindow   time.Duration
	Logger         *observability.Logger
	OnForcedLogout func()
}

// NewScheduler creates a stopped scheduler over the manager.
func NewScheduler(manager *Manager, exchange ExchangeFunc, cfg SchedulerConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRefreshInterval
	}
	if cfg.ExpiryWindow <= 0 {
		cfg.ExpiryWindow = DefaultExpiryWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if cfg.OnForcedLogout == nil {
		cfg.OnForcedLogout = func() {}
	}
	return &Scheduler{
		manager:        manager,
		exchange:       exchange,
		interval:       cfg.Interval,
		window:         cfg.ExpiryWindow,
		logger:         cfg.Logger,
		onForcedLogout: cfg.OnForcedLogout,
	}
}

// Start launches the loop, performing one immediate check before the first
// tick. Starting an already-running scheduler cancels the previous loop and
// replaces it; two independent timers never coexist.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.run(loopCtx, done)
}

// Stop cancels the loop and waits for it to exit. Stopping a stopped
// scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	if !s.check(ctx) {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.check(ctx) {
				return
			}
		}
	}
}

// check refreshes the token when it is expiring soon. Failures other than
// a superseding session change clear the tokens and raise the forced-logout
// signal; they are absorbed here, never surfaced as unhandled errors. The
// return value reports whether the loop should keep running: after a forced
// logout there is no session left to renew.
func (s *Scheduler) check(ctx context.Context) bool {
	if !s.manager.IsExpiringSoon(s.window) {
		return true
	}

	if _, err := s.manager.Refresh(ctx, s.exchange); err != nil {
		if errors.Is(err, ErrSuperseded) || ctx.Err() != nil {
			return true
		}
		s.logger.WithError(err).Warn("proactive refresh failed, forcing logout")
		s.manager.ClearTokens()
		s.onForcedLogout()
		return false
	}
	return true
}
