package bigscreen

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/arcade-bigscreen/app/observability"
	bigscreenservice "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/application"
	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
	bigscreeneventbus "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/infrastructure/eventbus"
	bigscreenhandlers "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/infrastructure/handlers"
	bigscreenmetrics "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/infrastructure/metrics"
	bigscreenupstream "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/infrastructure/upstream"
	"github.com/Black-And-White-Club/arcade-bigscreen/config"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// Module wires the big-screen scheduler, its event bus and the display transport.
type Module struct {
	config   *config.Config
	service  *bigscreenservice.BigScreenService
	eventBus *bigscreeneventbus.EventBus
	hub      *bigscreenhandlers.Hub
	handlers *bigscreenhandlers.BigScreenHandlers
	logger   *slog.Logger

	mu         sync.Mutex
	cancelFunc context.CancelFunc
}

// ServiceConfig converts file/env settings into scheduler settings.
func ServiceConfig(cfg *config.Config) bigscreenservice.Config {
	sc := cfg.Scheduler
	svcCfg := bigscreenservice.Config{
		RefreshInterval:     sc.RefreshInterval,
		RotateInterval:      sc.RotateInterval,
		CardsPerPage:        sc.CardsPerPage,
		LiveRefreshInterval: sc.LiveRefreshInterval,
		LivePageInterval:    sc.LivePageInterval,
		LiveTickInterval:    sc.LiveTickInterval,
		MaxVisibleLive:      sc.MaxVisibleLive,
		FetchTimeout:        cfg.Upstream.Timeout,
		PreservePageCursor:  sc.PreserveCursor(),
		PriorityRules:       bigscreendomain.DefaultPriorityRules(),
	}
	for status, weight := range sc.Priority.Leaderboard {
		svcCfg.PriorityRules.Leaderboard[status] = weight
	}
	for status, weight := range sc.Priority.Tournament {
		svcCfg.PriorityRules.Tournament[status] = weight
	}
	return svcCfg
}

// NewModule creates the big-screen module and registers its HTTP routes on httpRouter.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "Initializing big-screen module",
		"upstream", cfg.Upstream.URL,
		"nats_enabled", cfg.NATS.URL != "",
	)

	eventBus, err := bigscreeneventbus.NewEventBus(cfg.NATS.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	metrics := bigscreenmetrics.NewMetrics(obs.Registry)
	upstream := bigscreenupstream.NewClient(cfg.Upstream.URL, cfg.Upstream.Timeout, logger, tracer)

	service := bigscreenservice.NewBigScreenService(
		ServiceConfig(cfg),
		upstream,
		eventBus,
		logger,
		metrics,
		tracer,
		clockwork.NewRealClock(),
		nil,
	)

	handlers := bigscreenhandlers.NewBigScreenHandlers(service, logger)
	hub := bigscreenhandlers.NewHub(eventBus, service, logger, metrics, cfg.HTTP.AllowedOrigins)

	if httpRouter != nil {
		limiter := bigscreenhandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
		httpRouter.Route("/api/v1/bigscreen", func(r chi.Router) {
			r.Use(bigscreenhandlers.CORSMiddleware(cfg.HTTP.AllowedOrigins))

			r.Get("/healthz", handlers.HandleHealth)
			r.Get("/ws", hub.ServeWS)

			r.Group(func(r chi.Router) {
				r.Use(bigscreenhandlers.RateLimitMiddleware(limiter))
				r.Get("/board", handlers.HandleBoard)
				r.Get("/live", handlers.HandleLive)
				r.Post("/height", handlers.HandleHeight)
				r.Post("/refresh", handlers.HandleRefresh)
			})
		})
	}

	return &Module{
		config:   cfg,
		service:  service,
		eventBus: eventBus,
		hub:      hub,
		handlers: handlers,
		logger:   logger,
	}, nil
}

// Run starts the scheduler and the display hub and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting big-screen module")

	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancelFunc = cancel
	m.mu.Unlock()
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	var inner sync.WaitGroup
	inner.Add(2)
	go func() {
		defer inner.Done()
		if err := m.hub.Run(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Display hub stopped", "error", err)
			cancel()
		}
	}()
	go func() {
		defer inner.Done()
		m.service.Run(ctx)
	}()

	inner.Wait()
	m.logger.InfoContext(ctx, "Big-screen module goroutines stopped")
}

// Close stops the scheduler and releases the event bus.
func (m *Module) Close() error {
	m.logger.Info("Stopping big-screen module")

	m.mu.Lock()
	cancel := m.cancelFunc
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	if err := m.service.Close(); err != nil {
		m.logger.Error("Error stopping scheduler", "error", err)
	}

	if m.eventBus != nil {
		if err := m.eventBus.Close(); err != nil {
			m.logger.Error("Error closing event bus", "error", err)
			return fmt.Errorf("error closing event bus: %w", err)
		}
	}

	m.logger.Info("Big-screen module stopped")
	return nil
}

// GetService returns the scheduler for use by other modules.
func (m *Module) GetService() bigscreenservice.Service {
	return m.service
}
