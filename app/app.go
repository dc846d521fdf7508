package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen"
	"github.com/Black-And-White-Club/arcade-bigscreen/app/observability"
	"github.com/Black-And-White-Club/arcade-bigscreen/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// App owns the HTTP servers and every module of the big-screen service.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	Router        chi.Router
	BigScreen     *bigscreen.Module

	server        *http.Server
	metricsServer *http.Server
}

// NewApp builds the router and modules without starting anything.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RedirectSlashes)

	bigScreenModule, err := bigscreen.NewModule(ctx, cfg, obs, router)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize big-screen module: %w", err)
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		Router:        router,
		BigScreen:     bigScreenModule,
		server: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	metricsHandler := promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{})
	if cfg.Observability.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		app.metricsServer = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	} else {
		router.Handle("/metrics", metricsHandler)
	}

	return app, nil
}

// Run serves until ctx is done, then shuts everything down.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	var wg sync.WaitGroup
	wg.Add(1)
	go app.BigScreen.Run(ctx, &wg)

	errCh := make(chan error, 2)
	serve := func(name string, srv *http.Server) {
		logger.InfoContext(ctx, "HTTP server listening", "server", name, "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s server failed: %w", name, err)
		}
	}
	go serve("display", app.server)
	if app.metricsServer != nil {
		go serve("metrics", app.metricsServer)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errCh:
		logger.Error("Server error, shutting down", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	app.shutdown(shutdownCtx)
	wg.Wait()

	logger.Info("Big-screen service stopped")
	return runErr
}

func (app *App) shutdown(ctx context.Context) {
	logger := app.Observability.Logger

	if err := app.server.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down display server", "error", err)
	}
	if app.metricsServer != nil {
		if err := app.metricsServer.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down metrics server", "error", err)
		}
	}
	if err := app.BigScreen.Close(); err != nil {
		logger.Error("Error closing big-screen module", "error", err)
	}
	if err := app.Observability.Shutdown(ctx); err != nil {
		logger.Error("Error flushing traces", "error", err)
	}
}
