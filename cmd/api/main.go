package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/invoice-insights/pkg/config"
	"github.com/FACorreiaa/invoice-insights/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	deps, err := InitDependencies(cfg, log)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	if deps.Scheduler != nil {
		if err := deps.Scheduler.Start(); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newRouter mounts the API, health and metrics endpoints
func newRouter(deps *Dependencies) http.Handler {
	cfg := deps.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observe(deps.HTTPMetrics, deps.Logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.Observability.MetricsEnabled {
		r.Handle(cfg.Observability.MetricsPath, promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimitPerSecond), cfg.Server.RateLimitBurst)
	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimit(limiter, deps.Logger))
		deps.AnalyticsHandler.Routes(r)
	})

	return r
}
