package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/sagoresarker/cabletrace/internal/cables"
	"github.com/sagoresarker/cabletrace/internal/cache"
	"github.com/sagoresarker/cabletrace/internal/config"
	"github.com/sagoresarker/cabletrace/internal/handlers"
	"github.com/sagoresarker/cabletrace/internal/logger"
	"github.com/sagoresarker/cabletrace/internal/metrics"
	"github.com/sagoresarker/cabletrace/internal/ratelimit"
	"github.com/sagoresarker/cabletrace/internal/session"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	catalog, err := cables.LoadFile(cfg.Cables.GeoJSONPath, log)
	if err != nil {
		// the overlay still works with references supplied in the hops
		log.Warn("cable catalog unavailable", zap.String("path", cfg.Cables.GeoJSONPath), zap.Error(err))
		catalog = nil
	}

	runs, err := cache.New(cfg.Cache, log)
	if err != nil {
		return fmt.Errorf("failed to create run cache: %w", err)
	}
	defer runs.Close()

	sessions := session.NewManager(session.OptionsFromConfig(cfg), cfg.Sessions.TTL, cfg.Sessions.CleanupInterval, m, log)
	defer sessions.Close()

	limiter := ratelimit.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	defer limiter.Close()

	router := handlers.NewRouter(handlers.RouterDeps{
		Sessions: handlers.NewSessionHandler(sessions, runs, catalog, cfg.Cables.NearestToleranceKm, m, log),
		Stream:   handlers.NewStreamHandler(sessions, cfg.Server.AllowedOrigins, log),
		Cables:   handlers.NewCableHandler(catalog, log),
		Limiter:  limiter,
		Metrics:  m,
		Logger:   log,
	})

	server := &http.Server{
		Handler:      handlers.EnableCORS(cfg.Server.AllowedOrigins, router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if cfg.Server.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.Server.MaxConnections)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server is running", zap.String("addr", addr))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var metricsServer *metrics.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, prometheus.DefaultGatherer, log)
		g.Go(metricsServer.Start)
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shutdown HTTP server", zap.Error(err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Error("failed to shutdown metrics server", zap.Error(err))
			}
		}
		return nil
	})

	return g.Wait()
}
