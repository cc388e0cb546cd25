package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/teampicker/internal/adapters/discord"
	"github.com/okian/teampicker/internal/adapters/http/api"
	"github.com/okian/teampicker/internal/adapters/http/swagger"
	app "github.com/okian/teampicker/internal/app"
	"github.com/okian/teampicker/internal/config"
	"github.com/okian/teampicker/internal/domain/rating"
	"github.com/okian/teampicker/pkg/logger"
	"github.com/okian/teampicker/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> .env and env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		stop()
		os.Exit(1) //nolint:gocritic // stop is called above
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, loggerInstance); err != nil {
		loggerInstance.Error(ctx, "team picker stopped with error", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run starts the service and its transports and blocks until ctx is done.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	bot, err := startBot(ctx, cfg, svc, log)
	if err != nil {
		return err
	}
	if bot != nil {
		defer func() {
			if err := bot.Stop(); err != nil {
				log.Warn(ctx, "discord bot stop failed", logger.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService builds the room service from configuration.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	opts := []app.Option{
		app.WithLogger(log),
		app.WithShardCount(cfg.ShardCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithCommandTimeout(cfg.CommandTimeout()),
	}
	if len(cfg.Tiers) > 0 {
		opts = append(opts, app.WithTiers(rating.Tiers(cfg.Tiers)))
	}
	return app.New(opts...)
}

// newRouter mounts the API and its documentation.
func newRouter(ctx context.Context, svc *app.Service) http.Handler {
	r := chi.NewRouter()
	api.NewServer(svc, svc).Register(ctx, r)
	swagger.Register(ctx, r)
	return r
}

// startBot connects the chat bot when a token is configured.
func startBot(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) (*discord.Bot, error) {
	if cfg.DiscordToken == "" {
		log.Info(ctx, "no discord token configured; chat bot disabled")
		return nil, nil
	}
	bot, err := discord.NewBot(cfg.DiscordToken, discord.NewCommands(svc, cfg.CommandPrefix),
		discord.WithDeduper(svc), discord.WithLogger(log.Named("discord")))
	if err != nil {
		return nil, err
	}
	if err := bot.Start(ctx); err != nil {
		return nil, err
	}
	return bot, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
