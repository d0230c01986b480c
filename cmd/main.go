package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/fika/internal/adapters/notifier"
	"github.com/okian/fika/internal/adapters/repository"
	app "github.com/okian/fika/internal/app"
	"github.com/okian/fika/internal/config"
	"github.com/okian/fika/internal/db"
	"github.com/okian/fika/pkg/logger"
	"github.com/okian/fika/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, cleanup, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "store setup failed", logger.Error(err))
		return
	}
	defer cleanup()

	sender, err := buildNotifier(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "notifier setup failed", logger.Error(err))
		return
	}

	matchDay, err := cfg.MatchWeekday()
	if err != nil {
		log.Error(ctx, "invalid match day", logger.Error(err))
		return
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Error(ctx, "invalid timezone", logger.Error(err))
		return
	}

	// Create and start the service with configuration options
	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithNotifier(sender),
		app.WithMissedThreshold(cfg.MissedMatchThreshold),
		app.WithSchedule(matchDay, cfg.MatchHour, cfg.ReminderHour, loc),
		app.WithNotifyPacing(cfg.NotifyPacing()),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux: health and metrics only; members interact through the bot.
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildStore selects Postgres when a DSN is configured and the in-memory
// store otherwise. The cleanup func closes whatever was opened.
func buildStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn(ctx, "no database_url configured; state is in-memory and lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.ApplyMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info(ctx, "connected to postgres")
	return repository.NewPostgresStore(pool), pool.Close, nil
}

// buildNotifier selects Telegram when a bot token is configured and the
// log-only notifier otherwise.
func buildNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) (notifier.Notifier, error) {
	if cfg.BotToken == "" {
		log.Warn(ctx, "no bot_token configured; notifications go to the log only")
		return notifier.NewLogNotifier(), nil
	}
	return notifier.NewTelegramNotifier(cfg.BotToken, cfg.WebappURL)
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
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
