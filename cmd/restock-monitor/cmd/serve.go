package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tcg-tools/restock-monitor/internal/api/handlers"
	"github.com/tcg-tools/restock-monitor/internal/api/middleware"
	"github.com/tcg-tools/restock-monitor/internal/config"
	"github.com/tcg-tools/restock-monitor/internal/engine"
	"github.com/tcg-tools/restock-monitor/internal/notify"
	"github.com/tcg-tools/restock-monitor/internal/scrape"
	"github.com/tcg-tools/restock-monitor/internal/store"
	"github.com/tcg-tools/restock-monitor/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the monitor, scheduler, and API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN(),
		store.WithPoolSize(cfg.Database.PoolSize))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	notifier := buildNotifier(cfg, log)

	scrapers, err := scrape.NewScrapers(cfg.Scrape, cfg.Sources, log)
	if err != nil {
		return fmt.Errorf("building scrapers: %w", err)
	}
	if len(scrapers) == 0 {
		return fmt.Errorf("no sources enabled")
	}

	dispatcher := engine.NewDispatcher(st, notifier, cfg.Monitor.AlertCooldown,
		engine.WithDispatcherLogger(log))

	monitor := engine.NewMonitor(st, scrapers, dispatcher,
		cfg.Monitor.CheckInterval,
		cfg.Monitor.ErrorRetryInterval,
		cfg.Monitor.HistoryRetention,
		cfg.Monitor.CleanupEveryCycles,
		engine.WithMonitorLogger(log))

	retry := engine.NewRetryManager(st, notifier,
		cfg.DLQ.MaxRetries, cfg.DLQ.RetryDelay, log)

	scheduler, err := engine.NewScheduler(retry, cfg.DLQ.RetryInterval, log)
	if err != nil {
		return fmt.Errorf("building scheduler: %w", err)
	}

	e := buildServer(cfg, log, st, monitor, retry)

	if err := monitor.Start(ctx); err != nil {
		return fmt.Errorf("starting monitor: %w", err)
	}
	scheduler.Start()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	// Stop producing work before tearing down the transport, then close the
	// store last so in-flight cycles can still persist.
	monitor.Stop()
	<-scheduler.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func buildNotifier(cfg *config.Config, log *slog.Logger) notify.Notifier {
	if cfg.Notifications.Discord.Enabled {
		log.Info("discord notifications enabled")
		return notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL,
			notify.WithSendRate(cfg.Notifications.Discord.PerSecond, cfg.Notifications.Discord.Burst))
	}
	log.Warn("no notification backend configured, alerts will be logged only")
	return notify.NewNoOpNotifier(log)
}

func buildServer(
	cfg *config.Config,
	log *slog.Logger,
	st store.Store,
	monitor *engine.Monitor,
	retry *engine.RetryManager,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(log))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(st)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	humaCfg := huma.DefaultConfig("Restock Monitor API", Version)
	api := humaecho.New(e, humaCfg)

	handlers.RegisterStatusRoutes(api, handlers.NewStatusHandler(monitor, st))
	handlers.RegisterCheckRoutes(api, handlers.NewCheckHandler(monitor))
	handlers.RegisterProductRoutes(api, handlers.NewProductsHandler(st))
	handlers.RegisterDLQRoutes(api, handlers.NewDLQHandler(st, retry, cfg.DLQ.MaxRetries))
	handlers.RegisterTrackedRoutes(api, handlers.NewTrackedHandler(st))

	return e
}
