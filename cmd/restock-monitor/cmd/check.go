package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tcg-tools/restock-monitor/internal/config"
	"github.com/tcg-tools/restock-monitor/internal/engine"
	"github.com/tcg-tools/restock-monitor/internal/scrape"
	"github.com/tcg-tools/restock-monitor/internal/store"
	"github.com/tcg-tools/restock-monitor/pkg/logger"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one check cycle and exit",
	Long: "Runs a single check cycle against every enabled source, dispatches\n" +
		"any alerts, and exits. Useful for cron-style deployments and smoke tests.",
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN(),
		store.WithPoolSize(cfg.Database.PoolSize))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	scrapers, err := scrape.NewScrapers(cfg.Scrape, cfg.Sources, log)
	if err != nil {
		return fmt.Errorf("building scrapers: %w", err)
	}

	dispatcher := engine.NewDispatcher(st, buildNotifier(cfg, log), cfg.Monitor.AlertCooldown,
		engine.WithDispatcherLogger(log))

	monitor := engine.NewMonitor(st, scrapers, dispatcher,
		cfg.Monitor.CheckInterval,
		cfg.Monitor.ErrorRetryInterval,
		cfg.Monitor.HistoryRetention,
		cfg.Monitor.CleanupEveryCycles,
		engine.WithMonitorLogger(log))

	events, err := monitor.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("check cycle: %w", err)
	}

	log.Info("check complete", "events", len(events))
	for i := range events {
		e := &events[i]
		log.Info("event",
			"type", e.Type,
			"product", e.Product.Name,
			"retailer", e.Product.Retailer,
			"price", e.Product.DisplayPrice(),
			"url", e.Product.URL,
		)
	}
	return nil
}
