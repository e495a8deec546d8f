package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"StockPulse/internal/collector"
	"StockPulse/internal/config"
	"StockPulse/internal/dashboard"
	"StockPulse/internal/logging"
	"StockPulse/internal/notifier"
	"StockPulse/internal/scheduler"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("config validation")
	}
	logger.Info().Str("config", cfgPath).Msg("StockPulse starting")

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	logger.Info().Str("source", fetcher.Name()).Msg("data source selected")

	// Init display
	var display dashboard.Display = notifier.NewConsoleNotifier(os.Stdout)
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy,
			logging.Component(logger, "telegram"))
		display = tn
	}

	params, err := cfg.Params()
	if err != nil {
		logger.Fatal().Err(err).Msg("dashboard params")
	}
	session, err := dashboard.NewSession(fetcher, display, params, dashboard.Options{
		TailRows:               cfg.Dashboard.TailRows,
		ComparePreviousRefresh: cfg.Dashboard.ComparePreviousRefresh,
		ExportDir:              cfg.Export.Dir,
	}, logging.Component(logger, "dashboard"))
	if err != nil {
		logger.Fatal().Err(err).Msg("init dashboard")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, session, cfg.Export.Dir, logging.Component(logger, "scheduler"))
	if cfg.Refresh.Enabled {
		if err := sched.RegisterAutoRefresh(cfg.Refresh.Interval); err != nil {
			logger.Fatal().Err(err).Msg("register auto refresh")
		}
	}

	// First render happens immediately, like opening the page.
	sched.Tick()

	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info().Msg("telegram polling started")
	}

	logger.Info().Msg("StockPulse is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutdown signal received, stopping...")
	cancel()
}
