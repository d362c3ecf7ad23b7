package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockAdvisor/internal/app"
	"StockAdvisor/internal/config"
	"StockAdvisor/internal/logger"
	"StockAdvisor/internal/notifier"
	"StockAdvisor/internal/scheduler"
	"StockAdvisor/internal/server"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := logger.New(logger.Config{Level: "info"})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)
	log.Info().Msg("StockAdvisor dashboard starting")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	defer a.Close()

	defaults := app.DefaultRequest(cfg)

	if cfg.TelegramEnabled() {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sched := scheduler.NewScheduler(ctx, a.Pipeline, tn, defaults, log)
		if cfg.Schedule.ReportCron != "" {
			if err := sched.RegisterReport(cfg.Schedule.ReportCron); err != nil {
				log.Fatal().Err(err).Msg("register cron task")
			}
		}
		sched.Start()
		defer sched.Stop()

		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")

		if os.Getenv("RUN_ON_START") == "true" {
			log.Info().Msg("RUN_ON_START enabled, sending report now")
			go sched.RunReportNow()
		}
	}

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		Log:            log,
		Runner:         a.Pipeline,
		Defaults:       defaults,
		RequestTimeout: cfg.DataSource.Timeout*4 + cfg.LLM.Timeout,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server")
			cancel()
		}
	}()

	log.Info().Str("addr", cfg.Server.Addr).Msg("StockAdvisor is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	log.Info().Msg("StockAdvisor stopped")
}
