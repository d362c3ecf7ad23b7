package main

import (
	"context"
	"os"

	"StockAdvisor/internal/app"
	"StockAdvisor/internal/config"
	"StockAdvisor/internal/logger"
	"StockAdvisor/internal/model"
	"StockAdvisor/internal/pipeline"
	"StockAdvisor/internal/report"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := logger.New(logger.Config{Level: "info", Pretty: true})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: true})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	defer a.Close()

	req := pipeline.Request{Symbol1: "AAPL", Symbol2: "MSFT", Period: model.Period1Month}
	rep, err := a.Pipeline.Run(ctx, req)
	if err != nil {
		a.Close()
		log.Fatal().Err(err).Msg("report failed")
	}

	if err := report.PrintReport(os.Stdout, rep); err != nil {
		log.Error().Err(err).Msg("print report")
	}

	paths, err := report.SaveCharts(cfg.Output.ChartDir, &rep.Stocks[0].Series, &rep.Stocks[1].Series)
	if err != nil {
		a.Close()
		log.Fatal().Err(err).Msg("save charts")
	}
	for _, p := range paths {
		log.Info().Str("path", p).Msg("chart written")
	}
}
