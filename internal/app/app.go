// Package app builds the runtime components from configuration.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"StockAdvisor/internal/advisor"
	"StockAdvisor/internal/collector"
	"StockAdvisor/internal/config"
	"StockAdvisor/internal/model"
	"StockAdvisor/internal/pipeline"
	"StockAdvisor/internal/recorder"
)

// App bundles the wired pipeline and the resources it owns.
type App struct {
	Fetcher  collector.Fetcher
	Model    advisor.ChatModel
	Recorder recorder.Recorder
	Pipeline *pipeline.Pipeline
}

// NewFetcher selects the market-data provider.
func NewFetcher(cfg *config.Config, log zerolog.Logger) (collector.Fetcher, error) {
	switch cfg.DataSource.Provider {
	case config.ProviderYFinance:
		return collector.NewYFinanceFetcher(cfg.DataSource.Timeout, log), nil
	case config.ProviderYahoo:
		return collector.NewYahooFetcher(cfg.DataSource.BaseURL, cfg.Proxy, cfg.DataSource.Timeout, log), nil
	case config.ProviderMock:
		return &collector.MockFetcher{Generate: true}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", cfg.DataSource.Provider)
	}
}

// NewChatModel selects the language-model backend.
func NewChatModel(ctx context.Context, cfg *config.Config) (advisor.ChatModel, error) {
	switch cfg.LLM.Provider {
	case config.LLMOpenAI:
		return advisor.NewOpenAIModel(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.Timeout), nil
	case config.LLMGemini:
		return advisor.NewGeminiModel(ctx, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// NewRecorder opens the SQLite archive, or returns a no-op recorder when
// none is configured or it cannot be opened.
func NewRecorder(cfg *config.Config, log zerolog.Logger) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
		log.Warn().Err(err).Msg("create sqlite dir failed, using noop")
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// DefaultRequest is the configured default pair and period.
func DefaultRequest(cfg *config.Config) pipeline.Request {
	period, err := model.ParsePeriod(cfg.Defaults.Period)
	if err != nil {
		period = model.DefaultPeriod
	}
	return pipeline.Request{
		Symbol1: cfg.Defaults.Symbol1,
		Symbol2: cfg.Defaults.Symbol2,
		Period:  period,
	}
}

// Build wires fetcher, model, recorder and pipeline.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	fetcher, err := NewFetcher(cfg, log)
	if err != nil {
		return nil, err
	}
	chat, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rec := NewRecorder(cfg, log)

	log.Info().
		Str("data_source", fetcher.Name()).
		Str("llm_provider", cfg.LLM.Provider).
		Str("model", chat.Name()).
		Msg("components ready")

	return &App{
		Fetcher:  fetcher,
		Model:    chat,
		Recorder: rec,
		Pipeline: pipeline.New(collector.NewCollector(fetcher, log), advisor.New(chat, log), rec, log),
	}, nil
}

// Close releases the recorder.
func (a *App) Close() error {
	return a.Recorder.Close()
}
