package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"StockAdvisor/internal/advisor"
	"StockAdvisor/internal/collector"
	"StockAdvisor/internal/model"
	"StockAdvisor/internal/recorder"
	"StockAdvisor/internal/report"
)

// Request names the pair and range of one run.
type Request struct {
	Symbol1 string
	Symbol2 string
	Period  model.Period
}

// Pipeline runs collection, metrics, presentation and advice in a fixed order.
// It keeps no state between runs.
type Pipeline struct {
	collector *collector.Collector
	advisor   *advisor.Advisor
	recorder  recorder.Recorder
	log       zerolog.Logger

	// Now and NewID are replaceable for deterministic tests.
	Now   func() time.Time
	NewID func() string
}

func New(c *collector.Collector, a *advisor.Advisor, rec recorder.Recorder, log zerolog.Logger) *Pipeline {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Pipeline{
		collector: c,
		advisor:   a,
		recorder:  rec,
		log:       log.With().Str("component", "pipeline").Logger(),
		Now:       time.Now,
		NewID:     uuid.NewString,
	}
}

// Run executes one comparison. Any provider failure aborts the run;
// an archive failure is only logged.
func (p *Pipeline) Run(ctx context.Context, req Request) (*model.Report, error) {
	period := req.Period
	if period == "" {
		period = model.DefaultPeriod
	}
	start := p.Now()

	stocks, err := p.collector.CollectPair(ctx, req.Symbol1, req.Symbol2, period)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}

	table := report.BuildComparison(&stocks[0].Series, &stocks[1].Series)

	adv, err := p.advisor.GenerateAdvice(ctx, advisor.AdviceRequest{
		Input: advisor.InputFromSnapshots(&stocks[0], &stocks[1]),
	})
	if err != nil {
		return nil, fmt.Errorf("advise: %w", err)
	}

	rep := &model.Report{
		ID:          p.NewID(),
		Period:      period,
		GeneratedAt: p.Now(),
		Stocks:      stocks,
		Table:       table,
		Prompt:      adv.Prompt,
		Advice:      adv.Text,
		Model:       adv.Model,
	}

	if err := p.recorder.RecordReport(rep); err != nil {
		p.log.Warn().Err(err).Str("report_id", rep.ID).Msg("failed to archive report")
	}

	p.log.Info().
		Str("report_id", rep.ID).
		Str("symbol1", stocks[0].Symbol).
		Str("symbol2", stocks[1].Symbol).
		Str("period", string(period)).
		Dur("elapsed", p.Now().Sub(start)).
		Msg("report generated")
	return rep, nil
}

// Recent lists archived reports, newest first.
func (p *Pipeline) Recent(limit int) ([]recorder.ReportSummary, error) {
	return p.recorder.Recent(limit)
}
