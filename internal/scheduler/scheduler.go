package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockAdvisor/internal/model"
	"StockAdvisor/internal/notifier"
	"StockAdvisor/internal/pipeline"
	"StockAdvisor/internal/recorder"
)

// Runner produces one report.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*model.Report, error)
	Recent(limit int) ([]recorder.ReportSummary, error)
}

// Sender delivers a formatted message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs periodic reports and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Notifier Sender
	Default  pipeline.Request
	Ctx      context.Context

	log zerolog.Logger
}

// NewScheduler creates a new Scheduler. def is the pair used by scheduled runs.
func NewScheduler(ctx context.Context, runner Runner, sender Sender, def pipeline.Request, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Notifier: sender,
		Default:  def,
		Ctx:      ctx,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterReport schedules the default-pair report. expr has six fields,
// seconds first.
func (s *Scheduler) RegisterReport(expr string) error {
	if _, err := s.Cron.AddFunc(expr, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	s.log.Info().Str("cron", expr).
		Str("symbol1", s.Default.Symbol1).
		Str("symbol2", s.Default.Symbol2).
		Msg("report task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunReportNow executes the scheduled task immediately.
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) reportTask() {
	s.log.Info().Msg("running scheduled report")
	s.trySend(s.runReport(s.Default))
}

func (s *Scheduler) runReport(req pipeline.Request) string {
	rep, err := s.Runner.Run(s.Ctx, req)
	if err != nil {
		s.log.Error().Err(err).Str("symbol1", req.Symbol1).Str("symbol2", req.Symbol2).Msg("report failed")
		return notifier.FormatError(req.Symbol1, req.Symbol2, err)
	}
	return notifier.FormatReport(rep)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}

	switch strings.ToLower(fields[0]) {
	case "/compare":
		req, err := parseCompare(fields[1:], s.Default.Period)
		if err != nil {
			return fmt.Sprintf("⚠️ %s\n\n%s", err, notifier.FormatHelp())
		}
		return s.runReport(req)
	case "/report":
		return s.runReport(s.Default)
	case "/recent":
		return s.recent()
	default:
		return notifier.FormatHelp()
	}
}

func parseCompare(args []string, def model.Period) (pipeline.Request, error) {
	if len(args) < 2 || len(args) > 3 {
		return pipeline.Request{}, fmt.Errorf("usage: /compare SYMBOL1 SYMBOL2 [period]")
	}
	req := pipeline.Request{
		Symbol1: strings.ToUpper(args[0]),
		Symbol2: strings.ToUpper(args[1]),
		Period:  def,
	}
	if len(args) == 3 {
		p, err := model.ParsePeriod(args[2])
		if err != nil {
			return pipeline.Request{}, err
		}
		req.Period = p
	}
	return req, nil
}

func (s *Scheduler) recent() string {
	items, err := s.Runner.Recent(5)
	if err != nil {
		s.log.Error().Err(err).Msg("list recent reports")
		return "❌ could not list recent reports"
	}
	if len(items) == 0 {
		return "No reports recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent reports</b>\n")
	for _, it := range items {
		b.WriteString(fmt.Sprintf("• %s %s vs %s (%s): %s / %s\n",
			it.GeneratedAt.Format("2006-01-02 15:04"), it.Symbol1, it.Symbol2, it.Period, it.Price1, it.Price2))
	}
	return b.String()
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
