package recorder

import (
	"time"

	"StockAdvisor/internal/model"
)

// ReportSummary is one archived report row.
type ReportSummary struct {
	ID          string
	GeneratedAt time.Time
	Period      model.Period
	Symbol1     string
	Symbol2     string
	Price1      model.Value
	Price2      model.Value
	Volatility1 float64
	Volatility2 float64
	Model       string
	Advice      string
}

// Recorder persists generated reports for later review.
type Recorder interface {
	RecordReport(rep *model.Report) error
	Recent(limit int) ([]ReportSummary, error)
	Close() error
}
