package collector

import (
	"context"
	"errors"
	"strings"

	"StockAdvisor/internal/model"
)

// ErrEmptySymbol is returned when a blank ticker symbol is requested.
var ErrEmptySymbol = errors.New("empty symbol")

// Fetcher defines the interface for fetching market data.
//
// An unknown symbol is not an error: it yields an empty series and
// valuation metrics that are all NotAvailable.
type Fetcher interface {
	FetchPriceSeries(ctx context.Context, symbol string, period model.Period) (*model.PriceSeries, error)
	FetchValuation(ctx context.Context, symbol string) (*model.ValuationMetrics, error)
	Name() string
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", ErrEmptySymbol
	}
	return s, nil
}

func positive(v float64) model.Value {
	if v > 0 {
		return model.Available(v)
	}
	return model.NotAvailable
}
