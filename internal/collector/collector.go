package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"StockAdvisor/internal/calculator"
	"StockAdvisor/internal/model"
)

// Collector orchestrates data fetching and metric computation for a pair of symbols.
type Collector struct {
	Fetcher Fetcher
	log     zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log zerolog.Logger) *Collector {
	return &Collector{Fetcher: fetcher, log: log.With().Str("component", "collector").Logger()}
}

// CollectPair fetches both price series, then both valuations, in that
// order, and derives latest close and volatility for each symbol.
func (c *Collector) CollectPair(ctx context.Context, symbol1, symbol2 string, period model.Period) ([2]model.StockSnapshot, error) {
	var out [2]model.StockSnapshot

	symbols := [2]string{}
	for i, raw := range [2]string{symbol1, symbol2} {
		s, err := NormalizeSymbol(raw)
		if err != nil {
			return out, fmt.Errorf("symbol %d: %w", i+1, err)
		}
		symbols[i] = s
	}

	var series [2]*model.PriceSeries
	for i, s := range symbols {
		ps, err := c.Fetcher.FetchPriceSeries(ctx, s, period)
		if err != nil {
			return out, fmt.Errorf("fetch price series %s: %w", s, err)
		}
		if ps.Empty() {
			c.log.Warn().Str("symbol", s).Str("period", string(period)).Msg("no price data")
		}
		series[i] = ps
	}

	var valuations [2]*model.ValuationMetrics
	for i, s := range symbols {
		vm, err := c.Fetcher.FetchValuation(ctx, s)
		if err != nil {
			return out, fmt.Errorf("fetch valuation %s: %w", s, err)
		}
		valuations[i] = vm
	}

	for i, s := range symbols {
		out[i] = model.StockSnapshot{
			Symbol:      s,
			Series:      *series[i],
			Valuation:   *valuations[i],
			LatestClose: calculator.LatestClose(series[i]),
			Volatility:  calculator.Volatility(series[i]),
		}
		c.log.Debug().
			Str("symbol", s).
			Int("bars", len(series[i].Bars)).
			Str("latest_close", out[i].LatestClose.String()).
			Float64("volatility", out[i].Volatility).
			Msg("collected")
	}
	return out, nil
}
