package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Period is a lookback range understood by the market-data provider.
type Period string

const (
	Period1Day   Period = "1d"
	Period5Day   Period = "5d"
	Period1Month Period = "1mo"
	Period3Month Period = "3mo"
	Period6Month Period = "6mo"
	Period1Year  Period = "1y"
	Period2Year  Period = "2y"
	Period5Year  Period = "5y"
	Period10Year Period = "10y"
	PeriodYTD    Period = "ytd"
	PeriodMax    Period = "max"
)

// DefaultPeriod is used when no period is given.
const DefaultPeriod = Period1Month

// SelectablePeriods is the fixed set offered by the dashboard, in display order.
var SelectablePeriods = []Period{Period1Month, Period3Month, Period6Month, Period1Year, Period5Year}

var knownPeriods = map[Period]bool{
	Period1Day: true, Period5Day: true, Period1Month: true, Period3Month: true,
	Period6Month: true, Period1Year: true, Period2Year: true, Period5Year: true,
	Period10Year: true, PeriodYTD: true, PeriodMax: true,
}

// ErrUnknownPeriod is returned by ParsePeriod for ranges the provider does not accept.
var ErrUnknownPeriod = errors.New("unknown period")

// ParsePeriod validates s as a provider range. An empty string yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultPeriod, nil
	}
	p := Period(s)
	if !knownPeriods[p] {
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
	return p, nil
}

func (p Period) String() string { return string(p) }

// PriceSeries holds the bar history of one symbol over a period.
// Bars are ascending by time and may be empty when the provider has no data.
type PriceSeries struct {
	Symbol    string    `json:"symbol"`
	Period    Period    `json:"period"`
	Bars      []OHLCV   `json:"bars"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Empty reports whether the series carries no bars. A nil series is empty.
func (s *PriceSeries) Empty() bool {
	return s == nil || len(s.Bars) == 0
}

// Closes returns the close column in bar order.
func (s *PriceSeries) Closes() []float64 {
	if s.Empty() {
		return nil
	}
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar.
func (s *PriceSeries) Last() (OHLCV, bool) {
	if s.Empty() {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
