package collector

import (
	"context"
	"sync"
	"time"

	"StockAdvisor/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without an entry in Series yield an empty series, as an unknown
// ticker would from a live provider. With Generate set, such symbols get
// synthetic bars derived from BasePrice instead.
type MockFetcher struct {
	Series     map[string][]model.OHLCV
	Valuations map[string]model.ValuationMetrics
	Generate   bool
	BasePrice  float64
	Now        func() time.Time
	Err        error

	// With Record set, "price:SYM" and "valuation:SYM" are logged in
	// request order for CallLog.
	Record bool

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) record(call string) {
	if !m.Record {
		return
	}
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

// CallLog returns a copy of the recorded calls.
func (m *MockFetcher) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MockFetcher) FetchPriceSeries(_ context.Context, symbol string, period model.Period) (*model.PriceSeries, error) {
	m.record("price:" + symbol)
	if m.Err != nil {
		return nil, m.Err
	}
	series := &model.PriceSeries{Symbol: symbol, Period: period, FetchedAt: m.now()}
	if bars, ok := m.Series[symbol]; ok {
		series.Bars = append([]model.OHLCV(nil), bars...)
		return series, nil
	}
	if m.Generate {
		base := m.BasePrice
		if base == 0 {
			base = 100
		}
		series.Bars = generateMockBars(base+float64(len(symbol)), 22, m.now())
	}
	return series, nil
}

func (m *MockFetcher) FetchValuation(_ context.Context, symbol string) (*model.ValuationMetrics, error) {
	m.record("valuation:" + symbol)
	if m.Err != nil {
		return nil, m.Err
	}
	if v, ok := m.Valuations[symbol]; ok {
		v.Symbol = symbol
		return &v, nil
	}
	if m.Generate {
		return &model.ValuationMetrics{
			Symbol:    symbol,
			PERatio:   model.Available(25),
			PBRatio:   model.Available(8),
			MarketCap: model.Available(1e12),
		}, nil
	}
	return model.UnavailableValuation(symbol), nil
}

func generateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		// alternate around a gentle trend so volatility is non-zero
		wiggle := 0.004
		if i%2 == 1 {
			wiggle = -wiggle
		}
		p := basePrice * (1 + float64(i-count/2)*0.001 + wiggle)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
