package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/client"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"

	"StockAdvisor/internal/model"
)

// YFinanceFetcher implements Fetcher using the go-yfinance library, which
// handles Yahoo's cookie and crumb negotiation.
type YFinanceFetcher struct {
	// Timeout bounds each history or info call; zero means only ctx applies.
	Timeout time.Duration
	log     zerolog.Logger
}

// NewYFinanceFetcher creates a go-yfinance backed fetcher.
func NewYFinanceFetcher(timeout time.Duration, log zerolog.Logger) *YFinanceFetcher {
	return &YFinanceFetcher{Timeout: timeout, log: log.With().Str("fetcher", "yfinance").Logger()}
}

func (f *YFinanceFetcher) Name() string { return "yfinance" }

// within runs fn bounded by ctx and timeout. go-yfinance takes no context,
// so a call that overruns is abandoned and finishes in the background.
func within[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// open creates a ticker whose transport timeout matches f.Timeout, rounded
// up to whole seconds. The returned func releases it.
func (f *YFinanceFetcher) open(symbol string) (*ticker.Ticker, func(), error) {
	if f.Timeout <= 0 {
		t, err := ticker.New(symbol)
		if err != nil {
			return nil, nil, err
		}
		return t, t.Close, nil
	}
	secs := int((f.Timeout + time.Second - 1) / time.Second)
	c, err := client.New(client.WithTimeout(secs))
	if err != nil {
		return nil, nil, err
	}
	t, err := ticker.New(symbol, ticker.WithClient(c))
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return t, func() { t.Close(); c.Close() }, nil
}

// noDataMarkers are fragments of provider errors that mean "nothing for this
// symbol" rather than a transport or auth failure.
var noDataMarkers = []string{
	"no data",
	"not found",
	"delisted",
	"no price data",
	"no timezone",
	"invalid symbol",
	"404",
}

func isNoData(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, m := range noDataMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// FetchPriceSeries returns auto-adjusted daily bars for symbol over period.
func (f *YFinanceFetcher) FetchPriceSeries(ctx context.Context, symbol string, period model.Period) (*model.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	series := &model.PriceSeries{Symbol: symbol, Period: period, FetchedAt: time.Now()}

	bars, err := within(ctx, f.Timeout, func() ([]models.Bar, error) {
		t, release, err := f.open(symbol)
		if err != nil {
			return nil, err
		}
		defer release()
		return t.History(models.HistoryParams{
			Period:     string(period),
			Interval:   "1d",
			AutoAdjust: true,
		})
	})
	if err != nil {
		if isNoData(err) {
			f.log.Warn().Err(err).Str("symbol", symbol).Msg("no price data, returning empty series")
			return series, nil
		}
		return nil, fmt.Errorf("yfinance history %s: %w", symbol, err)
	}

	series.Bars = make([]model.OHLCV, 0, len(bars))
	for _, bar := range bars {
		series.Bars = append(series.Bars, model.OHLCV{
			Time:   bar.Date,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: float64(bar.Volume),
		})
	}
	return series, nil
}

// FetchValuation reads trailing P/E, price-to-book and market cap from the
// ticker info. Non-positive fields are reported as NotAvailable.
func (f *YFinanceFetcher) FetchValuation(ctx context.Context, symbol string) (*model.ValuationMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := within(ctx, f.Timeout, func() (*models.Info, error) {
		t, release, err := f.open(symbol)
		if err != nil {
			return nil, err
		}
		defer release()
		return t.Info()
	})
	if err != nil {
		if isNoData(err) {
			f.log.Warn().Err(err).Str("symbol", symbol).Msg("no valuation data")
			return model.UnavailableValuation(symbol), nil
		}
		return nil, fmt.Errorf("yfinance info %s: %w", symbol, err)
	}
	if info == nil {
		return model.UnavailableValuation(symbol), nil
	}

	return &model.ValuationMetrics{
		Symbol:    symbol,
		PERatio:   positive(info.TrailingPE),
		PBRatio:   positive(info.PriceToBook),
		MarketCap: positive(float64(info.MarketCap)),
	}, nil
}
