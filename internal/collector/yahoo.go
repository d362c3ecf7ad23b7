package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"StockAdvisor/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher against the Yahoo Finance public HTTP API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	log       zerolog.Logger
}

// NewYahooFetcher creates a Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(baseURL, proxyURL string, timeout time.Duration, log zerolog.Logger) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	return &YahooFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		log: log.With().Str("fetcher", "yahoo").Logger(),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooError is the error envelope shared by the chart and quoteSummary APIs.
type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

// yahooRaw is Yahoo's {"raw": 1.23, "fmt": "1.23"} number wrapper.
type yahooRaw struct {
	Raw *float64 `json:"raw"`
}

func (r *yahooRaw) value() float64 {
	if r == nil || r.Raw == nil {
		return 0
	}
	return *r.Raw
}

type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail *struct {
				TrailingPE *yahooRaw `json:"trailingPE"`
				MarketCap  *yahooRaw `json:"marketCap"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				PriceToBook *yahooRaw `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
			Price *struct {
				MarketCap *yahooRaw `json:"marketCap"`
			} `json:"price"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// get performs a GET and returns the body. A 404 is reported as found=false
// so that unknown symbols surface as "no data" rather than as a failure.
func (f *YahooFetcher) get(ctx context.Context, u string) (body []byte, found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return body, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, true, nil
}

// FetchPriceSeries returns daily bars for the symbol over period.
func (f *YahooFetcher) FetchPriceSeries(ctx context.Context, symbol string, period model.Period) (*model.PriceSeries, error) {
	series := &model.PriceSeries{Symbol: symbol, Period: period, FetchedAt: time.Now()}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), url.QueryEscape(string(period)))
	body, found, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if !found {
		f.log.Warn().Str("symbol", symbol).Msg("symbol not found, returning empty series")
		return series, nil
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		f.log.Warn().Str("symbol", symbol).Str("code", chart.Chart.Error.Code).
			Msg(chart.Chart.Error.Description)
		return series, nil
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return series, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	at := func(col []interface{}, i int) float64 {
		if i < len(col) {
			return toFloat(col[i])
		}
		return 0
	}
	for i, ts := range result.Timestamp {
		o := at(quote.Open, i)
		h := at(quote.High, i)
		l := at(quote.Low, i)
		c := at(quote.Close, i)
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	series.Bars = bars
	return series, nil
}

// FetchValuation reads P/E, P/B and market cap from the quoteSummary API.
func (f *YahooFetcher) FetchValuation(ctx context.Context, symbol string) (*model.ValuationMetrics, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=summaryDetail,defaultKeyStatistics,price",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)))
	body, found, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	if !found {
		return model.UnavailableValuation(symbol), nil
	}

	var summary yahooQuoteSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if summary.QuoteSummary.Error != nil || len(summary.QuoteSummary.Result) == 0 {
		return model.UnavailableValuation(symbol), nil
	}

	r := summary.QuoteSummary.Result[0]
	m := model.UnavailableValuation(symbol)
	if r.SummaryDetail != nil {
		m.PERatio = positive(r.SummaryDetail.TrailingPE.value())
		m.MarketCap = positive(r.SummaryDetail.MarketCap.value())
	}
	if r.DefaultKeyStatistics != nil {
		m.PBRatio = positive(r.DefaultKeyStatistics.PriceToBook.value())
	}
	if !m.MarketCap.Valid() && r.Price != nil {
		m.MarketCap = positive(r.Price.MarketCap.value())
	}
	return m, nil
}
