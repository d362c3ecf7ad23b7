package model

import "time"

// ComparisonRow is one line of the latest-price comparison table.
type ComparisonRow struct {
	Symbol      string `json:"symbol"`
	LatestPrice Value  `json:"latest_price"`
}

// StockSnapshot bundles everything fetched and derived for one symbol.
type StockSnapshot struct {
	Symbol      string           `json:"symbol"`
	Series      PriceSeries      `json:"series"`
	Valuation   ValuationMetrics `json:"valuation"`
	LatestClose Value            `json:"latest_close"`
	Volatility  float64          `json:"volatility"`
}

// Report is the result of one pipeline run over a symbol pair.
type Report struct {
	ID          string           `json:"id"`
	Period      Period           `json:"period"`
	GeneratedAt time.Time        `json:"generated_at"`
	Stocks      [2]StockSnapshot `json:"stocks"`
	Table       [2]ComparisonRow `json:"table"`
	Prompt      string           `json:"prompt"`
	Advice      string           `json:"advice"`
	Model       string           `json:"model"`
}

// Symbols returns the compared symbols in order.
func (r *Report) Symbols() (string, string) {
	return r.Stocks[0].Symbol, r.Stocks[1].Symbol
}
