package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// NotAvailableText is how a missing value is rendered in text and JSON.
const NotAvailableText = "N/A"

// Value is a number that may be explicitly not available.
// The zero Value is NotAvailable, which is distinct from an available 0.
type Value struct {
	v     float64
	valid bool
}

// NotAvailable marks a datum the provider did not supply.
var NotAvailable = Value{}

// Available wraps v as an available value.
func Available(v float64) Value {
	return Value{v: v, valid: true}
}

// Valid reports whether the value is available.
func (v Value) Valid() bool { return v.valid }

// Float64 returns the number and whether it is available.
func (v Value) Float64() (float64, bool) { return v.v, v.valid }

// String renders the value with two decimals, or N/A.
func (v Value) String() string {
	if !v.valid {
		return NotAvailableText
	}
	return decimal.NewFromFloat(v.v).StringFixed(2)
}

// Exact renders the value at full precision with no trailing zeros, or N/A.
func (v Value) Exact() string {
	if !v.valid {
		return NotAvailableText
	}
	return decimal.NewFromFloat(v.v).String()
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return json.Marshal(NotAvailableText)
	}
	return json.Marshal(v.v)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var f *float64
	if err := json.Unmarshal(data, &f); err != nil {
		// "N/A" and any other string decode as not available
		var s string
		if json.Unmarshal(data, &s) == nil {
			*v = NotAvailable
			return nil
		}
		return err
	}
	if f == nil {
		*v = NotAvailable
		return nil
	}
	*v = Available(*f)
	return nil
}

// Valuation metric names, as shown to users and the language model.
const (
	MetricPERatio   = "P/E Ratio"
	MetricPBRatio   = "P/B Ratio"
	MetricMarketCap = "Market Cap"
)

// ValuationMetrics holds the valuation ratios of one symbol.
type ValuationMetrics struct {
	Symbol    string `json:"symbol"`
	PERatio   Value  `json:"pe_ratio"`
	PBRatio   Value  `json:"pb_ratio"`
	MarketCap Value  `json:"market_cap"`
}

// UnavailableValuation returns metrics for symbol with every field NotAvailable.
func UnavailableValuation(symbol string) *ValuationMetrics {
	return &ValuationMetrics{Symbol: symbol}
}

// Get looks a metric up by its display name.
func (m *ValuationMetrics) Get(name string) Value {
	if m == nil {
		return NotAvailable
	}
	switch name {
	case MetricPERatio:
		return m.PERatio
	case MetricPBRatio:
		return m.PBRatio
	case MetricMarketCap:
		return m.MarketCap
	}
	return NotAvailable
}

// Map returns the metrics keyed by display name.
func (m *ValuationMetrics) Map() map[string]Value {
	return map[string]Value{
		MetricPERatio:   m.Get(MetricPERatio),
		MetricPBRatio:   m.Get(MetricPBRatio),
		MetricMarketCap: m.Get(MetricMarketCap),
	}
}
