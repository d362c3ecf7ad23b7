package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"StockAdvisor/internal/calculator"
	"StockAdvisor/internal/model"
)

// BuildComparison returns the latest-price rows for two series. It always
// yields exactly two rows; a series without data gets NotAvailable.
func BuildComparison(a, b *model.PriceSeries) [2]model.ComparisonRow {
	return [2]model.ComparisonRow{
		{Symbol: symbolOf(a), LatestPrice: calculator.LatestClose(a)},
		{Symbol: symbolOf(b), LatestPrice: calculator.LatestClose(b)},
	}
}

func symbolOf(s *model.PriceSeries) string {
	if s == nil {
		return ""
	}
	return s.Symbol
}

// RenderTable draws the comparison rows as a console table.
func RenderTable(rows [2]model.ComparisonRow) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Stock", "Latest Price")
	for _, r := range rows {
		t.Row(r.Symbol, r.LatestPrice.String())
	}
	return t.String()
}

// RenderValuationTable draws P/E, P/B and market cap side by side.
func RenderValuationTable(a, b *model.ValuationMetrics) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Stock", model.MetricPERatio, model.MetricPBRatio, model.MetricMarketCap)
	for _, m := range []*model.ValuationMetrics{a, b} {
		if m == nil {
			continue
		}
		t.Row(m.Symbol, m.PERatio.String(), m.PBRatio.String(), FormatMarketCap(m.MarketCap))
	}
	return t.String()
}

// FormatMarketCap renders a capitalisation with an SI suffix, e.g. "3.4 T".
func FormatMarketCap(v model.Value) string {
	f, ok := v.Float64()
	if !ok {
		return model.NotAvailableText
	}
	return humanize.SIWithDigits(f, 2, "")
}
