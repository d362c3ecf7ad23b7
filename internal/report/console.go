package report

import (
	"fmt"
	"io"
	"strings"

	"StockAdvisor/internal/model"
)

// PrintReport writes the comparison, risk and advice sections as console text.
func PrintReport(w io.Writer, rep *model.Report) error {
	var b strings.Builder

	b.WriteString("\nStock Comparison Table\n")
	b.WriteString(RenderTable(rep.Table))
	b.WriteString("\n\nValuation Metrics\n")
	b.WriteString(RenderValuationTable(&rep.Stocks[0].Valuation, &rep.Stocks[1].Valuation))

	b.WriteString("\n\nRisk & Volatility Analysis\n")
	for _, s := range rep.Stocks {
		fmt.Fprintf(&b, "  %-8s volatility %.6f (%d bars, %s)\n", s.Symbol, s.Volatility, len(s.Series.Bars), rep.Period)
	}

	b.WriteString("\nInvestment Advice:\n\n")
	b.WriteString(strings.TrimSpace(rep.Advice))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
