package notifier

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"StockAdvisor/internal/model"
)

// maxMessageLen is the Telegram limit for one message.
const maxMessageLen = 4096

// FormatReport renders a comparison report as a Telegram HTML message.
func FormatReport(rep *model.Report) string {
	var b strings.Builder
	s1, s2 := rep.Symbols()

	b.WriteString(fmt.Sprintf("📊 <b>%s vs %s</b> | %s | %s\n\n",
		html.EscapeString(s1), html.EscapeString(s2), rep.Period, rep.GeneratedAt.Format("2006-01-02 15:04")))

	b.WriteString("💵 <b>Latest Price</b>\n")
	for _, row := range rep.Table {
		b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(row.Symbol), row.LatestPrice))
	}

	b.WriteString("\n📉 <b>Volatility</b>\n")
	for _, s := range rep.Stocks {
		b.WriteString(fmt.Sprintf("  %s: %.4f\n", html.EscapeString(s.Symbol), s.Volatility))
	}

	b.WriteString("\n📋 <b>Valuation</b>\n")
	for _, s := range rep.Stocks {
		b.WriteString(fmt.Sprintf("  %s: P/E %s | P/B %s\n",
			html.EscapeString(s.Symbol), s.Valuation.PERatio, s.Valuation.PBRatio))
	}

	b.WriteString("\n🤖 <b>Investment Advice</b>\n")
	budget := maxMessageLen - utf8.RuneCountInString(b.String())
	b.WriteString(escapeWithin(strings.TrimSpace(rep.Advice), budget))
	return b.String()
}

// FormatError renders a failed run.
func FormatError(symbol1, symbol2 string, err error) string {
	return fmt.Sprintf("❌ Report %s vs %s failed: %s",
		html.EscapeString(symbol1), html.EscapeString(symbol2), html.EscapeString(err.Error()))
}

// FormatHelp lists the supported chat commands.
func FormatHelp() string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	b.WriteString("• /compare SYMBOL1 SYMBOL2 [period]\n")
	b.WriteString("• /report (default pair)\n")
	b.WriteString("• /recent\n")
	periods := make([]string, len(model.SelectablePeriods))
	for i, p := range model.SelectablePeriods {
		periods[i] = string(p)
	}
	b.WriteString(fmt.Sprintf("Periods: %s", strings.Join(periods, ", ")))
	return b.String()
}

// escapeWithin HTML-escapes s into at most budget runes. When it does not fit
// it stops at a whole rune, never inside an entity, and ends with "…".
func escapeWithin(s string, budget int) string {
	escaped := html.EscapeString(s)
	if utf8.RuneCountInString(escaped) <= budget {
		return escaped
	}
	if budget < 1 {
		return ""
	}

	var b strings.Builder
	used := 0
	for _, r := range s {
		piece := html.EscapeString(string(r))
		n := utf8.RuneCountInString(piece)
		if used+n > budget-1 {
			break
		}
		b.WriteString(piece)
		used += n
	}
	b.WriteString("…")
	return b.String()
}
