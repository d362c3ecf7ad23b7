package report

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"StockAdvisor/internal/calculator"
	"StockAdvisor/internal/model"
)

// Chart file names written by SaveCharts.
const (
	VolatilityChartFile   = "volatility.png"
	PriceHistoryChartFile = "price_history.png"
)

var (
	seriesColors = [2]color.Color{
		color.RGBA{R: 31, G: 119, B: 180, A: 255}, // blue
		color.RGBA{R: 255, G: 127, B: 14, A: 255}, // orange
	}

	volatilitySize   = [2]vg.Length{6 * vg.Inch, 4.5 * vg.Inch}
	priceHistorySize = [2]vg.Length{14 * vg.Inch, 6 * vg.Inch}
)

// VolatilityChart draws one bar per symbol with its return volatility.
func VolatilityChart(a, b *model.PriceSeries) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Stock Volatility Analysis"
	p.Y.Label.Text = "Volatility (Standard Deviation)"

	for i, s := range []*model.PriceSeries{a, b} {
		bar, err := plotter.NewBarChart(plotter.Values{calculator.Volatility(s)}, vg.Points(60))
		if err != nil {
			return nil, fmt.Errorf("volatility bar %s: %w", symbolOf(s), err)
		}
		bar.Color = seriesColors[i]
		bar.LineStyle.Width = 0
		bar.XMin = float64(i)
		p.Add(bar)
	}
	p.NominalX(symbolOf(a), symbolOf(b))
	p.Y.Min = 0
	return p, nil
}

// PriceHistoryChart draws the closing price of both symbols over time.
// Series without data are left out of the plot.
func PriceHistoryChart(a, b *model.PriceSeries) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Stock Price Comparison"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Closing Price"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	for i, s := range []*model.PriceSeries{a, b} {
		if s.Empty() {
			continue
		}
		pts := make(plotter.XYs, len(s.Bars))
		for j, bar := range s.Bars {
			pts[j].X = float64(bar.Time.Unix())
			pts[j].Y = bar.Close
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("price line %s: %w", s.Symbol, err)
		}
		line.LineStyle.Color = seriesColors[i]
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Symbol, line)
	}
	return p, nil
}

// EncodeChart renders p in the given format ("png", "svg", ...).
func EncodeChart(p *plot.Plot, width, height vg.Length, format string) ([]byte, error) {
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return nil, fmt.Errorf("chart writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Charts holds both rendered figures.
type Charts struct {
	Volatility   []byte
	PriceHistory []byte
}

// RenderCharts builds and encodes both figures for a pair of series.
func RenderCharts(a, b *model.PriceSeries, format string) (*Charts, error) {
	vp, err := VolatilityChart(a, b)
	if err != nil {
		return nil, err
	}
	hp, err := PriceHistoryChart(a, b)
	if err != nil {
		return nil, err
	}
	out := &Charts{}
	if out.Volatility, err = EncodeChart(vp, volatilitySize[0], volatilitySize[1], format); err != nil {
		return nil, err
	}
	if out.PriceHistory, err = EncodeChart(hp, priceHistorySize[0], priceHistorySize[1], format); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveCharts writes both figures as PNG files into dir and returns their paths.
func SaveCharts(dir string, a, b *model.PriceSeries) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}
	charts, err := RenderCharts(a, b, "png")
	if err != nil {
		return nil, err
	}
	files := []struct {
		name string
		data []byte
	}{
		{VolatilityChartFile, charts.Volatility},
		{PriceHistoryChartFile, charts.PriceHistory},
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
