package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"StockAdvisor/internal/model"
)

// PercentChange returns the period-over-period fractional change of prices:
// (p[i]-p[i-1])/p[i-1]. Pairs whose previous price is zero are skipped.
func PercentChange(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	changes := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		changes = append(changes, (prices[i]-prices[i-1])/prices[i-1])
	}
	return changes
}

// Volatility is the sample standard deviation (n-1 denominator) of the
// percent change of closes. It is 0 when fewer than two changes exist,
// which covers the empty series.
func Volatility(series *model.PriceSeries) float64 {
	changes := PercentChange(series.Closes())
	if len(changes) < 2 {
		return 0
	}
	sd := stat.StdDev(changes, nil)
	if math.IsNaN(sd) || math.IsInf(sd, 0) {
		return 0
	}
	return sd
}
