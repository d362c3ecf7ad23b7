package calculator

import "StockAdvisor/internal/model"

// LatestClose returns the close of the most recent bar, or NotAvailable for
// an empty series.
func LatestClose(series *model.PriceSeries) model.Value {
	last, ok := series.Last()
	if !ok {
		return model.NotAvailable
	}
	return model.Available(last.Close)
}
