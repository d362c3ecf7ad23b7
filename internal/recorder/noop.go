package recorder

import "StockAdvisor/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordReport(_ *model.Report) error   { return nil }
func (n *NoopRecorder) Recent(_ int) ([]ReportSummary, error) { return nil, nil }
func (n *NoopRecorder) Close() error                          { return nil }
