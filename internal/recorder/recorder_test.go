package recorder

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAdvisor/internal/model"
)

func sampleReport(id string, at time.Time) *model.Report {
	return &model.Report{
		ID:          id,
		Period:      model.Period3Month,
		GeneratedAt: at,
		Stocks: [2]model.StockSnapshot{
			{
				Symbol:     "AAPL",
				Volatility: 0.012,
				Valuation:  model.ValuationMetrics{Symbol: "AAPL", PERatio: model.Available(34.1)},
			},
			{Symbol: "ZZZZ"},
		},
		Table: [2]model.ComparisonRow{
			{Symbol: "AAPL", LatestPrice: model.Available(227.63)},
			{Symbol: "ZZZZ", LatestPrice: model.NotAvailable},
		},
		Prompt: "prompt",
		Advice: "Hold.",
		Model:  "gpt-4",
	}
}

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "reports.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLiteRecorder_RecordAndRecent(t *testing.T) {
	r := openTemp(t)
	base := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordReport(sampleReport("first", base)))
	require.NoError(t, r.RecordReport(sampleReport("second", base.Add(time.Hour))))

	got, err := r.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "second", got[0].ID)
	assert.Equal(t, "first", got[1].ID)
	assert.Equal(t, base.Add(time.Hour), got[0].GeneratedAt)
	assert.Equal(t, model.Period3Month, got[0].Period)
	assert.Equal(t, "AAPL", got[0].Symbol1)
	assert.Equal(t, "ZZZZ", got[0].Symbol2)
	assert.Equal(t, model.Available(227.63), got[0].Price1)
	assert.Equal(t, model.NotAvailable, got[0].Price2)
	assert.InDelta(t, 0.012, got[0].Volatility1, 1e-12)
	assert.Equal(t, "gpt-4", got[0].Model)
	assert.Equal(t, "Hold.", got[0].Advice)
}

func TestSQLiteRecorder_NotAvailableStoredAsNull(t *testing.T) {
	r := openTemp(t)
	require.NoError(t, r.RecordReport(sampleReport("x", time.Now())))

	var pe2, pb1 sql.NullFloat64
	require.NoError(t, r.db.QueryRow(`SELECT pe2, pb1 FROM reports WHERE id = ?`, "x").Scan(&pe2, &pb1))
	assert.False(t, pe2.Valid)
	assert.False(t, pb1.Valid)
}

func TestSQLiteRecorder_DuplicateID(t *testing.T) {
	r := openTemp(t)
	require.NoError(t, r.RecordReport(sampleReport("dup", time.Now())))
	assert.Error(t, r.RecordReport(sampleReport("dup", time.Now())))
}

func TestSQLiteRecorder_RecentLimit(t *testing.T) {
	r := openTemp(t)
	base := time.Now()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.RecordReport(sampleReport(id, base.Add(time.Duration(i)*time.Minute))))
	}

	got, err := r.Recent(2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSQLiteRecorder_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	r, err := NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, r.RecordReport(sampleReport("persisted", time.Now())))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Recent(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "persisted", got[0].ID)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordReport(sampleReport("x", time.Now())))
	got, err := r.Recent(5)
	assert.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, r.Close())
}
