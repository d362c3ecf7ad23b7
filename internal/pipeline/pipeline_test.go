package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAdvisor/internal/advisor"
	"StockAdvisor/internal/collector"
	"StockAdvisor/internal/model"
	"StockAdvisor/internal/recorder"
)

type fakeModel struct {
	reply string
	err   error
	calls int
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type failingRecorder struct {
	recorder.NoopRecorder
	calls int
}

func (f *failingRecorder) RecordReport(_ *model.Report) error {
	f.calls++
	return errors.New("disk full")
}

func bars(closes ...float64) []model.OHLCV {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	out := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		out[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: c}
	}
	return out
}

func newMock() *collector.MockFetcher {
	return &collector.MockFetcher{
		Record: true,
		Series: map[string][]model.OHLCV{
			"AAPL": bars(225.1, 226.4, 227.63),
			"MSFT": bars(410, 412.2, 415.5),
		},
		Valuations: map[string]model.ValuationMetrics{
			"AAPL": {PERatio: model.Available(34.1), PBRatio: model.Available(51.2)},
			"MSFT": {PERatio: model.Available(36.78), PBRatio: model.Available(12.4)},
		},
		Now: func() time.Time { return time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC) },
	}
}

func newPipeline(f collector.Fetcher, m advisor.ChatModel, rec recorder.Recorder) *Pipeline {
	p := New(collector.NewCollector(f, zerolog.Nop()), advisor.New(m, zerolog.Nop()), rec, zerolog.Nop())
	p.Now = func() time.Time { return time.Date(2025, 3, 6, 12, 0, 0, 0, time.UTC) }
	p.NewID = func() string { return "report-1" }
	return p
}

func TestRun_LatestPricesMatchLastClose(t *testing.T) {
	mock := newMock()
	p := newPipeline(mock, &fakeModel{reply: "Hold both."}, nil)

	rep, err := p.Run(context.Background(), Request{Symbol1: "AAPL", Symbol2: "MSFT", Period: model.Period1Month})
	require.NoError(t, err)

	assert.Equal(t, "report-1", rep.ID)
	assert.Equal(t, model.Period1Month, rep.Period)
	assert.Equal(t, model.ComparisonRow{Symbol: "AAPL", LatestPrice: model.Available(227.63)}, rep.Table[0])
	assert.Equal(t, model.ComparisonRow{Symbol: "MSFT", LatestPrice: model.Available(415.5)}, rep.Table[1])
	assert.Equal(t, "Hold both.", rep.Advice)
	assert.Equal(t, "fake", rep.Model)

	for _, want := range []string{"AAPL", "MSFT", "$227.63", "$415.5", "P/E Ratio: 34.1\n", "36.78", "P/B Ratio: 51.2\n", "P/B Ratio: 12.4\n"} {
		assert.Contains(t, rep.Prompt, want)
	}
	assert.Equal(t, []string{"price:AAPL", "price:MSFT", "valuation:AAPL", "valuation:MSFT"}, mock.CallLog())
}

func TestRun_Deterministic(t *testing.T) {
	p := newPipeline(newMock(), &fakeModel{reply: "ok"}, nil)
	req := Request{Symbol1: "AAPL", Symbol2: "MSFT", Period: model.Period1Month}

	first, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Table, second.Table)
	assert.Equal(t, first.Prompt, second.Prompt)
}

func TestRun_DefaultPeriod(t *testing.T) {
	p := newPipeline(newMock(), &fakeModel{reply: "ok"}, nil)

	rep, err := p.Run(context.Background(), Request{Symbol1: "AAPL", Symbol2: "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPeriod, rep.Period)
}

func TestRun_UnknownSymbolStillAdvises(t *testing.T) {
	fm := &fakeModel{reply: "Insufficient data for ZZZZ."}
	p := newPipeline(newMock(), fm, nil)

	rep, err := p.Run(context.Background(), Request{Symbol1: "AAPL", Symbol2: "ZZZZ"})
	require.NoError(t, err)

	assert.Len(t, rep.Table, 2)
	assert.False(t, rep.Table[1].LatestPrice.Valid())
	assert.Equal(t, 0.0, rep.Stocks[1].Volatility)
	assert.Contains(t, rep.Prompt, "ZZZZ Current Price: N/A")
	assert.Equal(t, 1, fm.calls)
}

func TestRun_ProviderFailureSkipsAdvice(t *testing.T) {
	mock := newMock()
	mock.Err = errors.New("connection refused")
	fm := &fakeModel{reply: "unused"}

	_, err := newPipeline(mock, fm, nil).Run(context.Background(), Request{Symbol1: "AAPL", Symbol2: "MSFT"})
	require.ErrorIs(t, err, mock.Err)
	assert.Equal(t, 0, fm.calls)
}

func TestRun_AdviceFailureIsFatal(t *testing.T) {
	boom := errors.New("rate limited")
	rec := &failingRecorder{}

	_, err := newPipeline(newMock(), &fakeModel{err: boom}, rec).Run(context.Background(), Request{Symbol1: "AAPL", Symbol2: "MSFT"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, rec.calls)
}

func TestRun_ArchiveFailureIsNotFatal(t *testing.T) {
	rec := &failingRecorder{}

	rep, err := newPipeline(newMock(), &fakeModel{reply: "ok"}, rec).Run(context.Background(), Request{Symbol1: "AAPL", Symbol2: "MSFT"})
	require.NoError(t, err)
	assert.NotNil(t, rep)
	assert.Equal(t, 1, rec.calls)
}

func TestRun_EmptySymbol(t *testing.T) {
	_, err := newPipeline(newMock(), &fakeModel{reply: "ok"}, nil).Run(context.Background(), Request{Symbol1: "", Symbol2: "MSFT"})
	assert.ErrorIs(t, err, collector.ErrEmptySymbol)
}

func TestNew_GeneratesUUID(t *testing.T) {
	p := New(collector.NewCollector(newMock(), zerolog.Nop()), advisor.New(&fakeModel{reply: "ok"}, zerolog.Nop()), nil, zerolog.Nop())

	rep, err := p.Run(context.Background(), Request{Symbol1: "AAPL", Symbol2: "MSFT"})
	require.NoError(t, err)
	assert.Len(t, rep.ID, 36)
}
