package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockUntilCleanup(t *testing.T) func() (int, error) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	return func() (int, error) {
		<-release
		return 1, nil
	}
}

func TestWithin_ReturnsResult(t *testing.T) {
	v, err := within(context.Background(), time.Second, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	boom := errors.New("boom")
	_, err = within(context.Background(), time.Second, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestWithin_TimesOut(t *testing.T) {
	start := time.Now()
	v, err := within(context.Background(), 20*time.Millisecond, blockUntilCleanup(t))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, v)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWithin_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := within(ctx, time.Minute, blockUntilCleanup(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithin_ZeroTimeoutUsesContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := within(ctx, 0, blockUntilCleanup(t))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestYFinanceFetcher_TimeoutIsNotNoData(t *testing.T) {
	assert.False(t, isNoData(context.DeadlineExceeded))
	assert.True(t, isNoData(errors.New("No data found, symbol may be delisted")))
}

func TestYFinanceFetcher_CancelledContext(t *testing.T) {
	f := NewYFinanceFetcher(5*time.Second, zerolog.Nop())
	assert.Equal(t, 5*time.Second, f.Timeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.FetchPriceSeries(ctx, "AAPL", "1mo")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = f.FetchValuation(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}
