package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockAdvisor/internal/model"
)

func newTestNotifier(srv *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "", zerolog.Nop())
	n.APIBase = srv.URL
	n.Client = srv.Client()
	n.RetryBase = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv).Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", payload["chat_id"])
	assert.Equal(t, "<b>hi</b>", payload["text"])
	assert.Equal(t, "HTML", payload["parse_mode"])
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok":false,"description":"chat not found"}`)
	}))
	defer srv.Close()

	err := newTestNotifier(srv).Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendWithRetry_RecoversAfterFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv).SendWithRetry(context.Background(), "x", 3))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestNotifier(srv).SendWithRetry(context.Background(), "x", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 attempts failed")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	n.RetryBase = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := n.SendWithRetry(ctx, "x", 3)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestStartPolling_DispatchesCommands(t *testing.T) {
	var (
		mu      sync.Mutex
		replies []string
		polled  int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if atomic.AddInt32(&polled, 1) == 1 {
				assert.Equal(t, "0", r.URL.Query().Get("offset"))
				_, _ = io.WriteString(w, `{"ok":true,"result":[
					{"update_id":7,"message":{"text":" /compare AAPL MSFT "}},
					{"update_id":8}
				]}`)
				return
			}
			assert.Equal(t, "9", r.URL.Query().Get("offset"))
			_, _ = io.WriteString(w, `{"ok":true,"result":[]}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var p map[string]string
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &p)
			mu.Lock()
			replies = append(replies, p["text"])
			mu.Unlock()
			_, _ = io.WriteString(w, `{"ok":true}`)
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var got []string
	go func() {
		newTestNotifier(srv).StartPolling(ctx, func(cmd string) string {
			got = append(got, cmd)
			return "reply to " + cmd
		})
		close(done)
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&polled) >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"/compare AAPL MSFT"}, got)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"reply to /compare AAPL MSFT"}, replies)
}

func sampleReport() *model.Report {
	return &model.Report{
		Period:      model.Period1Month,
		GeneratedAt: time.Date(2025, 3, 6, 9, 30, 0, 0, time.UTC),
		Stocks: [2]model.StockSnapshot{
			{Symbol: "AAPL", Volatility: 0.01234, Valuation: model.ValuationMetrics{PERatio: model.Available(34.1)}},
			{Symbol: "MSFT", Volatility: 0.02},
		},
		Table: [2]model.ComparisonRow{
			{Symbol: "AAPL", LatestPrice: model.Available(227.63)},
			{Symbol: "MSFT", LatestPrice: model.NotAvailable},
		},
		Advice: "Buy <AAPL> & hold.",
	}
}

func TestFormatReport(t *testing.T) {
	msg := FormatReport(sampleReport())

	assert.Contains(t, msg, "<b>AAPL vs MSFT</b>")
	assert.Contains(t, msg, "1mo | 2025-03-06 09:30")
	assert.Contains(t, msg, "AAPL: 227.63")
	assert.Contains(t, msg, "MSFT: N/A")
	assert.Contains(t, msg, "AAPL: 0.0123")
	assert.Contains(t, msg, "P/E 34.10 | P/B N/A")
	assert.Contains(t, msg, "Buy &lt;AAPL&gt; &amp; hold.")
}

func TestFormatReport_Truncates(t *testing.T) {
	rep := sampleReport()
	rep.Advice = strings.Repeat("a", 5000)

	msg := FormatReport(rep)
	assert.Equal(t, maxMessageLen, len([]rune(msg)))
	assert.True(t, strings.HasSuffix(msg, "…"))
}

func TestFormatReport_TruncatesOnWholeEntities(t *testing.T) {
	rep := sampleReport()
	rep.Advice = strings.Repeat("&", 5000)

	msg := FormatReport(rep)
	assert.LessOrEqual(t, len([]rune(msg)), maxMessageLen)
	assert.True(t, strings.HasSuffix(msg, "&amp;…"))

	advice := msg[strings.Index(msg, "Investment Advice</b>\n")+len("Investment Advice</b>\n"):]
	assert.Empty(t, strings.ReplaceAll(strings.TrimSuffix(advice, "…"), "&amp;", ""))
}

func TestFormatReport_TruncationNeverSplitsEscapedTags(t *testing.T) {
	rep := sampleReport()
	rep.Advice = strings.Repeat("<b>x</b> ", 1000)

	msg := FormatReport(rep)
	assert.LessOrEqual(t, len([]rune(msg)), maxMessageLen)
	assert.True(t, strings.HasSuffix(msg, "…"))
	assert.Equal(t, 5, strings.Count(msg, "<b>"), "only the formatter's own headings are markup")
	assert.NotRegexp(t, `&[a-z]*…$`, msg)
}

func TestEscapeWithin(t *testing.T) {
	assert.Equal(t, "a &amp; b", escapeWithin("a & b", 100))
	assert.Equal(t, "a …", escapeWithin("a & b", 6))
	assert.Equal(t, "a &amp;…", escapeWithin("a & b", 8))
	assert.Equal(t, "", escapeWithin("a & b", 0))
}

func TestFormatError(t *testing.T) {
	msg := FormatError("AAPL", "MSFT", fmt.Errorf("fetch <x>: timeout"))
	assert.Contains(t, msg, "AAPL vs MSFT failed")
	assert.Contains(t, msg, "fetch &lt;x&gt;: timeout")
}

func TestFormatHelp(t *testing.T) {
	help := FormatHelp()
	assert.Contains(t, help, "/compare SYMBOL1 SYMBOL2 [period]")
	assert.Contains(t, help, "/report")
	assert.Contains(t, help, "/recent")
	assert.Contains(t, help, "1mo, 3mo, 6mo, 1y, 5y")
}
