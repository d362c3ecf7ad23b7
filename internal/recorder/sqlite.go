package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"StockAdvisor/internal/model"
)

// SQLiteRecorder persists reports to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the dashboard read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id           TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			period       TEXT NOT NULL,
			symbol1      TEXT NOT NULL,
			symbol2      TEXT NOT NULL,
			price1       REAL,
			price2       REAL,
			volatility1  REAL,
			volatility2  REAL,
			pe1          REAL,
			pe2          REAL,
			pb1          REAL,
			pb2          REAL,
			market_cap1  REAL,
			market_cap2  REAL,
			model        TEXT,
			prompt       TEXT,
			advice       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_ts ON reports(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_pair ON reports(symbol1, symbol2)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps NotAvailable to SQL NULL.
func nullable(v model.Value) any {
	if f, ok := v.Float64(); ok {
		return f
	}
	return nil
}

func fromNull(n sql.NullFloat64) model.Value {
	if !n.Valid {
		return model.NotAvailable
	}
	return model.Available(n.Float64)
}

func (r *SQLiteRecorder) RecordReport(rep *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, b := rep.Stocks[0], rep.Stocks[1]
	ts := rep.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := r.db.Exec(`INSERT INTO reports
		(id, timestamp, period, symbol1, symbol2, price1, price2,
		 volatility1, volatility2, pe1, pe2, pb1, pb2,
		 market_cap1, market_cap2, model, prompt, advice)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rep.ID, ts.Unix(), string(rep.Period), a.Symbol, b.Symbol,
		nullable(rep.Table[0].LatestPrice), nullable(rep.Table[1].LatestPrice),
		a.Volatility, b.Volatility,
		nullable(a.Valuation.PERatio), nullable(b.Valuation.PERatio),
		nullable(a.Valuation.PBRatio), nullable(b.Valuation.PBRatio),
		nullable(a.Valuation.MarketCap), nullable(b.Valuation.MarketCap),
		rep.Model, rep.Prompt, rep.Advice,
	)
	if err != nil {
		return fmt.Errorf("insert report %s: %w", rep.ID, err)
	}
	return nil
}

// Recent returns up to limit reports, newest first.
func (r *SQLiteRecorder) Recent(limit int) ([]ReportSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, period, symbol1, symbol2,
		price1, price2, volatility1, volatility2, model, advice
		FROM reports ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var (
			s              ReportSummary
			ts             int64
			period         string
			price1, price2 sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &ts, &period, &s.Symbol1, &s.Symbol2,
			&price1, &price2, &s.Volatility1, &s.Volatility2, &s.Model, &s.Advice); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		s.GeneratedAt = time.Unix(ts, 0).UTC()
		s.Period = model.Period(period)
		s.Price1, s.Price2 = fromNull(price1), fromNull(price2)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
