package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hetulpatel/pairwatch/internal/models"
	"github.com/hetulpatel/pairwatch/internal/report"
)

const (
	defaultPath = "data/pairwatch.db"
)

// Store wraps a SQLite DB connection.
type Store struct {
	path string
	db   *sql.DB
}

// Open creates (if needed) and opens the SQLite database.
func Open(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := ensureWAL(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

func ensureWAL(db *sql.DB) error {
	const (
		maxAttempts = 5
		delay       = 200 * time.Millisecond
	)
	for i := 0; i < maxAttempts; i++ {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			if strings.Contains(err.Error(), "database is locked") {
				time.Sleep(delay)
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("database is locked after retries")
}

// Path returns the path backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateTables ensures the verdicts table exists.
func (s *Store) CreateTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, verdictSchemaSQL)
	return err
}

// DropTables removes the verdicts table.
func (s *Store) DropTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS pair_verdicts;`)
	return err
}

// ClearTables truncates the verdicts table.
func (s *Store) ClearTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pair_verdicts;`)
	return err
}

const verdictSchemaSQL = `
CREATE TABLE IF NOT EXISTS pair_verdicts (
	chain TEXT NOT NULL,
	pair_address TEXT NOT NULL,
	cycle_id TEXT NOT NULL,
	dex_id TEXT,
	url TEXT,
	base_symbol TEXT,
	base_name TEXT,
	liquidity_usd REAL,
	buys_m5 INTEGER,
	sells_m5 INTEGER,
	buy_sell_ratio REAL,
	trustworthy INTEGER NOT NULL,
	reasons_json TEXT,
	observed_at TEXT NOT NULL,
	raw_json TEXT,
	PRIMARY KEY (chain, pair_address)
);
CREATE INDEX IF NOT EXISTS pair_verdicts_observed_idx ON pair_verdicts(chain, observed_at);
`

// First verdict wins; a restarted tracker re-evaluating a pair does not
// overwrite what was journaled before.
const insertVerdictSQL = `
INSERT INTO pair_verdicts (
	chain, pair_address, cycle_id, dex_id, url, base_symbol, base_name,
	liquidity_usd, buys_m5, sells_m5, buy_sell_ratio, trustworthy, reasons_json,
	observed_at, raw_json
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(chain, pair_address) DO NOTHING;
`

// InsertReports journals a cycle's reports in one transaction.
func (s *Store) InsertReports(ctx context.Context, reports []report.Report) error {
	if len(reports) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, insertVerdictSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range reports {
		if err := s.execInsert(ctx, stmt, models.NewVerdictEvent(r)); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert verdict %s: %w", r.Snapshot.PairAddress, err)
		}
	}
	return tx.Commit()
}

func (s *Store) execInsert(ctx context.Context, stmt *sql.Stmt, ev models.VerdictEvent) error {
	reasonsJSON, err := json.Marshal(ev.Reasons)
	if err != nil {
		return err
	}
	rawJSON, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	trustworthy := 0
	if ev.Trustworthy {
		trustworthy = 1
	}
	_, err = stmt.ExecContext(
		ctx,
		ev.Chain,
		ev.PairAddress,
		ev.CycleID,
		ev.DexID,
		ev.URL,
		ev.BaseSymbol,
		ev.BaseName,
		ev.LiquidityUSD,
		ev.BuysM5,
		ev.SellsM5,
		ev.BuySellRatio,
		trustworthy,
		string(reasonsJSON),
		ev.ObservedAt.UTC().Format(time.RFC3339Nano),
		string(rawJSON),
	)
	return err
}

// Recent returns the latest journaled verdicts for a chain, newest first.
func (s *Store) Recent(ctx context.Context, chain string, limit int) ([]models.VerdictEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT raw_json FROM pair_verdicts
WHERE chain = ?
ORDER BY observed_at DESC, pair_address
LIMIT ?`, chain, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.VerdictEvent
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var ev models.VerdictEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("decode journaled verdict: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Sink journals every cycle's reports.
type Sink struct {
	store *Store
}

func NewSink(store *Store) *Sink {
	return &Sink{store: store}
}

func (s *Sink) Name() string {
	return "sqlite"
}

func (s *Sink) Emit(ctx context.Context, reports []report.Report) error {
	return s.store.InsertReports(ctx, reports)
}
