package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mvoss/signalbridge/internal/domain"
)

// SQLiteStore persists the execution log and the closed-trade report cursor.
// Tracked positions stay volatile; only what must survive a restart lands
// here.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS executions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			signal_id TEXT NOT NULL,
			venue TEXT NOT NULL,
			symbol TEXT NOT NULL,
			action TEXT NOT NULL,
			lot REAL NOT NULL,
			entry REAL NOT NULL DEFAULT 0,
			stop_loss REAL NOT NULL DEFAULT 0,
			take_profit REAL NOT NULL DEFAULT 0,
			ticket INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_executions_symbol ON executions(symbol);`,
		`CREATE TABLE IF NOT EXISTS report_cursor (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			deal_id INTEGER NOT NULL,
			closed_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// TradeLogRepository implementation

func (s *SQLiteStore) SaveExecution(ctx context.Context, e *domain.Execution) error {
	query := `INSERT INTO executions (signal_id, venue, symbol, action, lot, entry, stop_loss, take_profit, ticket, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		e.SignalID, e.Venue, e.Symbol, e.Action, e.Lot, e.Entry, e.StopLoss, e.TakeProfit, e.Ticket, e.CreatedAt)
	return err
}

func (s *SQLiteStore) ListExecutions(ctx context.Context, limit int) ([]*domain.Execution, error) {
	query := `SELECT id, signal_id, venue, symbol, action, lot, entry, stop_loss, take_profit, ticket, created_at
			  FROM executions ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var executions []*domain.Execution
	for rows.Next() {
		var e domain.Execution
		if err := rows.Scan(&e.ID, &e.SignalID, &e.Venue, &e.Symbol, &e.Action, &e.Lot,
			&e.Entry, &e.StopLoss, &e.TakeProfit, &e.Ticket, &e.CreatedAt); err != nil {
			return nil, err
		}
		executions = append(executions, &e)
	}
	return executions, rows.Err()
}

// ReportCursorRepository implementation

func (s *SQLiteStore) LastReported(ctx context.Context) (int64, time.Time, error) {
	row := s.db.QueryRowContext(ctx, `SELECT deal_id, closed_at FROM report_cursor WHERE id = 1`)

	var dealID int64
	var closedAt time.Time
	err := row.Scan(&dealID, &closedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return dealID, closedAt, nil
}

func (s *SQLiteStore) SetLastReported(ctx context.Context, dealID int64, closedAt time.Time) error {
	query := `INSERT INTO report_cursor (id, deal_id, closed_at) VALUES (1, ?, ?)
			  ON CONFLICT(id) DO UPDATE SET deal_id=excluded.deal_id, closed_at=excluded.closed_at`
	_, err := s.db.ExecContext(ctx, query, dealID, closedAt)
	return err
}
