// Package store persists emitted signals in a SQLite journal.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"fno-signals/internal/models"
)

// SQLiteStore implements the signal journal on SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the journal at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS signals (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		instrument TEXT NOT NULL,
		trading_symbol TEXT NOT NULL,
		option_type TEXT NOT NULL,
		strike REAL NOT NULL,
		expiry DATETIME NOT NULL,
		signal_type TEXT NOT NULL,
		entry_price REAL NOT NULL,
		target_price REAL NOT NULL,
		stop_loss REAL NOT NULL,
		risk_reward REAL NOT NULL,
		quantity INTEGER NOT NULL,
		confidence INTEGER NOT NULL,
		confidence_level TEXT NOT NULL,
		reasoning TEXT,
		oi_analysis TEXT,
		technical TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_signals_instrument ON signals(instrument);
	CREATE INDEX IF NOT EXISTS idx_signals_created_at ON signals(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSignal journals one emitted signal. The OI and technical
// provenance are stored as JSON blobs.
func (s *SQLiteStore) SaveSignal(ctx context.Context, sig *models.Signal) error {
	oiJSON, err := json.Marshal(sig.OI)
	if err != nil {
		return fmt.Errorf("failed to marshal OI analysis: %w", err)
	}
	techJSON, err := json.Marshal(sig.Technical)
	if err != nil {
		return fmt.Errorf("failed to marshal technical snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO signals (
			id, created_at, instrument, trading_symbol, option_type, strike, expiry,
			signal_type, entry_price, target_price, stop_loss, risk_reward, quantity,
			confidence, confidence_level, reasoning, oi_analysis, technical
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sig.ID, sig.CreatedAt, sig.Instrument, sig.TradingSymbol, string(sig.OptionType),
		sig.Strike, sig.Expiry, string(sig.SignalType), sig.EntryPrice, sig.TargetPrice,
		sig.StopLoss, sig.RiskReward, sig.Quantity, sig.Confidence,
		string(sig.ConfidenceLevel), sig.Reasoning, string(oiJSON), string(techJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save signal: %w", err)
	}
	return nil
}

// CountSince counts journaled signals created at or after the cutoff,
// used to restore the daily quota after a restart.
func (s *SQLiteStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM signals WHERE created_at >= ?`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count signals: %w", err)
	}
	return n, nil
}

// SignalFilter narrows ListSignals results. Zero values mean no
// filtering on that field.
type SignalFilter struct {
	Instrument string
	SignalType string
	From       time.Time
	To         time.Time
	Limit      int
}

// ListSignals returns journaled signals matching the filter, newest
// first.
func (s *SQLiteStore) ListSignals(ctx context.Context, filter SignalFilter) ([]models.Signal, error) {
	query := `
		SELECT id, created_at, instrument, trading_symbol, option_type, strike, expiry,
			signal_type, entry_price, target_price, stop_loss, risk_reward, quantity,
			confidence, confidence_level, reasoning, oi_analysis, technical
		FROM signals WHERE 1=1
	`
	var args []interface{}

	if filter.Instrument != "" {
		query += " AND instrument = ?"
		args = append(args, filter.Instrument)
	}
	if filter.SignalType != "" {
		query += " AND signal_type = ?"
		args = append(args, filter.SignalType)
	}
	if !filter.From.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.To)
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	var signals []models.Signal
	for rows.Next() {
		var (
			sig                    models.Signal
			optionType, signalType string
			confidenceLevel        string
			oiJSON, techJSON       string
		)
		err := rows.Scan(
			&sig.ID, &sig.CreatedAt, &sig.Instrument, &sig.TradingSymbol, &optionType,
			&sig.Strike, &sig.Expiry, &signalType, &sig.EntryPrice, &sig.TargetPrice,
			&sig.StopLoss, &sig.RiskReward, &sig.Quantity, &sig.Confidence,
			&confidenceLevel, &sig.Reasoning, &oiJSON, &techJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}

		sig.OptionType = models.ContractType(optionType)
		sig.SignalType = models.SignalType(signalType)
		sig.ConfidenceLevel = models.ConfidenceLevel(confidenceLevel)
		if oiJSON != "" {
			_ = json.Unmarshal([]byte(oiJSON), &sig.OI)
		}
		if techJSON != "" {
			_ = json.Unmarshal([]byte(techJSON), &sig.Technical)
		}
		signals = append(signals, sig)
	}
	return signals, rows.Err()
}
