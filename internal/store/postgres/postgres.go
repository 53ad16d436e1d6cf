// Package postgres is the optional database-backed SignalStore, disabled
// by default; a deployment opts in via Config.Enabled and a DSN.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/store"
)

// Config is the database connection configuration: disabled unless a
// deployment explicitly turns it on with a DSN.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
	Enabled         bool
}

func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		QueryTimeout:    10 * time.Second,
		Enabled:         false,
	}
}

// Store is a sqlx/lib-pq-backed store.SignalStore.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Open connects and pings the database, failing fast if either errs.
// Callers should only invoke this when cfg.Enabled.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres: DSN is required when enabled")
	}
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &Store{db: db, timeout: cfg.QueryTimeout}, nil
}

func (s *Store) Close() error { return s.db.Close() }

var _ store.SignalStore = (*Store)(nil)

func (s *Store) HasOpenPosition(ctx context.Context, addr model.TokenAddress) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	const q = `SELECT EXISTS(SELECT 1 FROM positions WHERE token_address = $1 AND closed_at IS NULL)`
	var exists bool
	if err := s.db.QueryRowxContext(ctx, q, string(addr)).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: has open position: %w", err)
	}
	return exists, nil
}

func (s *Store) RecordSignal(ctx context.Context, sig *model.Signal) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	scoreJSON, err := json.Marshal(sig.OnChainScore)
	if err != nil {
		return fmt.Errorf("postgres: marshal score: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	const insertSignal = `
		INSERT INTO signals (id, track, token_address, ticker, score_json, position_size, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, insertSignal,
		sig.ID, string(sig.Track), string(sig.TokenMetrics.Address), sig.TokenMetrics.Ticker,
		scoreJSON, sig.SuggestedPositionSize.String(), sig.GeneratedAt,
	); err != nil {
		return fmt.Errorf("postgres: insert signal: %w", err)
	}

	const upsertPosition = `
		INSERT INTO positions (token_address, signal_id, opened_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_address) WHERE closed_at IS NULL DO NOTHING`
	if _, err := tx.ExecContext(ctx, upsertPosition, string(sig.TokenMetrics.Address), sig.ID, sig.GeneratedAt); err != nil {
		return fmt.Errorf("postgres: open position: %w", err)
	}

	return tx.Commit()
}

func (s *Store) RecordOutcome(ctx context.Context, o store.Outcome) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback()

	const insertOutcome = `
		INSERT INTO outcomes (signal_id, token_address, emitted_at, evaluated_at, was_win, return_pct)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insertOutcome,
		o.SignalID, string(o.TokenAddr), o.EmittedAt, o.EvaluatedAt, o.WasWin, o.ReturnPct,
	); err != nil {
		return fmt.Errorf("postgres: insert outcome: %w", err)
	}

	const closePosition = `UPDATE positions SET closed_at = $1 WHERE token_address = $2 AND closed_at IS NULL`
	if _, err := tx.ExecContext(ctx, closePosition, o.EvaluatedAt, string(o.TokenAddr)); err != nil {
		return fmt.Errorf("postgres: close position: %w", err)
	}

	return tx.Commit()
}

func (s *Store) RecentSignalsWithOutcomes(ctx context.Context, limit int) ([]store.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	const q = `
		SELECT signal_id, token_address, emitted_at, evaluated_at, was_win, return_pct
		FROM outcomes
		ORDER BY evaluated_at DESC
		LIMIT $1`
	rows, err := s.db.QueryxContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: recent outcomes: %w", err)
	}
	defer rows.Close()

	var out []store.Outcome
	for rows.Next() {
		var o store.Outcome
		var addr string
		if err := rows.Scan(&o.SignalID, &addr, &o.EmittedAt, &o.EvaluatedAt, &o.WasWin, &o.ReturnPct); err != nil {
			return nil, fmt.Errorf("postgres: scan outcome: %w", err)
		}
		o.TokenAddr = model.TokenAddress(addr)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate outcomes: %w", err)
	}
	return out, nil
}

func (s *Store) LoadThresholds(ctx context.Context) (model.Thresholds, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	const q = `SELECT config_json FROM threshold_state WHERE id = 1`
	var raw []byte
	err := s.db.QueryRowxContext(ctx, q).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.Thresholds{}, false, nil
	}
	if err != nil {
		return model.Thresholds{}, false, fmt.Errorf("postgres: load thresholds: %w", err)
	}

	var t model.Thresholds
	if err := json.Unmarshal(raw, &t); err != nil {
		return model.Thresholds{}, false, fmt.Errorf("postgres: unmarshal thresholds: %w", err)
	}
	return t, true, nil
}

func (s *Store) PersistThresholds(ctx context.Context, t model.Thresholds) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("postgres: marshal thresholds: %w", err)
	}

	const upsert = `
		INSERT INTO threshold_state (id, config_json, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET config_json = EXCLUDED.config_json, updated_at = now()`
	if _, err := s.db.ExecContext(ctx, upsert, raw); err != nil {
		return fmt.Errorf("postgres: persist thresholds: %w", err)
	}
	return nil
}
