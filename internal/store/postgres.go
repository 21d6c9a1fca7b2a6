package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eeeeman22/verbatim/internal/session"
)

var _ Store = (*PostgresStore)(nil)

// schema creates the sessions table. The full session (word list plus
// error ledger) is stored as a JSONB snapshot; the scalar columns exist
// only so that listing does not have to deserialise every snapshot.
const schema = `
	CREATE TABLE IF NOT EXISTS review_sessions (
		id           TEXT PRIMARY KEY,
		student_id   TEXT        NOT NULL,
		student_name TEXT        NOT NULL,
		date         TIMESTAMPTZ NOT NULL,
		word_count   INTEGER     NOT NULL,
		error_count  INTEGER     NOT NULL,
		snapshot     JSONB       NOT NULL
	);
	CREATE INDEX IF NOT EXISTS review_sessions_student_idx
		ON review_sessions (student_id, date DESC);`

// PostgresStore persists sessions in a PostgreSQL review_sessions table.
// All methods are safe for concurrent use.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore establishes a connection pool to the database at dsn
// and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Save implements [Store]. Existing snapshots with the same ID are
// replaced.
func (p *PostgresStore) Save(ctx context.Context, s *session.Session) error {
	snapshot, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("postgres store: marshal session: %w", err)
	}

	const q = `
		INSERT INTO review_sessions (id, student_id, student_name, date, word_count, error_count, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			student_id   = EXCLUDED.student_id,
			student_name = EXCLUDED.student_name,
			date         = EXCLUDED.date,
			word_count   = EXCLUDED.word_count,
			error_count  = EXCLUDED.error_count,
			snapshot     = EXCLUDED.snapshot`

	_, err = p.pool.Exec(ctx, q,
		s.ID,
		s.StudentID,
		s.StudentName,
		s.Date,
		len(s.Words),
		len(s.Errors),
		snapshot,
	)
	if err != nil {
		return fmt.Errorf("postgres store: save: %w", err)
	}
	return nil
}

// Load implements [Store].
func (p *PostgresStore) Load(ctx context.Context, id string) (*session.Session, error) {
	const q = `SELECT snapshot FROM review_sessions WHERE id = $1`

	var snapshot []byte
	if err := p.pool.QueryRow(ctx, q, id).Scan(&snapshot); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres store: load: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal(snapshot, &s); err != nil {
		return nil, fmt.Errorf("postgres store: unmarshal session: %w", err)
	}
	return &s, nil
}

// List implements [Store].
func (p *PostgresStore) List(ctx context.Context) ([]Summary, error) {
	const q = `
		SELECT id, student_id, student_name, date, word_count, error_count
		FROM   review_sessions
		ORDER  BY date DESC`

	rows, err := p.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("postgres store: list: %w", err)
	}

	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Summary, error) {
		var s Summary
		err := row.Scan(&s.ID, &s.StudentID, &s.StudentName, &s.Date, &s.WordCount, &s.ErrorCount)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: scan rows: %w", err)
	}
	if summaries == nil {
		summaries = []Summary{}
	}
	return summaries, nil
}

// Delete implements [Store].
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM review_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres store: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping verifies database connectivity. Used by the readiness probe.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close implements [Store]. It releases all pooled connections.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
