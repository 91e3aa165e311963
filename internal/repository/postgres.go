package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"guidechat/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_sessions (
	session_id   TEXT PRIMARY KEY,
	current_step TEXT NOT NULL,
	state        JSONB NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS chat_sessions_updated_at_idx ON chat_sessions (updated_at);

CREATE TABLE IF NOT EXISTS search_logs (
	id               BIGSERIAL PRIMARY KEY,
	session_id       TEXT NOT NULL,
	criteria         JSONB NOT NULL,
	params           JSONB NOT NULL,
	keywords         JSONB NOT NULL DEFAULT '[]',
	result_count     INTEGER NOT NULL,
	response_time_ms INTEGER NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PostgresRepository stores sessions and search logs in PostgreSQL
type PostgresRepository struct {
	db  *sqlx.DB
	ttl time.Duration
}

type sessionRow struct {
	State     []byte    `db:"state"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int, ttl time.Duration) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db, ttl: ttl}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection.
func NewPostgresRepositoryFromDB(db *sqlx.DB, ttl time.Duration) *PostgresRepository {
	return &PostgresRepository{db: db, ttl: ttl}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the tables if they do not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Get loads a session by id
func (r *PostgresRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	var row sessionRow
	query := `SELECT state, updated_at FROM chat_sessions WHERE session_id = $1`
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if r.ttl > 0 && time.Since(row.UpdatedAt) > r.ttl {
		return nil, ErrSessionNotFound
	}

	var s model.Session
	if err := json.Unmarshal(row.State, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	if s.History == nil {
		s.History = []model.Turn{}
	}
	return &s, nil
}

// Put inserts or replaces a session
func (r *PostgresRepository) Put(ctx context.Context, s *model.Session) error {
	s.UpdatedAt = time.Now()
	state, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	query := `
		INSERT INTO chat_sessions (session_id, current_step, state, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE
		SET current_step = EXCLUDED.current_step, state = EXCLUDED.state, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, s.SessionID, string(s.CurrentStep), state, s.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions idle for longer than the TTL.
func (r *PostgresRepository) PurgeExpired(ctx context.Context) (int64, error) {
	if r.ttl <= 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE updated_at < $1`, time.Now().Add(-r.ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}

// LogSearch records an executed search
func (r *PostgresRepository) LogSearch(ctx context.Context, entry model.SearchLog) error {
	criteria, err := json.Marshal(entry.Criteria)
	if err != nil {
		return fmt.Errorf("failed to encode criteria: %w", err)
	}
	params, err := json.Marshal(entry.Params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}

	query := `
		INSERT INTO search_logs (session_id, criteria, params, keywords, result_count, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	keywords := model.JSONArray(entry.Criteria.ExtractedKeywords)
	if _, err := r.db.ExecContext(ctx, query, entry.SessionID, criteria, params, keywords, entry.ResultCount, entry.TookMs); err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}
