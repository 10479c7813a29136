package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const driverName = "postgres"

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrRunStateNotFound = errors.New("run state not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id         SERIAL PRIMARY KEY,
	first_name VARCHAR(64) NOT NULL,
	last_name  VARCHAR(64) NOT NULL,
	url        VARCHAR(128) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS blacklist (
	id         SERIAL PRIMARY KEY,
	first_name VARCHAR(64) NOT NULL,
	last_name  VARCHAR(64) NOT NULL,
	url        VARCHAR(128) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS favorites (
	id       SERIAL PRIMARY KEY,
	match_id INTEGER NOT NULL UNIQUE REFERENCES matches(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_state (
	id               SERIAL PRIMARY KEY,
	reference_id     BIGINT NOT NULL UNIQUE,
	desired_age_from INTEGER NOT NULL DEFAULT 0,
	desired_age_to   INTEGER NOT NULL DEFAULT 0,
	current_offset   INTEGER NOT NULL DEFAULT 0
);
`

// Storage keeps matches, the blacklist, favorites and per-reference run state in PostgreSQL.
type Storage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func New(db *sqlx.DB, logger *zap.Logger) *Storage {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Storage{db: db, logger: logger}
}

// Connect opens a connection pool and checks it is usable.
func Connect(ctx context.Context, dsn string, logger *zap.Logger) (*Storage, error) {
	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// The CLI is single threaded, a couple of connections is plenty.
	db.SetMaxIdleConns(2)
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db, logger), nil
}

func (s *Storage) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	s.logger.Debug("database schema is ready")
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
