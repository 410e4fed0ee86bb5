package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"practice-scheduler/pkg/response"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// NewWithDB wraps an already opened connection pool.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	recurrence JSONB
);

CREATE INDEX IF NOT EXISTS clients_user_id_idx ON clients (user_id);

CREATE TABLE IF NOT EXISTS appointments (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	client_id      TEXT NOT NULL REFERENCES clients (id) ON DELETE CASCADE,
	date           DATE NOT NULL,
	time           TIME NOT NULL,
	duration       INTEGER NOT NULL CHECK (duration > 0 AND duration <= 480),
	value          NUMERIC(10, 2) NOT NULL CHECK (value > 0),
	status         TEXT NOT NULL,
	payment_status TEXT NOT NULL,
	notes          TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS appointments_client_slot_idx ON appointments (client_id, date, time);
CREATE INDEX IF NOT EXISTS appointments_user_date_idx ON appointments (user_id, date);
`

func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// mapError translates constraint violations into response sentinels.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", response.ErrConflict, pqErr.Message)
		case "23503":
			return fmt.Errorf("%w: %s", response.ErrNotFound, pqErr.Message)
		case "23514":
			return fmt.Errorf("%w: %s", response.ErrBadRequest, pqErr.Message)
		}
	}

	return err
}
