package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"practice-scheduler/internal/models"
	"practice-scheduler/pkg/response"
)

func (s *Storage) GetClient(ctx context.Context, clientID string) (*models.Client, error) {
	const op = "storage.postgres.GetClient"

	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, recurrence FROM clients WHERE id = $1`,
		clientID,
	)

	client, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return client, nil
}

func (s *Storage) ListActiveWithRecurrence(ctx context.Context, userID string) ([]models.Client, error) {
	const op = "storage.postgres.ListActiveWithRecurrence"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, recurrence
		FROM clients
		WHERE user_id = $1
			AND recurrence IS NOT NULL
			AND COALESCE((recurrence->>'active')::boolean, false)
		ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		clients = append(clients, *client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return clients, nil
}

func (s *Storage) ListUserIDsWithRecurrence(ctx context.Context) ([]string, error) {
	const op = "storage.postgres.ListUserIDsWithRecurrence"

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT user_id
		FROM clients
		WHERE recurrence IS NOT NULL
			AND COALESCE((recurrence->>'active')::boolean, false)
		ORDER BY user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}

func (s *Storage) UpdateRecurrence(ctx context.Context, clientID string, r *models.Recurrence) error {
	const op = "storage.postgres.UpdateRecurrence"

	var doc any
	if r != nil {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		doc = string(b)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE clients SET recurrence = $1 WHERE id = $2`, doc, clientID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// AppendException adds one entry to the client's ledger. The row is locked
// for the read-modify-write so concurrent appends are serialized.
func (s *Storage) AppendException(ctx context.Context, clientID string, e models.ExceptionEntry) error {
	const op = "storage.postgres.AppendException"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var doc []byte
	err = tx.QueryRowContext(ctx, `SELECT recurrence FROM clients WHERE id = $1 FOR UPDATE`, clientID).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if doc == nil {
		return fmt.Errorf("%s: %w", op, response.ErrNoRecurrence)
	}

	var r models.Recurrence
	if err := json.Unmarshal(doc, &r); err != nil {
		return fmt.Errorf("%s: decode recurrence: %w", op, err)
	}

	r.Exceptions = append(r.Exceptions, e)

	if doc, err = json.Marshal(r); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE clients SET recurrence = $1 WHERE id = $2`, string(doc), clientID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (*models.Client, error) {
	var (
		client models.Client
		doc    []byte
	)

	if err := row.Scan(&client.ID, &client.UserID, &client.Name, &doc); err != nil {
		return nil, err
	}

	if doc != nil {
		var r models.Recurrence
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, fmt.Errorf("decode recurrence of client %s: %w", client.ID, err)
		}
		client.Recurrence = &r
	}

	return &client, nil
}
