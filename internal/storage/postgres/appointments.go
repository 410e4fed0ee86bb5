package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"practice-scheduler/internal/models"
	"practice-scheduler/pkg/response"
)

const appointmentColumns = `id, user_id, client_id,
	to_char(date, 'YYYY-MM-DD'), to_char(time, 'HH24:MI'),
	duration, value, status, payment_status, notes`

func (s *Storage) ListByClientInRange(ctx context.Context, clientID, from, to string) ([]models.Appointment, error) {
	const op = "storage.postgres.ListByClientInRange"

	appointments, err := s.listAppointments(ctx,
		`SELECT `+appointmentColumns+`
		FROM appointments
		WHERE client_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, time`,
		clientID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return appointments, nil
}

func (s *Storage) ListByUserInRange(ctx context.Context, userID, from, to string) ([]models.Appointment, error) {
	const op = "storage.postgres.ListByUserInRange"

	appointments, err := s.listAppointments(ctx,
		`SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, time, client_id`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return appointments, nil
}

func (s *Storage) listAppointments(ctx context.Context, query string, args ...any) ([]models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Appointment
	for rows.Next() {
		var a models.Appointment
		err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.ClientID,
			&a.Date,
			&a.Time,
			&a.DurationMinutes,
			&a.Value,
			&a.Status,
			&a.PaymentStatus,
			&a.Notes,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

func (s *Storage) CreateAppointment(ctx context.Context, a models.Appointment) (string, error) {
	const op = "storage.postgres.CreateAppointment"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments
		(id, user_id, client_id, date, time, duration, value, status, payment_status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id,
		a.UserID,
		a.ClientID,
		a.Date,
		a.Time,
		a.DurationMinutes,
		a.Value,
		string(a.Status),
		string(a.PaymentStatus),
		a.Notes,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, mapError(err))
	}

	return id, nil
}

func (s *Storage) UpdateAppointment(ctx context.Context, id string, patch models.AppointmentPatch) error {
	const op = "storage.postgres.UpdateAppointment"

	var (
		sets []string
		args []any
	)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.PaymentStatus != nil {
		add("payment_status", string(*patch.PaymentStatus))
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}

	if len(sets) == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrBadRequest)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE appointments SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
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
