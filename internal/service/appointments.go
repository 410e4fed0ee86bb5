package service

import (
	"context"
	"fmt"

	"practice-scheduler/internal/models"
	"practice-scheduler/pkg/response"
)

// CreateAppointment persists a standalone appointment. It is also the retry
// path for a draft left behind by a partial Materialize: the ledger is not
// touched.
func (s *Service) CreateAppointment(ctx context.Context, a models.Appointment) (*models.Appointment, error) {
	const op = "service.CreateAppointment"

	if a.Status == "" {
		a.Status = models.StatusScheduled
	}
	if a.PaymentStatus == "" {
		a.PaymentStatus = models.PaymentPending
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = models.DefaultDurationMinutes
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, response.ErrBadRequest, err)
	}

	client, err := s.clients.GetClient(ctx, a.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.UserID = client.UserID

	id, err := s.appointments.CreateAppointment(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.ID = id

	return &a, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, id string, patch models.AppointmentPatch) error {
	const op = "service.UpdateAppointment"

	if patch.Empty() {
		return fmt.Errorf("%s: nothing to update: %w", op, response.ErrBadRequest)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%s: invalid status %q: %w", op, *patch.Status, response.ErrBadRequest)
	}
	if patch.PaymentStatus != nil && !patch.PaymentStatus.Valid() {
		return fmt.Errorf("%s: invalid payment status %q: %w", op, *patch.PaymentStatus, response.ErrBadRequest)
	}
	if patch.Notes != nil && !models.NotesFit(*patch.Notes) {
		return fmt.Errorf("%s: notes too long: %w", op, response.ErrBadRequest)
	}

	if err := s.appointments.UpdateAppointment(ctx, id, patch); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
