package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"practice-scheduler/internal/lock"
	"practice-scheduler/internal/models"
	"practice-scheduler/internal/recurrence"
	"practice-scheduler/pkg/response"
)

// Overrides replace what the rule would otherwise give the new appointment.
type Overrides struct {
	Value           *decimal.Decimal
	DurationMinutes *int
	Status          *models.AppointmentStatus
	PaymentStatus   *models.PaymentStatus
	Notes           *string
}

type MaterializeRequest struct {
	ClientID string
	// Original is the slot the rule generated. Time may be empty, in which
	// case any occurrence on Original.Date matches.
	Original models.Slot
	// Empty Target fields default to the generated occurrence.
	Target    models.Slot
	Overrides Overrides
}

type MaterializeResult struct {
	// Appointment carries an ID only when it was persisted. After
	// ErrAppointmentNotCreated it is the draft to retry with.
	Appointment       models.Appointment
	ExceptionRecorded bool
}

// Materialize turns a virtual occurrence into a real appointment. The
// rescheduled exception for the original date is written before the
// appointment, so a concurrent sync never re-creates the original slot.
//
// Errors wrapping ErrExceptionNotRecorded mean nothing was written.
// Errors wrapping ErrAppointmentNotCreated come with ExceptionRecorded set
// and the draft appointment in the result.
func (s *Service) Materialize(ctx context.Context, req MaterializeRequest) (*MaterializeResult, error) {
	const op = "service.Materialize"

	if req.ClientID == "" {
		return nil, fmt.Errorf("%s: client_id is required: %w", op, response.ErrBadRequest)
	}
	client, err := s.clients.GetClient(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if client.Recurrence == nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNoRecurrence)
	}

	virtual, ok := s.generator.OccurrenceOn(client.ID, *client.Recurrence, req.Original.Date)
	if !ok || (req.Original.Time != "" && req.Original.Time != virtual.Time) {
		return nil, fmt.Errorf("%s: no occurrence on %s: %w", op, req.Original.Date, response.ErrNotFound)
	}

	if req.Target.Date == "" {
		req.Target.Date = virtual.Date
	}
	if req.Target.Time == "" {
		req.Target.Time = virtual.Time
	}
	if err := req.Target.Validate(); err != nil {
		return nil, fmt.Errorf("%s: target: %w: %w", op, response.ErrBadRequest, err)
	}

	key := lock.RecurrenceKey(client.ID)

	locked, err := s.locker.Lock(ctx, key, s.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, key)
	}()

	// Re-read under the lock: the ledger may have moved since the first read.
	client, err = s.clients.GetClient(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if client.Recurrence == nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNoRecurrence)
	}
	if _, ok := recurrence.Ledger(client.Recurrence.Exceptions).Lookup(virtual.Date); ok {
		return nil, fmt.Errorf("%s: occurrence on %s already has an exception: %w", op, virtual.Date, response.ErrConflict)
	}

	existing, err := s.appointments.ListByClientInRange(ctx, client.ID, virtual.Date, virtual.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, response.ErrExceptionNotRecorded, err)
	}
	if _, taken := recurrence.SlotsOf(existing)[virtual.Slot()]; taken {
		return nil, fmt.Errorf("%s: occurrence on %s is already real: %w", op, virtual.Date, response.ErrConflict)
	}

	// The target must be free before the exception is written.
	if req.Target != virtual.Slot() {
		if req.Target.Date != virtual.Date {
			existing, err = s.appointments.ListByClientInRange(ctx, client.ID, req.Target.Date, req.Target.Date)
			if err != nil {
				return nil, fmt.Errorf("%s: %w: %w", op, response.ErrExceptionNotRecorded, err)
			}
		}
		if _, taken := recurrence.SlotsOf(existing)[req.Target]; taken {
			return nil, fmt.Errorf("%s: target %s %s is already booked: %w", op, req.Target.Date, req.Target.Time, response.ErrConflict)
		}
	}

	draft := s.draft(client, virtual, req.Target, req.Overrides)
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, response.ErrBadRequest, err)
	}

	entry := models.ExceptionEntry{
		Date:    virtual.Date,
		Type:    models.ExceptionRescheduled,
		NewDate: req.Target.Date,
		NewTime: req.Target.Time,
	}

	if err := s.clients.AppendException(ctx, client.ID, entry); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, response.ErrExceptionNotRecorded, err)
	}

	result := &MaterializeResult{Appointment: draft, ExceptionRecorded: true}

	id, err := s.appointments.CreateAppointment(ctx, draft)
	if err != nil {
		return result, fmt.Errorf("%s: %w: %w", op, response.ErrAppointmentNotCreated, err)
	}

	result.Appointment.ID = id

	return result, nil
}

func (s *Service) draft(client *models.Client, v recurrence.Virtual, target models.Slot, o Overrides) models.Appointment {
	a := models.Appointment{
		UserID:          client.UserID,
		ClientID:        client.ID,
		Date:            target.Date,
		Time:            target.Time,
		DurationMinutes: v.DurationMinutes,
		Value:           recurrence.ResolveValue(o.Value, client.Recurrence),
		Status:          models.StatusScheduled,
		PaymentStatus:   models.PaymentPending,
	}

	if o.DurationMinutes != nil {
		a.DurationMinutes = *o.DurationMinutes
	}
	if o.Status != nil {
		a.Status = *o.Status
	}
	if o.PaymentStatus != nil {
		a.PaymentStatus = *o.PaymentStatus
	}
	if o.Notes != nil {
		a.Notes = *o.Notes
	}

	return a
}

// IsPartial reports whether err left an exception without its appointment.
func IsPartial(err error) bool {
	return errors.Is(err, response.ErrAppointmentNotCreated)
}
