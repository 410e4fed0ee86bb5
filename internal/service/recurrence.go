package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"practice-scheduler/internal/lock"
	"practice-scheduler/internal/models"
	"practice-scheduler/internal/recurrence"
	"practice-scheduler/pkg/response"
)

func (s *Service) GetRecurrence(ctx context.Context, clientID string) (*models.Recurrence, error) {
	const op = "service.GetRecurrence"

	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if client.Recurrence == nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNoRecurrence)
	}

	return client.Recurrence, nil
}

// RecurrenceInput is an edit of a client's rule. Active defaults to true.
type RecurrenceInput struct {
	Frequency       models.Frequency
	AnchorDate      string
	AnchorTime      string
	DurationMinutes int
	Value           *decimal.Decimal
	Active          *bool
}

// UpdateRecurrence replaces the rule of a client. The exception ledger
// already recorded against the client is kept.
func (s *Service) UpdateRecurrence(ctx context.Context, clientID string, in RecurrenceInput) (*models.Recurrence, error) {
	const op = "service.UpdateRecurrence"

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	rule := &models.Recurrence{
		Frequency:       in.Frequency,
		AnchorDate:      in.AnchorDate,
		AnchorTime:      in.AnchorTime,
		DurationMinutes: in.DurationMinutes,
		Value:           in.Value,
		Active:          active,
	}

	if err := recurrence.Validate(*rule); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, response.ErrInvalidRule, err)
	}

	key := lock.RecurrenceKey(clientID)

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

	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if client.Recurrence != nil {
		rule.Exceptions = client.Recurrence.Exceptions
	}

	if err := s.clients.UpdateRecurrence(ctx, clientID, rule); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rule, nil
}

// CancelOccurrence records a cancelled exception for the occurrence the rule
// generates on date.
func (s *Service) CancelOccurrence(ctx context.Context, clientID, date string) (*models.ExceptionEntry, error) {
	const op = "service.CancelOccurrence"

	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if client.Recurrence == nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNoRecurrence)
	}

	if _, ok := s.generator.OccurrenceOn(client.ID, *client.Recurrence, date); !ok {
		return nil, fmt.Errorf("%s: no occurrence on %s: %w", op, date, response.ErrNotFound)
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

	client, err = s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if client.Recurrence == nil {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNoRecurrence)
	}
	if _, ok := recurrence.Ledger(client.Recurrence.Exceptions).Lookup(date); ok {
		return nil, fmt.Errorf("%s: occurrence on %s already has an exception: %w", op, date, response.ErrConflict)
	}

	entry := models.ExceptionEntry{Date: date, Type: models.ExceptionCancelled}

	if err := s.clients.AppendException(ctx, client.ID, entry); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, response.ErrExceptionNotRecorded, err)
	}

	return &entry, nil
}
