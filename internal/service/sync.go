package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"practice-scheduler/internal/lock"
	"practice-scheduler/internal/models"
	"practice-scheduler/internal/recurrence"
	"practice-scheduler/pkg/sl"
)

// SyncDueOccurrences creates real appointments for every occurrence of an
// active rule within [now - trailingDays, now + leadingDays]. Clients are
// processed in parallel. Failures for a single client or occurrence are
// logged and skipped; the next pass retries them since no exception is
// written. Created appointments are returned sorted by slot.
func (s *Service) SyncDueOccurrences(
	ctx context.Context,
	clients []models.Client,
	now time.Time,
	trailingDays, leadingDays int,
) ([]models.Appointment, error) {
	const op = "service.SyncDueOccurrences"

	log := s.log.With(slog.String("op", op))

	w := recurrence.Around(now.In(s.opts.Location), max(trailingDays, 0), max(leadingDays, 0))

	var (
		mu      sync.Mutex
		created []models.Appointment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for _, c := range clients {
		if !c.HasActiveRecurrence() {
			continue
		}

		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			appointments := s.syncClient(gctx, log.With(slog.String("client_id", c.ID)), c.ID, w)

			mu.Lock()
			created = append(created, appointments...)
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	sort.Slice(created, func(i, j int) bool {
		if created[i].Date != created[j].Date {
			return created[i].Date < created[j].Date
		}
		if created[i].Time != created[j].Time {
			return created[i].Time < created[j].Time
		}
		return created[i].ClientID < created[j].ClientID
	})

	if err := ctx.Err(); err != nil {
		return created, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (s *Service) syncClient(ctx context.Context, log *slog.Logger, clientID string, w recurrence.Window) []models.Appointment {
	key := lock.RecurrenceKey(clientID)

	locked, err := s.locker.Lock(ctx, key, s.opts.LockTTL)
	if err != nil {
		log.Error("failed to take recurrence lock", sl.Err(err))
		return nil
	}
	if !locked {
		log.Debug("recurrence locked, skipping client")
		return nil
	}
	defer func() {
		_ = s.locker.Unlock(ctx, key)
	}()

	// The list the caller passed may predate a materialization.
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		log.Error("failed to load client", sl.Err(err))
		return nil
	}
	if !client.HasActiveRecurrence() {
		return nil
	}

	from, to := w.Dates(s.opts.Location)

	existing, err := s.appointments.ListByClientInRange(ctx, client.ID, from, to)
	if err != nil {
		log.Error("failed to list appointments", sl.Err(err))
		return nil
	}

	res := s.generator.Generate(
		client.ID,
		*client.Recurrence,
		recurrence.Ledger(client.Recurrence.Exceptions).Dates(),
		w,
		recurrence.SlotsOf(existing),
	)
	if res.Truncated {
		log.Warn("recurrence expansion truncated", slog.String("from", from), slog.String("to", to))
	}

	var created []models.Appointment

	for _, v := range res.Occurrences {
		a := models.Appointment{
			UserID:          client.UserID,
			ClientID:        client.ID,
			Date:            v.Date,
			Time:            v.Time,
			DurationMinutes: v.DurationMinutes,
			Value:           recurrence.ResolveValue(nil, client.Recurrence),
			Status:          models.StatusScheduled,
			PaymentStatus:   models.PaymentPending,
			Notes:           s.opts.AutoNote,
		}

		if err := a.Validate(); err != nil {
			log.Error("generated appointment is invalid", slog.String("date", v.Date), sl.Err(err))
			continue
		}

		id, err := s.appointments.CreateAppointment(ctx, a)
		if err != nil {
			log.Error("failed to create appointment", slog.String("date", v.Date), sl.Err(err))
			continue
		}

		a.ID = id
		created = append(created, a)
	}

	return created
}

// SyncUser runs SyncDueOccurrences for one user's clients with the
// configured window.
func (s *Service) SyncUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	const op = "service.SyncUser"

	clients, err := s.clients.ListActiveWithRecurrence(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.SyncDueOccurrences(ctx, clients, s.opts.Now(), s.opts.TrailingDays, s.opts.LeadingDays)
	if err != nil {
		return created, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// SyncAll syncs every user that owns at least one recurrence. A failing user
// is logged and skipped. It returns how many appointments were created.
func (s *Service) SyncAll(ctx context.Context) (int, error) {
	const op = "service.SyncAll"

	log := s.log.With(slog.String("op", op))

	userIDs, err := s.clients.ListUserIDsWithRecurrence(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	total := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return total, fmt.Errorf("%s: %w", op, err)
		}

		created, err := s.SyncUser(ctx, userID)
		total += len(created)
		if err != nil {
			log.Error("failed to sync user", slog.String("user_id", userID), sl.Err(err))
			continue
		}
	}

	log.Info("recurrence sync finished", slog.Int("users", len(userIDs)), slog.Int("created", total))

	return total, nil
}
