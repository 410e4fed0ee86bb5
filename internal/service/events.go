package service

import (
	"context"
	"fmt"
	"log/slog"

	"practice-scheduler/internal/ics"
	"practice-scheduler/internal/recurrence"
	"practice-scheduler/pkg/response"
)

// ListEvents returns the merged real and virtual occurrences of every client
// of userID between the calendar dates from and to, both inclusive.
func (s *Service) ListEvents(ctx context.Context, userID, from, to string) (recurrence.Events, error) {
	const op = "service.ListEvents"

	if userID == "" {
		return recurrence.Events{}, fmt.Errorf("%s: user_id is required: %w", op, response.ErrBadRequest)
	}

	w, err := recurrence.DateWindow(from, to, s.opts.Location)
	if err != nil {
		return recurrence.Events{}, fmt.Errorf("%s: %w: %w", op, response.ErrBadRequest, err)
	}

	clients, err := s.clients.ListActiveWithRecurrence(ctx, userID)
	if err != nil {
		return recurrence.Events{}, fmt.Errorf("%s: list clients: %w", op, err)
	}

	appointments, err := s.appointments.ListByUserInRange(ctx, userID, from, to)
	if err != nil {
		return recurrence.Events{}, fmt.Errorf("%s: list appointments: %w", op, err)
	}

	events := s.generator.ListEvents(clients, appointments, w)
	for _, id := range events.TruncatedClients {
		s.log.Warn("recurrence expansion truncated",
			slog.String("op", op),
			slog.String("client_id", id),
			slog.String("from", from),
			slog.String("to", to),
		)
	}

	return events, nil
}

// ExportCalendar renders the same window as ListEvents as an iCalendar feed.
func (s *Service) ExportCalendar(ctx context.Context, userID, from, to string) (string, error) {
	const op = "service.ExportCalendar"

	events, err := s.ListEvents(ctx, userID, from, to)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	clients, err := s.clients.ListActiveWithRecurrence(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%s: list clients: %w", op, err)
	}

	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}

	feed, err := ics.Export(events.Occurrences, ics.Options{
		Name:        "Appointments",
		Location:    s.opts.Location,
		ClientNames: names,
		Now:         s.opts.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return feed, nil
}
