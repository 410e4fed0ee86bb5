package recurrence

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-scheduler/internal/models"
)

func weekly(anchor string) *models.Recurrence {
	return &models.Recurrence{Frequency: models.FrequencyWeekly, AnchorDate: anchor, AnchorTime: "10:00", Active: true}
}

func appt(id, client, date, tm string) models.Appointment {
	return models.Appointment{
		ID:              id,
		ClientID:        client,
		Date:            date,
		Time:            tm,
		DurationMinutes: 60,
		Value:           decimal.NewFromInt(100),
		Status:          models.StatusScheduled,
		PaymentStatus:   models.PaymentPending,
	}
}

func TestGenerator_ListEvents(t *testing.T) {
	clients := []models.Client{
		{ID: "a", Recurrence: weekly("2024-01-01")},
		{ID: "b", Recurrence: weekly("2024-01-08")},
		{ID: "c"},
	}
	appointments := []models.Appointment{
		appt("1", "a", "2024-01-08", "10:00"),
		appt("2", "c", "2024-01-10", "15:00"),
		appt("3", "a", "2024-02-20", "10:00"),
	}

	events := Generator{}.ListEvents(clients, appointments, mustWindow(t, "2024-01-01", "2024-01-15"))

	type key struct {
		client string
		date   string
		real   bool
	}
	var got []key
	for _, o := range events.Occurrences {
		_, isReal := o.(Real)
		got = append(got, key{o.Client(), o.Slot().Date, isReal})
	}

	assert.Equal(t, []key{
		{"a", "2024-01-01", false},
		{"a", "2024-01-08", true},
		{"b", "2024-01-08", false},
		{"c", "2024-01-10", true},
		{"a", "2024-01-15", false},
		{"b", "2024-01-15", false},
	}, got)
	assert.Empty(t, events.TruncatedClients)
}

func TestGenerator_ListEvents_NoDuplicateSlots(t *testing.T) {
	rule := weekly("2024-01-01")
	rule.Exceptions = []models.ExceptionEntry{
		{Date: "2024-01-08", Type: models.ExceptionRescheduled, NewDate: "2024-01-09", NewTime: "12:00"},
	}
	clients := []models.Client{{ID: "a", Recurrence: rule}}
	appointments := []models.Appointment{
		appt("1", "a", "2024-01-09", "12:00"),
		appt("2", "a", "2024-01-15", "10:00"),
		appt("3", "a", "2024-01-15", "10:00"),
	}

	events := Generator{}.ListEvents(clients, appointments, mustWindow(t, "2024-01-01", "2024-01-21"))

	seen := make(map[models.Slot]int)
	for _, o := range events.Occurrences {
		seen[o.Slot()]++
	}
	for slot, n := range seen {
		assert.Equal(t, 1, n, "slot %v", slot)
	}

	require.Len(t, events.Occurrences, 3)
	r, ok := events.Occurrences[2].(Real)
	require.True(t, ok)
	assert.Equal(t, "2", r.Appointment.ID)
	_, ok = seen[models.Slot{Date: "2024-01-08", Time: "10:00"}]
	assert.False(t, ok)
}

func TestGenerator_ListEvents_EmptyWindow(t *testing.T) {
	clients := []models.Client{{ID: "a", Recurrence: weekly("2024-01-01")}}
	w := mustWindow(t, "2024-01-01", "2024-01-31")
	w.Start, w.End = w.End, w.Start

	events := Generator{}.ListEvents(clients, []models.Appointment{appt("1", "a", "2024-01-02", "10:00")}, w)
	assert.Empty(t, events.Occurrences)
}

func TestGenerator_ListEvents_Truncated(t *testing.T) {
	clients := []models.Client{{ID: "old", Recurrence: weekly("1900-01-01")}}

	events := Generator{MaxSteps: MinMaxSteps}.ListEvents(clients, nil, mustWindow(t, "2024-01-01", "2024-01-31"))
	assert.Equal(t, []string{"old"}, events.TruncatedClients)
}

func TestLedger(t *testing.T) {
	l := Ledger{
		{Date: "2024-01-08", Type: models.ExceptionCancelled},
		{Date: "2024-01-15", Type: models.ExceptionRescheduled, NewDate: "2024-01-16", NewTime: "09:00"},
		{Date: "2024-01-08", Type: models.ExceptionRescheduled, NewDate: "2024-01-09", NewTime: "11:00"},
	}

	assert.Len(t, l.Dates(), 2)

	e, ok := l.Lookup("2024-01-08")
	require.True(t, ok)
	assert.Equal(t, models.ExceptionRescheduled, e.Type)
	assert.Equal(t, "2024-01-09", e.NewDate)

	_, ok = l.Lookup("2024-01-22")
	assert.False(t, ok)

	next := l.Append(models.ExceptionEntry{Date: "2024-01-22", Type: models.ExceptionCancelled})
	assert.Len(t, l, 3)
	assert.Len(t, next, 4)
}

func TestDateWindow(t *testing.T) {
	w, err := DateWindow("2024-01-01", "2024-01-22", nil)
	require.NoError(t, err)

	from, to := w.Dates(nil)
	assert.Equal(t, "2024-01-01", from)
	assert.Equal(t, "2024-01-22", to)
	assert.False(t, w.Empty())

	_, err = DateWindow("2024-1-1", "2024-01-22", nil)
	assert.Error(t, err)
	_, err = DateWindow("2024-01-01", "tomorrow", nil)
	assert.Error(t, err)
}
