package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-scheduler/internal/models"
	"practice-scheduler/internal/recurrence"
)

func TestExport(t *testing.T) {
	occurrences := []recurrence.Occurrence{
		recurrence.Virtual{ClientID: "c1", Date: "2024-01-08", Time: "10:00", DurationMinutes: 50, Value: decimal.NewFromInt(120)},
		recurrence.Real{Appointment: models.Appointment{
			ID:              "a1",
			ClientID:        "c2",
			Date:            "2024-01-09",
			Time:            "11:30",
			DurationMinutes: 60,
			Value:           decimal.NewFromInt(90),
			Status:          models.StatusCanceled,
			PaymentStatus:   models.PaymentCanceled,
			Notes:           "sick",
		}},
	}

	out, err := Export(occurrences, Options{
		Name:        "Practice",
		ClientNames: map[string]string{"c1": "Ana"},
		Now:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 2)

	assert.Equal(t, "virtual-c1-2024-01-08@practice-scheduler", events[0].Id())
	assert.Equal(t, "Ana", events[0].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "TENTATIVE", events[0].GetProperty(ical.ComponentPropertyStatus).Value)

	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	end, err := events[0].GetEndAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, 50*time.Minute, end.Sub(start))

	assert.Equal(t, "a1@practice-scheduler", events[1].Id())
	assert.Equal(t, "c2", events[1].GetProperty(ical.ComponentPropertySummary).Value, "falls back to the client id")
	assert.Equal(t, "CANCELLED", events[1].GetProperty(ical.ComponentPropertyStatus).Value)
}

func TestExport_Empty(t *testing.T) {
	out, err := Export(nil, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}
