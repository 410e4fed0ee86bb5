package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"practice-scheduler/internal/models"
	"practice-scheduler/internal/recurrence"
)

const productID = "-//practice-scheduler//recurrence//EN"

type Options struct {
	Name     string
	Location *time.Location
	// ClientNames maps client ids to display names used as event summaries.
	ClientNames map[string]string
	Now         time.Time
}

// Export renders occurrences as an iCalendar feed. Virtual occurrences are
// TENTATIVE, real appointments follow their status.
func Export(occurrences []recurrence.Occurrence, opts Options) (string, error) {
	const op = "ics.Export"

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(loc.String())

	for _, o := range occurrences {
		slot := o.Slot()

		start, err := time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, slot.Date+" "+slot.Time, loc)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}

		var (
			uid         string
			duration    int
			status      string
			category    string
			description string
		)

		switch v := o.(type) {
		case recurrence.Virtual:
			uid = fmt.Sprintf("virtual-%s-%s@practice-scheduler", v.ClientID, v.Date)
			duration = v.DurationMinutes
			status = "TENTATIVE"
			category = "recurring"
			description = fmt.Sprintf("Value: %s", v.Value.StringFixed(2))
		case recurrence.Real:
			a := v.Appointment
			uid = a.ID + "@practice-scheduler"
			duration = a.DurationMinutes
			status = statusOf(a.Status)
			category = "appointment"
			description = fmt.Sprintf("Value: %s\nPayment: %s", a.Value.StringFixed(2), a.PaymentStatus)
			if a.Notes != "" {
				description += "\n" + a.Notes
			}
		}

		summary := opts.ClientNames[o.Client()]
		if summary == "" {
			summary = o.Client()
		}

		event := cal.AddEvent(uid)
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(start.Add(time.Duration(duration) * time.Minute))
		event.SetSummary(summary)
		event.SetDescription(description)
		event.SetProperty(ical.ComponentPropertyStatus, status)
		event.SetProperty(ical.ComponentPropertyCategories, category)
	}

	return cal.Serialize(), nil
}

func statusOf(s models.AppointmentStatus) string {
	if s == models.StatusCanceled {
		return "CANCELLED"
	}
	return "CONFIRMED"
}
