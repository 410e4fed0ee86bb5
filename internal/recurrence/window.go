package recurrence

import (
	"fmt"
	"time"

	"practice-scheduler/internal/models"
)

// Window is an inclusive time range [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// DateWindow covers the calendar days from..to in loc, both inclusive.
func DateWindow(from, to string, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}

	start, err := time.ParseInLocation(models.DateLayout, from, loc)
	if err != nil {
		return Window{}, fmt.Errorf("invalid from date %q: %w", from, err)
	}

	end, err := time.ParseInLocation(models.DateLayout, to, loc)
	if err != nil {
		return Window{}, fmt.Errorf("invalid to date %q: %w", to, err)
	}

	return Window{
		Start: start,
		End:   end.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}, nil
}

// Around returns [now - trailing days, now + leading days].
func Around(now time.Time, trailingDays, leadingDays int) Window {
	return Window{
		Start: now.AddDate(0, 0, -trailingDays),
		End:   now.AddDate(0, 0, leadingDays),
	}
}

func (w Window) Empty() bool {
	return w.Start.After(w.End)
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Dates returns the first and last calendar dates the window touches in loc.
func (w Window) Dates(loc *time.Location) (string, string) {
	if loc == nil {
		loc = time.UTC
	}
	return w.Start.In(loc).Format(models.DateLayout), w.End.In(loc).Format(models.DateLayout)
}
