package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"practice-scheduler/internal/models"
)

// Step advances t by one frequency period. Monthly stepping uses calendar
// month arithmetic with overflow normalization, so Jan 31 + 1 month lands
// in early March. ok is false for an unknown frequency.
func Step(f models.Frequency, t time.Time) (time.Time, bool) {
	switch f {
	case models.FrequencyWeekly:
		return t.AddDate(0, 0, 7), true
	case models.FrequencyBiweekly:
		return t.AddDate(0, 0, 14), true
	case models.FrequencyMonthly:
		return t.AddDate(0, 1, 0), true
	default:
		return t, false
	}
}

// Anchor returns occurrence 0 of the rule in loc. ok is false when the
// anchor date or time is missing or malformed.
func Anchor(r models.Recurrence, loc *time.Location) (time.Time, bool) {
	if r.AnchorDate == "" || r.AnchorTime == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	t, err := time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, r.AnchorDate+" "+r.AnchorTime, loc)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// DurationOf returns the rule's duration in minutes, defaulting to 60.
func DurationOf(r models.Recurrence) int {
	if r.DurationMinutes > 0 {
		return r.DurationMinutes
	}
	return models.DefaultDurationMinutes
}

// DefaultValue is the value generated occurrences carry. Absent means zero.
func DefaultValue(r models.Recurrence) decimal.Decimal {
	if r.Value == nil {
		return decimal.Zero
	}
	return *r.Value
}

// ResolveValue picks the value to persist for an appointment created from
// the rule: an explicit override, then the rule default, then 1. Candidates
// are rounded to cents first, so the result is always strictly positive at
// the stored precision.
func ResolveValue(override *decimal.Decimal, r *models.Recurrence) decimal.Decimal {
	if override != nil {
		if v := override.Round(models.ValuePlaces); v.IsPositive() {
			return v
		}
	}
	if r != nil && r.Value != nil {
		if v := r.Value.Round(models.ValuePlaces); v.IsPositive() {
			return v
		}
	}
	return decimal.NewFromInt(1)
}

// Validate checks a rule before it is saved. The generator itself never
// calls it: an invalid rule simply generates nothing.
func Validate(r models.Recurrence) error {
	var errs []error

	if !r.Frequency.Valid() {
		errs = append(errs, fmt.Errorf("unknown frequency %q", r.Frequency))
	}
	if r.AnchorDate != "" {
		if _, err := time.Parse(models.DateLayout, r.AnchorDate); err != nil {
			errs = append(errs, fmt.Errorf("anchor date %q must be YYYY-MM-DD", r.AnchorDate))
		}
	}
	if r.AnchorTime != "" {
		if _, err := time.Parse(models.TimeLayout, r.AnchorTime); err != nil {
			errs = append(errs, fmt.Errorf("anchor time %q must be HH:MM", r.AnchorTime))
		}
	}
	if r.Active && (r.AnchorDate == "" || r.AnchorTime == "") {
		errs = append(errs, errors.New("active recurrence needs an anchor date and time"))
	}
	if r.DurationMinutes < 0 || r.DurationMinutes > models.MaxDurationMinutes {
		errs = append(errs, fmt.Errorf("duration must be in [0, %d] minutes", models.MaxDurationMinutes))
	}
	if r.Value != nil && (r.Value.IsNegative() || r.Value.GreaterThan(models.MaxValue)) {
		errs = append(errs, fmt.Errorf("value must be in [0, %s]", models.MaxValue))
	}
	if r.Value != nil && !models.HasValuePrecision(*r.Value) {
		errs = append(errs, fmt.Errorf("value must have at most %d decimal places", models.ValuePlaces))
	}

	return errors.Join(errs...)
}
