package recurrence

import (
	"time"

	"practice-scheduler/internal/models"
)

const (
	// DefaultMaxSteps bounds each stepping loop of Generate.
	DefaultMaxSteps = 5000
	// MinMaxSteps is the smallest cap Generate will honor.
	MinMaxSteps = 500
)

// Generator projects recurrence rules into virtual occurrences.
type Generator struct {
	// Location is the timezone anchors are interpreted in. Nil means UTC.
	Location *time.Location

	// MaxSteps caps both the advance-to-window loop and the emit loop.
	// Zero means DefaultMaxSteps; values below MinMaxSteps are raised to it.
	MaxSteps int
}

// Result is the output of one Generate call.
type Result struct {
	Occurrences []Virtual
	// Truncated is set when a step cap stopped generation early. Occurrences
	// then holds whatever was produced before the cap.
	Truncated bool
}

func (g Generator) location() *time.Location {
	if g.Location == nil {
		return time.UTC
	}
	return g.Location
}

func (g Generator) maxSteps() int {
	switch {
	case g.MaxSteps == 0:
		return DefaultMaxSteps
	case g.MaxSteps < MinMaxSteps:
		return MinMaxSteps
	default:
		return g.MaxSteps
	}
}

// Generate returns the virtual occurrences of rule inside w in chronological
// order. Dates present in exceptions and slots present in realSlots are
// skipped. Inactive rules, rules without an anchor, rules with an unknown
// frequency and empty windows all yield an empty result.
func (g Generator) Generate(
	clientID string,
	rule models.Recurrence,
	exceptions map[string]struct{},
	w Window,
	realSlots map[models.Slot]struct{},
) Result {
	var res Result

	if !rule.Active || !rule.Frequency.Valid() || w.Empty() {
		return res
	}

	cur, ok := Anchor(rule, g.location())
	if !ok {
		return res
	}

	limit := g.maxSteps()

	for steps := 0; cur.Before(w.Start); steps++ {
		if steps >= limit {
			res.Truncated = true
			return res
		}
		cur, _ = Step(rule.Frequency, cur)
	}

	duration := DurationOf(rule)
	value := DefaultValue(rule)

	for steps := 0; !cur.After(w.End); steps++ {
		if steps >= limit {
			res.Truncated = true
			break
		}

		slot := models.Slot{
			Date: cur.Format(models.DateLayout),
			Time: cur.Format(models.TimeLayout),
		}

		_, excepted := exceptions[slot.Date]
		_, taken := realSlots[slot]

		if !excepted && !taken {
			res.Occurrences = append(res.Occurrences, Virtual{
				ClientID:        clientID,
				Date:            slot.Date,
				Time:            slot.Time,
				DurationMinutes: duration,
				Value:           value,
			})
		}

		cur, _ = Step(rule.Frequency, cur)
	}

	return res
}

// OccurrenceOn reports the virtual occurrence the rule generates on date,
// ignoring exceptions and real appointments.
func (g Generator) OccurrenceOn(clientID string, rule models.Recurrence, date string) (Virtual, bool) {
	w, err := DateWindow(date, date, g.location())
	if err != nil {
		return Virtual{}, false
	}

	res := g.Generate(clientID, rule, nil, w, nil)
	if len(res.Occurrences) == 0 {
		return Virtual{}, false
	}

	return res.Occurrences[0], true
}

// SlotsOf indexes the slots occupied by appointments.
func SlotsOf(appointments []models.Appointment) map[models.Slot]struct{} {
	slots := make(map[models.Slot]struct{}, len(appointments))
	for _, a := range appointments {
		slots[a.Slot()] = struct{}{}
	}
	return slots
}
