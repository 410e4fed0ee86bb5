package recurrence

import (
	"sort"

	"practice-scheduler/internal/models"
)

// Events is the merged view of a window.
type Events struct {
	Occurrences []Occurrence
	// TruncatedClients lists clients whose generation hit a step cap.
	TruncatedClients []string
}

// ListEvents merges real appointments falling inside w with the virtual
// occurrences of every client's active rule. Each (client, date, time) slot
// appears at most once: real appointments win over virtual occurrences, and
// a second real appointment on an already seen slot is dropped.
// The result is sorted by date, time, then client.
func (g Generator) ListEvents(clients []models.Client, appointments []models.Appointment, w Window) Events {
	var out Events

	if w.Empty() {
		return out
	}

	from, to := w.Dates(g.location())

	byClient := make(map[string][]models.Appointment)
	seen := make(map[string]map[models.Slot]struct{})

	for _, a := range appointments {
		if a.Date < from || a.Date > to {
			continue
		}

		slots, ok := seen[a.ClientID]
		if !ok {
			slots = make(map[models.Slot]struct{})
			seen[a.ClientID] = slots
		}
		if _, dup := slots[a.Slot()]; dup {
			continue
		}
		slots[a.Slot()] = struct{}{}

		byClient[a.ClientID] = append(byClient[a.ClientID], a)
		out.Occurrences = append(out.Occurrences, Real{Appointment: a})
	}

	for _, c := range clients {
		if !c.HasActiveRecurrence() {
			continue
		}

		res := g.Generate(
			c.ID,
			*c.Recurrence,
			Ledger(c.Recurrence.Exceptions).Dates(),
			w,
			SlotsOf(byClient[c.ID]),
		)
		if res.Truncated {
			out.TruncatedClients = append(out.TruncatedClients, c.ID)
		}

		for _, v := range res.Occurrences {
			out.Occurrences = append(out.Occurrences, v)
		}
	}

	sort.SliceStable(out.Occurrences, func(i, j int) bool {
		a, b := out.Occurrences[i].Slot(), out.Occurrences[j].Slot()
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return out.Occurrences[i].Client() < out.Occurrences[j].Client()
	})

	return out
}
