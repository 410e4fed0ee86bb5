package recurrence

import "practice-scheduler/internal/models"

// Ledger is the append-only list of exceptions recorded against one client's rule.
type Ledger []models.ExceptionEntry

// Dates returns the set of original occurrence dates that have any exception.
func (l Ledger) Dates() map[string]struct{} {
	dates := make(map[string]struct{}, len(l))
	for _, e := range l {
		dates[e.Date] = struct{}{}
	}
	return dates
}

// Lookup returns the exception for date. Duplicate entries are tolerated and
// the last one recorded wins.
func (l Ledger) Lookup(date string) (models.ExceptionEntry, bool) {
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].Date == date {
			return l[i], true
		}
	}
	return models.ExceptionEntry{}, false
}

// Append returns a new ledger with e added. The receiver is not modified.
func (l Ledger) Append(e models.ExceptionEntry) Ledger {
	out := make(Ledger, 0, len(l)+1)
	out = append(out, l...)
	return append(out, e)
}
