package recurrence

import (
	"github.com/shopspring/decimal"

	"practice-scheduler/internal/models"
)

// Occurrence is either a Virtual projection of a rule or a Real persisted
// appointment. Consumers switch on the concrete type.
type Occurrence interface {
	Client() string
	Slot() models.Slot
	isOccurrence()
}

// Virtual is a rule-generated occurrence that has not been persisted.
type Virtual struct {
	ClientID        string
	Date            string
	Time            string
	DurationMinutes int
	Value           decimal.Decimal
}

func (v Virtual) Client() string    { return v.ClientID }
func (v Virtual) Slot() models.Slot { return models.Slot{Date: v.Date, Time: v.Time} }
func (Virtual) isOccurrence()       {}

// Real wraps a persisted appointment.
type Real struct {
	Appointment models.Appointment
}

func (r Real) Client() string    { return r.Appointment.ClientID }
func (r Real) Slot() models.Slot { return r.Appointment.Slot() }
func (Real) isOccurrence()       {}
