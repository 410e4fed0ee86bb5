package models

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultDurationMinutes = 60
	MaxDurationMinutes     = 480
	MaxNotesLength         = 500

	// ValuePlaces is the scale of the value column.
	ValuePlaces = 2
)

var MaxValue = decimal.NewFromInt(999999)

// HasValuePrecision reports whether v fits in ValuePlaces decimal places.
func HasValuePrecision(v decimal.Decimal) bool {
	return v.Equal(v.Round(ValuePlaces))
}

// NotesFit reports whether notes are within MaxNotesLength characters.
func NotesFit(notes string) bool {
	return utf8.RuneCountInString(notes) <= MaxNotesLength
}

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

type ExceptionType string

const (
	ExceptionCancelled   ExceptionType = "cancelled"
	ExceptionRescheduled ExceptionType = "rescheduled"
)

// ExceptionEntry overrides the occurrence the rule would have produced on Date.
// NewDate/NewTime are set only for rescheduled entries.
type ExceptionEntry struct {
	Date    string        `json:"date"`
	Type    ExceptionType `json:"type"`
	NewDate string        `json:"newDate,omitempty"`
	NewTime string        `json:"newTime,omitempty"`
}

// Recurrence is a client's repeating schedule plus its exception ledger.
// It is stored as a single JSON document on the client row.
type Recurrence struct {
	Frequency       Frequency        `json:"frequency"`
	AnchorDate      string           `json:"anchorDate,omitempty"`
	AnchorTime      string           `json:"anchorTime,omitempty"`
	DurationMinutes int              `json:"duration,omitempty"`
	Value           *decimal.Decimal `json:"value,omitempty"`
	Active          bool             `json:"active"`
	Exceptions      []ExceptionEntry `json:"exceptions,omitempty"`
}

type Client struct {
	ID         string
	UserID     string
	Name       string
	Recurrence *Recurrence
}

// HasActiveRecurrence reports whether the client's rule should generate occurrences.
func (c Client) HasActiveRecurrence() bool {
	return c.Recurrence != nil && c.Recurrence.Active
}

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusDone      AppointmentStatus = "done"
	StatusCanceled  AppointmentStatus = "canceled"
	StatusNoShow    AppointmentStatus = "noShow"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusDone, StatusCanceled, StatusNoShow:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentPending  PaymentStatus = "pending"
	PaymentLate     PaymentStatus = "late"
	PaymentCanceled PaymentStatus = "canceled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentLate, PaymentCanceled:
		return true
	}
	return false
}

// Slot is the (date, time) pair an occurrence is keyed by within one client.
type Slot struct {
	Date string
	Time string
}

func (s Slot) Validate() error {
	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return fmt.Errorf("invalid date %q", s.Date)
	}
	if _, err := time.Parse(TimeLayout, s.Time); err != nil {
		return fmt.Errorf("invalid time %q", s.Time)
	}
	return nil
}

type Appointment struct {
	ID              string
	UserID          string
	ClientID        string
	Date            string
	Time            string
	DurationMinutes int
	Value           decimal.Decimal
	Status          AppointmentStatus
	PaymentStatus   PaymentStatus
	Notes           string
}

func (a Appointment) Slot() Slot {
	return Slot{Date: a.Date, Time: a.Time}
}

// Validate applies the persistence rules every appointment must satisfy.
func (a Appointment) Validate() error {
	var errs []error

	if a.ClientID == "" {
		errs = append(errs, errors.New("client_id is required"))
	}
	if err := a.Slot().Validate(); err != nil {
		errs = append(errs, err)
	}
	if a.DurationMinutes <= 0 || a.DurationMinutes > MaxDurationMinutes {
		errs = append(errs, fmt.Errorf("duration must be in (0, %d] minutes", MaxDurationMinutes))
	}
	if !a.Value.IsPositive() || a.Value.GreaterThan(MaxValue) {
		errs = append(errs, fmt.Errorf("value must be in (0, %s]", MaxValue))
	}
	if !HasValuePrecision(a.Value) {
		errs = append(errs, fmt.Errorf("value must have at most %d decimal places", ValuePlaces))
	}
	if !a.Status.Valid() {
		errs = append(errs, fmt.Errorf("invalid status %q", a.Status))
	}
	if !a.PaymentStatus.Valid() {
		errs = append(errs, fmt.Errorf("invalid payment status %q", a.PaymentStatus))
	}
	if !NotesFit(a.Notes) {
		errs = append(errs, fmt.Errorf("notes must be at most %d characters", MaxNotesLength))
	}

	return errors.Join(errs...)
}

// AppointmentPatch carries the fields an existing appointment may change.
type AppointmentPatch struct {
	Status        *AppointmentStatus
	PaymentStatus *PaymentStatus
	Notes         *string
}

func (p AppointmentPatch) Empty() bool {
	return p.Status == nil && p.PaymentStatus == nil && p.Notes == nil
}
