package api

import (
	"github.com/shopspring/decimal"

	"practice-scheduler/internal/models"
	"practice-scheduler/internal/recurrence"
)

const (
	KindVirtual = "virtual"
	KindReal    = "real"
)

type Event struct {
	Kind          string          `json:"kind"`
	ID            string          `json:"id,omitempty"`
	ClientID      string          `json:"client_id"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	Duration      int             `json:"duration"`
	Value         decimal.Decimal `json:"value"`
	Status        string          `json:"status,omitempty"`
	PaymentStatus string          `json:"payment_status,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

func EventFromOccurrence(o recurrence.Occurrence) Event {
	switch v := o.(type) {
	case recurrence.Real:
		a := AppointmentFromModel(v.Appointment)
		return Event{
			Kind:          KindReal,
			ID:            a.ID,
			ClientID:      a.ClientID,
			Date:          a.Date,
			Time:          a.Time,
			Duration:      a.Duration,
			Value:         a.Value,
			Status:        a.Status,
			PaymentStatus: a.PaymentStatus,
			Notes:         a.Notes,
		}
	case recurrence.Virtual:
		return Event{
			Kind:     KindVirtual,
			ClientID: v.ClientID,
			Date:     v.Date,
			Time:     v.Time,
			Duration: v.DurationMinutes,
			Value:    v.Value,
		}
	}
	return Event{}
}

type Appointment struct {
	ID            string          `json:"id,omitempty"`
	ClientID      string          `json:"client_id"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	Duration      int             `json:"duration"`
	Value         decimal.Decimal `json:"value"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Notes         string          `json:"notes,omitempty"`
}

func AppointmentFromModel(a models.Appointment) Appointment {
	return Appointment{
		ID:            a.ID,
		ClientID:      a.ClientID,
		Date:          a.Date,
		Time:          a.Time,
		Duration:      a.DurationMinutes,
		Value:         a.Value,
		Status:        string(a.Status),
		PaymentStatus: string(a.PaymentStatus),
		Notes:         a.Notes,
	}
}

func (a Appointment) ToModel() models.Appointment {
	return models.Appointment{
		ID:              a.ID,
		ClientID:        a.ClientID,
		Date:            a.Date,
		Time:            a.Time,
		DurationMinutes: a.Duration,
		Value:           a.Value,
		Status:          models.AppointmentStatus(a.Status),
		PaymentStatus:   models.PaymentStatus(a.PaymentStatus),
		Notes:           a.Notes,
	}
}

type MaterializeRequest struct {
	ClientID      string           `json:"client_id"`
	OriginalDate  string           `json:"original_date"`
	OriginalTime  string           `json:"original_time,omitempty"`
	TargetDate    string           `json:"target_date,omitempty"`
	TargetTime    string           `json:"target_time,omitempty"`
	Value         *decimal.Decimal `json:"value,omitempty"`
	Duration      *int             `json:"duration,omitempty"`
	Status        *string          `json:"status,omitempty"`
	PaymentStatus *string          `json:"payment_status,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

type MaterializeResponse struct {
	Appointment       Appointment `json:"appointment"`
	ExceptionRecorded bool        `json:"exception_recorded"`
}

type CancelOccurrenceRequest struct {
	ClientID string `json:"client_id"`
	Date     string `json:"date"`
}

type SyncRequest struct {
	UserID string `json:"user_id"`
}

type RecurrenceRequest struct {
	Frequency  string           `json:"frequency"`
	AnchorDate string           `json:"anchor_date"`
	AnchorTime string           `json:"anchor_time"`
	Duration   int              `json:"duration,omitempty"`
	Value      *decimal.Decimal `json:"value,omitempty"`
	Active     *bool            `json:"active,omitempty"`
}

type Exception struct {
	Date    string `json:"date"`
	Type    string `json:"type"`
	NewDate string `json:"new_date,omitempty"`
	NewTime string `json:"new_time,omitempty"`
}

type Recurrence struct {
	Frequency  string           `json:"frequency"`
	AnchorDate string           `json:"anchor_date,omitempty"`
	AnchorTime string           `json:"anchor_time,omitempty"`
	Duration   int              `json:"duration"`
	Value      *decimal.Decimal `json:"value,omitempty"`
	Active     bool             `json:"active"`
	Exceptions []Exception      `json:"exceptions"`
}

func RecurrenceFromModel(r *models.Recurrence) Recurrence {
	out := Recurrence{
		Frequency:  string(r.Frequency),
		AnchorDate: r.AnchorDate,
		AnchorTime: r.AnchorTime,
		Duration:   recurrence.DurationOf(*r),
		Value:      r.Value,
		Active:     r.Active,
		Exceptions: make([]Exception, 0, len(r.Exceptions)),
	}

	for _, e := range r.Exceptions {
		out.Exceptions = append(out.Exceptions, ExceptionFromModel(e))
	}

	return out
}

func ExceptionFromModel(e models.ExceptionEntry) Exception {
	return Exception{
		Date:    e.Date,
		Type:    string(e.Type),
		NewDate: e.NewDate,
		NewTime: e.NewTime,
	}
}

type AppointmentPatchRequest struct {
	Status        *string `json:"status,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

func (p AppointmentPatchRequest) ToModel() models.AppointmentPatch {
	var patch models.AppointmentPatch

	if p.Status != nil {
		s := models.AppointmentStatus(*p.Status)
		patch.Status = &s
	}
	if p.PaymentStatus != nil {
		s := models.PaymentStatus(*p.PaymentStatus)
		patch.PaymentStatus = &s
	}
	patch.Notes = p.Notes

	return patch
}
