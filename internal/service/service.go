package service

import (
	"context"
	"log/slog"
	"time"

	"practice-scheduler/internal/lock"
	"practice-scheduler/internal/models"
	"practice-scheduler/internal/recurrence"
)

// AppointmentStore persists concrete appointments. Dates are YYYY-MM-DD and
// ranges are inclusive.
type AppointmentStore interface {
	ListByClientInRange(ctx context.Context, clientID, from, to string) ([]models.Appointment, error)
	ListByUserInRange(ctx context.Context, userID, from, to string) ([]models.Appointment, error)
	CreateAppointment(ctx context.Context, a models.Appointment) (string, error)
	UpdateAppointment(ctx context.Context, id string, patch models.AppointmentPatch) error
}

// ClientStore persists clients and their recurrence documents.
// AppendException must add one entry without clobbering entries appended
// concurrently.
type ClientStore interface {
	GetClient(ctx context.Context, clientID string) (*models.Client, error)
	ListActiveWithRecurrence(ctx context.Context, userID string) ([]models.Client, error)
	ListUserIDsWithRecurrence(ctx context.Context) ([]string, error)
	UpdateRecurrence(ctx context.Context, clientID string, r *models.Recurrence) error
	AppendException(ctx context.Context, clientID string, e models.ExceptionEntry) error
}

type Options struct {
	Location *time.Location
	MaxSteps int

	// Zero means DefaultSyncDays. NoSyncDays limits that side of the sync
	// window to now.
	TrailingDays int
	LeadingDays  int
	Concurrency  int

	LockTTL  time.Duration
	AutoNote string

	Now func() time.Time
}

const (
	DefaultSyncDays    = 7
	NoSyncDays         = -1
	DefaultConcurrency = 4
	DefaultLockTTL     = 10 * time.Second
	DefaultAutoNote    = "auto-generated from recurrence"
)

type Service struct {
	log          *slog.Logger
	appointments AppointmentStore
	clients      ClientStore
	locker       lock.Locker
	generator    recurrence.Generator
	opts         Options
}

func NewService(
	log *slog.Logger,
	appointments AppointmentStore,
	clients ClientStore,
	locker lock.Locker,
	opts Options,
) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.TrailingDays == 0 {
		opts.TrailingDays = DefaultSyncDays
	}
	if opts.LeadingDays == 0 {
		opts.LeadingDays = DefaultSyncDays
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = DefaultLockTTL
	}
	if opts.AutoNote == "" {
		opts.AutoNote = DefaultAutoNote
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		log:          log,
		appointments: appointments,
		clients:      clients,
		locker:       locker,
		generator:    recurrence.Generator{Location: opts.Location, MaxSteps: opts.MaxSteps},
		opts:         opts,
	}
}

func (s *Service) Location() *time.Location {
	return s.opts.Location
}
