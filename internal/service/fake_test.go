package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"practice-scheduler/internal/lock"
	"practice-scheduler/internal/models"
	"practice-scheduler/pkg/response"
)

var errStore = errors.New("store unavailable")

// memStore is a stateful in-memory AppointmentStore and ClientStore.
type memStore struct {
	mu           sync.Mutex
	clients      map[string]*models.Client
	appointments []models.Appointment
	seq          int

	// Hooks returning a non-nil error make the matching call fail.
	CreateAppointmentFunc func(a models.Appointment) error
	AppendExceptionFunc   func(clientID string, e models.ExceptionEntry) error
	ListByClientFunc      func(clientID string) error

	calls []string
}

func newMemStore(clients ...models.Client) *memStore {
	m := &memStore{clients: make(map[string]*models.Client)}
	for i := range clients {
		m.clients[clients[i].ID] = cloneClient(&clients[i])
	}
	return m
}

func (m *memStore) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *memStore) ListByClientInRange(_ context.Context, clientID, from, to string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListByClientFunc != nil {
		if err := m.ListByClientFunc(clientID); err != nil {
			return nil, err
		}
	}

	var out []models.Appointment
	for _, a := range m.appointments {
		if a.ClientID == clientID && a.Date >= from && a.Date <= to {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ListByUserInRange(_ context.Context, userID, from, to string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Appointment
	for _, a := range m.appointments {
		if a.UserID == userID && a.Date >= from && a.Date <= to {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) CreateAppointment(_ context.Context, a models.Appointment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("CreateAppointment")

	if m.CreateAppointmentFunc != nil {
		if err := m.CreateAppointmentFunc(a); err != nil {
			return "", err
		}
	}

	// Mirrors the unique (client_id, date, time) index of the postgres store.
	for _, existing := range m.appointments {
		if existing.ClientID == a.ClientID && existing.Slot() == a.Slot() {
			return "", response.ErrConflict
		}
	}

	m.seq++
	a.ID = fmt.Sprintf("a%d", m.seq)
	m.appointments = append(m.appointments, a)
	return a.ID, nil
}

func (m *memStore) UpdateAppointment(_ context.Context, id string, patch models.AppointmentPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.appointments {
		if m.appointments[i].ID != id {
			continue
		}
		if patch.Status != nil {
			m.appointments[i].Status = *patch.Status
		}
		if patch.PaymentStatus != nil {
			m.appointments[i].PaymentStatus = *patch.PaymentStatus
		}
		if patch.Notes != nil {
			m.appointments[i].Notes = *patch.Notes
		}
		return nil
	}
	return response.ErrNotFound
}

func (m *memStore) GetClient(_ context.Context, clientID string) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[clientID]
	if !ok {
		return nil, response.ErrNotFound
	}
	return cloneClient(c), nil
}

func (m *memStore) ListActiveWithRecurrence(_ context.Context, userID string) ([]models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Client
	for _, c := range m.clients {
		if c.UserID == userID && c.HasActiveRecurrence() {
			out = append(out, *cloneClient(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListUserIDsWithRecurrence(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{})
	var out []string
	for _, c := range m.clients {
		if _, ok := seen[c.UserID]; ok || !c.HasActiveRecurrence() {
			continue
		}
		seen[c.UserID] = struct{}{}
		out = append(out, c.UserID)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) UpdateRecurrence(_ context.Context, clientID string, r *models.Recurrence) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[clientID]
	if !ok {
		return response.ErrNotFound
	}
	c.Recurrence = r
	return nil
}

func (m *memStore) AppendException(_ context.Context, clientID string, e models.ExceptionEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("AppendException")

	if m.AppendExceptionFunc != nil {
		if err := m.AppendExceptionFunc(clientID, e); err != nil {
			return err
		}
	}

	c, ok := m.clients[clientID]
	if !ok || c.Recurrence == nil {
		return response.ErrNotFound
	}
	c.Recurrence.Exceptions = append(c.Recurrence.Exceptions, e)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.appointments)
}

func cloneClient(c *models.Client) *models.Client {
	out := *c
	if c.Recurrence != nil {
		r := *c.Recurrence
		r.Exceptions = append([]models.ExceptionEntry(nil), c.Recurrence.Exceptions...)
		out.Recurrence = &r
	}
	return &out
}

// heldLocker refuses every key in held.
type heldLocker struct {
	lock.Locker
	held map[string]bool
}

func (h heldLocker) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if h.held[key] {
		return false, nil
	}
	return h.Locker.Lock(ctx, key, ttl)
}

func newTestService(store *memStore, locker lock.Locker, now time.Time) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return NewService(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		store,
		store,
		locker,
		Options{
			TrailingDays: 7,
			LeadingDays:  7,
			Now:          func() time.Time { return now },
		},
	)
}
