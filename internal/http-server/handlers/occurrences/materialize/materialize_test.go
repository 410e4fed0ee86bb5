package materialize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"practice-scheduler/internal/models"
	"practice-scheduler/internal/service"
	"practice-scheduler/pkg/response"
)

type materializerFunc func(ctx context.Context, req service.MaterializeRequest) (*service.MaterializeResult, error)

func (f materializerFunc) Materialize(ctx context.Context, req service.MaterializeRequest) (*service.MaterializeResult, error) {
	return f(ctx, req)
}

func draft() models.Appointment {
	return models.Appointment{
		ClientID:        "c1",
		Date:            "2024-01-16",
		Time:            "11:00",
		DurationMinutes: 50,
		Value:           decimal.NewFromInt(100),
		Status:          models.StatusScheduled,
		PaymentStatus:   models.PaymentPending,
	}
}

func TestNew(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		res        *service.MaterializeResult
		err        error
		wantStatus int
		wantCode   string
		wantID     string
		wantResult bool
	}{
		{
			name: "created",
			body: `{"client_id":"c1","original_date":"2024-01-15","target_date":"2024-01-16","target_time":"11:00"}`,
			res: func() *service.MaterializeResult {
				a := draft()
				a.ID = "a1"
				return &service.MaterializeResult{Appointment: a, ExceptionRecorded: true}
			}(),
			wantStatus: http.StatusCreated,
			wantID:     "a1",
			wantResult: true,
		},
		{
			name:       "partial failure returns the draft",
			body:       `{"client_id":"c1","original_date":"2024-01-15"}`,
			res:        &service.MaterializeResult{Appointment: draft(), ExceptionRecorded: true},
			err:        fmt.Errorf("service.Materialize: %w: %w", response.ErrAppointmentNotCreated, io.ErrUnexpectedEOF),
			wantStatus: http.StatusBadGateway,
			wantCode:   string(response.APPOINTMENT_NOT_CREATED),
			wantResult: true,
		},
		{
			name:       "exception not recorded",
			body:       `{"client_id":"c1","original_date":"2024-01-15"}`,
			err:        fmt.Errorf("service.Materialize: %w", response.ErrExceptionNotRecorded),
			wantStatus: http.StatusBadGateway,
			wantCode:   string(response.EXCEPTION_NOT_RECORDED),
		},
		{
			name:       "conflict",
			body:       `{"client_id":"c1","original_date":"2024-01-15"}`,
			err:        fmt.Errorf("service.Materialize: %w", response.ErrConflict),
			wantStatus: http.StatusConflict,
			wantCode:   string(response.CONFLICT),
		},
		{
			name:       "locked",
			body:       `{"client_id":"c1","original_date":"2024-01-15"}`,
			err:        fmt.Errorf("service.Materialize: %w", response.ErrLocked),
			wantStatus: http.StatusLocked,
			wantCode:   string(response.LOCKED),
		},
		{
			name:       "no occurrence",
			body:       `{"client_id":"c1","original_date":"2024-01-14"}`,
			err:        fmt.Errorf("service.Materialize: %w", response.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   string(response.NOT_FOUND),
		},
		{
			name:       "missing original date",
			body:       `{"client_id":"c1"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(response.BAD_REQUEST),
		},
		{
			name:       "malformed body",
			body:       `{"client_id":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(response.BAD_REQUEST),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), materializerFunc(
				func(_ context.Context, _ service.MaterializeRequest) (*service.MaterializeResult, error) {
					return tc.res, tc.err
				},
			))

			req := httptest.NewRequest(http.MethodPost, "/occurrences/materialize", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

			assert.Equal(t, tc.wantCode, resp.Code)
			if !tc.wantResult {
				assert.Nil(t, resp.Result)
				return
			}

			require.NotNil(t, resp.Result)
			assert.True(t, resp.Result.ExceptionRecorded)
			assert.Equal(t, tc.wantID, resp.Result.Appointment.ID)
			assert.Equal(t, "2024-01-16", resp.Result.Appointment.Date)
			assert.True(t, decimal.NewFromInt(100).Equal(resp.Result.Appointment.Value))
		})
	}
}

func TestToService(t *testing.T) {
	value := decimal.NewFromInt(80)
	duration := 30
	status := "done"
	notes := "moved"

	got := toService(Request{}.MaterializeRequest)
	assert.Equal(t, service.MaterializeRequest{}, got)

	req := Request{}
	req.ClientID = "c1"
	req.OriginalDate = "2024-01-15"
	req.OriginalTime = "10:00"
	req.TargetDate = "2024-01-16"
	req.Value = &value
	req.Duration = &duration
	req.Status = &status
	req.Notes = &notes

	got = toService(req.MaterializeRequest)

	assert.Equal(t, models.Slot{Date: "2024-01-15", Time: "10:00"}, got.Original)
	assert.Equal(t, models.Slot{Date: "2024-01-16"}, got.Target)
	require.NotNil(t, got.Overrides.Status)
	assert.Equal(t, models.StatusDone, *got.Overrides.Status)
	assert.Nil(t, got.Overrides.PaymentStatus)
	assert.Equal(t, &duration, got.Overrides.DurationMinutes)
	assert.Equal(t, &notes, got.Overrides.Notes)
}
