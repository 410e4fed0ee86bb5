package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC)
}

func TestScheduler_Schedule(t *testing.T) {
	s := newTestScheduler()

	testCases := []struct {
		spec    string
		wantErr bool
	}{
		{spec: "@every 15m"},
		{spec: "*/10 * * * *"},
		{spec: "0 */5 * * * *"},
		{spec: "@hourly"},
		{spec: "every day", wantErr: true},
		{spec: "61 * * * *", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.spec, func(t *testing.T) {
			_, err := s.Schedule("sync", tc.spec, func(context.Context) error { return nil })
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Len(t, s.cron.Entries(), 4)
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := newTestScheduler()

	ran := make(chan struct{}, 1)
	_, err := s.Schedule("tick", "@every 1s", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return errors.New("ignored")
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := newTestScheduler()

	var got context.Context
	s.wrap("capture", func(ctx context.Context) error {
		got = ctx
		return nil
	})()

	require.NotNil(t, got)
	assert.NoError(t, got.Err())

	s.Stop()
	assert.ErrorIs(t, got.Err(), context.Canceled)
}
