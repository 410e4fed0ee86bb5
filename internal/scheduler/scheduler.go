package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"practice-scheduler/pkg/sl"
)

// Job is a unit of background work. Its context is cancelled by Stop.
type Job func(ctx context.Context) error

// Scheduler wraps cron-based jobs.
type Scheduler struct {
	log    *slog.Logger
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// Specs accept an optional leading seconds field as well as descriptors
// such as "@every 15m" or "@hourly".
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func New(log *slog.Logger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}

	logger := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		log: log,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithParser(parser),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule registers job under spec. Overlapping runs of the same job are
// skipped.
func (s *Scheduler) Schedule(name, spec string, job Job) (cron.EntryID, error) {
	const op = "scheduler.Schedule"

	id, err := s.cron.AddFunc(spec, s.wrap(name, job))
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", op, name, err)
	}

	s.log.Info("job scheduled", slog.String("job", name), slog.String("spec", spec))

	return id, nil
}

func (s *Scheduler) wrap(name string, job Job) func() {
	log := s.log.With(slog.String("job", name))

	return func() {
		start := time.Now()

		if err := job(s.ctx); err != nil {
			log.Error("job failed", sl.Err(err), slog.Duration("took", time.Since(start)))
			return
		}

		log.Debug("job finished", slog.Duration("took", time.Since(start)))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append([]any{sl.Err(err)}, keysAndValues...)...)
}
