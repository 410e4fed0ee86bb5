package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"

	"practice-scheduler/internal/config"
	appointmentCreate "practice-scheduler/internal/http-server/handlers/appointments/create"
	appointmentUpdate "practice-scheduler/internal/http-server/handlers/appointments/update"
	eventsExport "practice-scheduler/internal/http-server/handlers/events/export"
	eventsList "practice-scheduler/internal/http-server/handlers/events/list"
	occurrenceCancel "practice-scheduler/internal/http-server/handlers/occurrences/cancel"
	occurrenceMaterialize "practice-scheduler/internal/http-server/handlers/occurrences/materialize"
	recurrenceGet "practice-scheduler/internal/http-server/handlers/recurrence/get"
	recurrenceSync "practice-scheduler/internal/http-server/handlers/recurrence/sync"
	recurrenceUpdate "practice-scheduler/internal/http-server/handlers/recurrence/update"
	"practice-scheduler/internal/http-server/middleware/ratelimit"
	"practice-scheduler/internal/lock"
	"practice-scheduler/internal/scheduler"
	svc "practice-scheduler/internal/service"
	"practice-scheduler/internal/storage/cached"
	"practice-scheduler/internal/storage/postgres"
	slogpretty "practice-scheduler/pkg/handlers/slogPretty"
	"practice-scheduler/pkg/middleware/mwLogger"
	"practice-scheduler/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env), slog.String("timezone", cfg.Timezone))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		log.Error("Failed to migrate storage", sl.Err(err))
		os.Exit(1)
	}

	clients := cached.New(storage, cfg.Cache.TTL, cfg.Cache.CleanupInterval)

	var locker lock.Locker
	if cfg.RedisAddr != "" {
		redisLock, err := lock.NewRedisLock(context.Background(), cfg.RedisAddr)
		if err != nil {
			log.Error("Failed to init redis lock", sl.Err(err))
			os.Exit(1)
		}
		locker = redisLock
	} else {
		log.Warn("redis_addr is empty, using in-process lock")
		locker = lock.NewLocal()
	}

	loc := cfg.Location()

	service := svc.NewService(log, storage, clients, locker, svc.Options{
		Location:     loc,
		MaxSteps:     cfg.Recurrence.MaxSteps,
		TrailingDays: cfg.Recurrence.SyncTrailingDays,
		LeadingDays:  cfg.Recurrence.SyncLeadingDays,
		Concurrency:  cfg.Recurrence.SyncConcurrency,
		LockTTL:      cfg.Recurrence.LockTTL,
		AutoNote:     cfg.Recurrence.AutoNote,
	})

	sched := scheduler.New(log, loc)

	syncAll := func(ctx context.Context) error {
		_, err := service.SyncAll(ctx)
		return err
	}

	if _, err := sched.Schedule("recurrence-sync", cfg.Recurrence.SyncCron, syncAll); err != nil {
		log.Error("Failed to schedule recurrence sync", sl.Err(err))
		os.Exit(1)
	}

	sched.Start()

	// Catch up once at boot instead of waiting for the first tick.
	go func() {
		if err := syncAll(context.Background()); err != nil {
			log.Error("Initial recurrence sync failed", sl.Err(err))
		}
	}()

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(ratelimit.New(log, cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	router.Use(CORS)

	// Events
	router.Get("/events", eventsList.New(log, service))
	router.Get("/events/export", eventsExport.New(log, service))

	// Occurrences
	router.Post("/occurrences/materialize", occurrenceMaterialize.New(log, service))
	router.Post("/occurrences/cancel", occurrenceCancel.New(log, service))

	// Recurrence
	router.Get("/clients/{id}/recurrence", recurrenceGet.New(log, service))
	router.Put("/clients/{id}/recurrence", recurrenceUpdate.New(log, service))
	router.Post("/recurrence/sync", recurrenceSync.New(log, service))

	// Appointments
	router.Post("/appointments", appointmentCreate.New(log, service))
	router.Patch("/appointments/{id}", appointmentUpdate.New(log, service))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	sched.Stop()
	log.Info("Scheduler stopped")

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if closer, ok := locker.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		} else {
			log.Info("Locker closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
