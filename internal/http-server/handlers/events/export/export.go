package export

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"practice-scheduler/pkg/response"
	"practice-scheduler/pkg/sl"
)

type CalendarExporter interface {
	ExportCalendar(ctx context.Context, userID, from, to string) (string, error)
}

func New(log *slog.Logger, exporter CalendarExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.events.export.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		q := r.URL.Query()
		userID, from, to := q.Get("user_id"), q.Get("from"), q.Get("to")

		if userID == "" || from == "" || to == "" {
			log.Error("missing query parameters")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "user_id, from and to are required"))
			return
		}

		feed, err := exporter.ExportCalendar(r.Context(), userID, from, to)
		if err != nil {
			log.Error("Failed to export calendar", sl.Err(err))
			status, resp := response.FromError(err, "failed to export calendar")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="appointments.ics"`)
		w.WriteHeader(http.StatusOK)

		if _, err := io.WriteString(w, feed); err != nil {
			log.Error("Failed to write calendar", sl.Err(err))
		}
	}
}
