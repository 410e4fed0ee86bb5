package update

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"practice-scheduler/api"
	"practice-scheduler/internal/models"
	"practice-scheduler/pkg/response"
	"practice-scheduler/pkg/sl"
)

type AppointmentUpdater interface {
	UpdateAppointment(ctx context.Context, id string, patch models.AppointmentPatch) error
}

type Request struct {
	api.AppointmentPatchRequest
}

func New(log *slog.Logger, updater AppointmentUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.update.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if err := updater.UpdateAppointment(r.Context(), id, req.ToModel()); err != nil {
			log.Error("Failed to update appointment", sl.Err(err))
			status, resp := response.FromError(err, "failed to update appointment")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Appointment updated", slog.String("appointment_id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}
