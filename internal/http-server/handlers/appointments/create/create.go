package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"practice-scheduler/api"
	"practice-scheduler/internal/models"
	"practice-scheduler/pkg/response"
	"practice-scheduler/pkg/sl"
)

type AppointmentCreator interface {
	CreateAppointment(ctx context.Context, a models.Appointment) (*models.Appointment, error)
}

type Request struct {
	api.Appointment
}

type Response struct {
	response.Response
	Appointment *api.Appointment `json:"appointment,omitempty"`
}

func New(log *slog.Logger, creator AppointmentCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		a := req.ToModel()
		a.ID = ""

		created, err := creator.CreateAppointment(r.Context(), a)
		if err != nil {
			log.Error("Failed to create appointment", sl.Err(err))
			status, resp := response.FromError(err, "failed to create appointment")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Appointment created", slog.String("appointment_id", created.ID))

		out := api.AppointmentFromModel(*created)
		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Appointment: &out})
	}
}
