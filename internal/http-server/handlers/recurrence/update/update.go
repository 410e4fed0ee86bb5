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
	"practice-scheduler/internal/service"
	"practice-scheduler/pkg/response"
	"practice-scheduler/pkg/sl"
)

type RecurrenceUpdater interface {
	UpdateRecurrence(ctx context.Context, clientID string, in service.RecurrenceInput) (*models.Recurrence, error)
}

type Request struct {
	api.RecurrenceRequest
}

type Response struct {
	response.Response
	Recurrence *api.Recurrence `json:"recurrence,omitempty"`
}

func New(log *slog.Logger, updater RecurrenceUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.recurrence.update.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		clientID := chi.URLParam(r, "id")

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		rule, err := updater.UpdateRecurrence(r.Context(), clientID, service.RecurrenceInput{
			Frequency:       models.Frequency(req.Frequency),
			AnchorDate:      req.AnchorDate,
			AnchorTime:      req.AnchorTime,
			DurationMinutes: req.Duration,
			Value:           req.Value,
			Active:          req.Active,
		})
		if err != nil {
			log.Error("Failed to update recurrence", sl.Err(err))
			status, resp := response.FromError(err, "failed to update recurrence")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Recurrence updated", slog.String("client_id", clientID))

		out := api.RecurrenceFromModel(rule)
		render.JSON(w, r, Response{Recurrence: &out})
	}
}
