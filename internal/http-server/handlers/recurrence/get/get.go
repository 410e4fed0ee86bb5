package get

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

type RecurrenceGetter interface {
	GetRecurrence(ctx context.Context, clientID string) (*models.Recurrence, error)
}

type Response struct {
	response.Response
	Recurrence *api.Recurrence `json:"recurrence,omitempty"`
}

func New(log *slog.Logger, getter RecurrenceGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.recurrence.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		clientID := chi.URLParam(r, "id")

		rule, err := getter.GetRecurrence(r.Context(), clientID)
		if err != nil {
			log.Error("Failed to get recurrence", sl.Err(err))
			status, resp := response.FromError(err, "failed to get recurrence")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		out := api.RecurrenceFromModel(rule)
		render.JSON(w, r, Response{Recurrence: &out})
	}
}
