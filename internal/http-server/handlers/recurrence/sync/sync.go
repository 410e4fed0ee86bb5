package sync

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

type UserSyncer interface {
	SyncUser(ctx context.Context, userID string) ([]models.Appointment, error)
}

type Request struct {
	api.SyncRequest
}

type Response struct {
	response.Response
	Created []api.Appointment `json:"created"`
}

func New(log *slog.Logger, syncer UserSyncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.recurrence.sync.New"

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

		if req.UserID == "" {
			log.Error("user_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "user_id is required"))
			return
		}

		created, err := syncer.SyncUser(r.Context(), req.UserID)
		if err != nil {
			log.Error("Failed to sync recurrences", sl.Err(err))
			status, resp := response.FromError(err, "failed to sync recurrences")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		out := make([]api.Appointment, 0, len(created))
		for _, a := range created {
			out = append(out, api.AppointmentFromModel(a))
		}

		log.Info("Recurrences synced", slog.String("user_id", req.UserID), slog.Int("created", len(out)))

		render.JSON(w, r, Response{Created: out})
	}
}
