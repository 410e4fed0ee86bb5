package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"practice-scheduler/api"
	"practice-scheduler/internal/recurrence"
	"practice-scheduler/pkg/response"
	"practice-scheduler/pkg/sl"
)

type EventLister interface {
	ListEvents(ctx context.Context, userID, from, to string) (recurrence.Events, error)
}

type Response struct {
	response.Response
	Events           []api.Event `json:"events"`
	TruncatedClients []string    `json:"truncated_clients,omitempty"`
}

func New(log *slog.Logger, lister EventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.events.list.New"

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

		events, err := lister.ListEvents(r.Context(), userID, from, to)
		if err != nil {
			log.Error("Failed to list events", sl.Err(err))
			status, resp := response.FromError(err, "failed to list events")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		out := make([]api.Event, 0, len(events.Occurrences))
		for _, o := range events.Occurrences {
			out = append(out, api.EventFromOccurrence(o))
		}

		log.Info("Events listed", slog.Int("count", len(out)))

		render.JSON(w, r, Response{
			Events:           out,
			TruncatedClients: events.TruncatedClients,
		})
	}
}
