package cancel

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

type OccurrenceCanceller interface {
	CancelOccurrence(ctx context.Context, clientID, date string) (*models.ExceptionEntry, error)
}

type Request struct {
	api.CancelOccurrenceRequest
}

type Response struct {
	response.Response
	Exception *api.Exception `json:"exception,omitempty"`
}

func New(log *slog.Logger, canceller OccurrenceCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.occurrences.cancel.New"

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

		if req.ClientID == "" || req.Date == "" {
			log.Error("client_id or date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "client_id and date are required"))
			return
		}

		entry, err := canceller.CancelOccurrence(r.Context(), req.ClientID, req.Date)
		if err != nil {
			log.Error("Failed to cancel occurrence", sl.Err(err))
			status, resp := response.FromError(err, "failed to cancel occurrence")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Occurrence cancelled", slog.String("client_id", req.ClientID), slog.String("date", req.Date))

		e := api.ExceptionFromModel(*entry)
		render.JSON(w, r, Response{Exception: &e})
	}
}
