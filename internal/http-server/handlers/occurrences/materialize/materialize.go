package materialize

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"practice-scheduler/api"
	"practice-scheduler/internal/models"
	"practice-scheduler/internal/service"
	"practice-scheduler/pkg/response"
	"practice-scheduler/pkg/sl"
)

type Materializer interface {
	Materialize(ctx context.Context, req service.MaterializeRequest) (*service.MaterializeResult, error)
}

type Request struct {
	api.MaterializeRequest
}

type Response struct {
	response.Response
	Result *api.MaterializeResponse `json:"result,omitempty"`
}

func New(log *slog.Logger, materializer Materializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.occurrences.materialize.New"

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

		if req.ClientID == "" || req.OriginalDate == "" {
			log.Error("client_id or original_date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "client_id and original_date are required"))
			return
		}

		res, err := materializer.Materialize(r.Context(), toService(req.MaterializeRequest))

		if service.IsPartial(err) && res != nil {
			// The exception stays recorded; the draft is what POST /appointments retries.
			log.Error("Appointment not created after exception was recorded", sl.Err(err))
			status, resp := response.FromError(err, "")
			w.WriteHeader(status)
			render.JSON(w, r, Response{Response: resp, Result: toResponse(res)})
			return
		}

		if err != nil {
			log.Error("Failed to materialize occurrence", sl.Err(err))
			status, resp := response.FromError(err, "failed to materialize occurrence")
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}

		log.Info("Occurrence materialized", slog.String("appointment_id", res.Appointment.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Result: toResponse(res)})
	}
}

func toService(req api.MaterializeRequest) service.MaterializeRequest {
	out := service.MaterializeRequest{
		ClientID: req.ClientID,
		Original: models.Slot{Date: req.OriginalDate, Time: req.OriginalTime},
		Target:   models.Slot{Date: req.TargetDate, Time: req.TargetTime},
		Overrides: service.Overrides{
			Value:           req.Value,
			DurationMinutes: req.Duration,
			Notes:           req.Notes,
		},
	}

	if req.Status != nil {
		s := models.AppointmentStatus(*req.Status)
		out.Overrides.Status = &s
	}
	if req.PaymentStatus != nil {
		s := models.PaymentStatus(*req.PaymentStatus)
		out.Overrides.PaymentStatus = &s
	}

	return out
}

func toResponse(res *service.MaterializeResult) *api.MaterializeResponse {
	return &api.MaterializeResponse{
		Appointment:       api.AppointmentFromModel(res.Appointment),
		ExceptionRecorded: res.ExceptionRecorded,
	}
}
