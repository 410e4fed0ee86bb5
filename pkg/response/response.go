package response

import (
	"errors"
	"net/http"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST          ErrCode = "REQUEST_FAILED"
	BAD_REQUEST             ErrCode = "FAILED_TO_DECODE"
	NOT_FOUND               ErrCode = "NOT_FOUND"
	LOCKED                  ErrCode = "LOCKED"
	CONFLICT                ErrCode = "CONFLICT"
	INVALID_RULE            ErrCode = "INVALID_RECURRENCE"
	EXCEPTION_NOT_RECORDED  ErrCode = "EXCEPTION_NOT_RECORDED"
	APPOINTMENT_NOT_CREATED ErrCode = "APPOINTMENT_NOT_CREATED"
	NO_RECURRENCE           ErrCode = "NO_RECURRENCE"
	RATE_LIMITED            ErrCode = "RATE_LIMITED"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("resource not found")
	ErrLocked       = errors.New("resource is locked")
	ErrConflict     = errors.New("conflict")
	ErrInvalidRule  = errors.New("invalid recurrence rule")
	ErrNoRecurrence = errors.New("client has no recurrence")

	// ErrExceptionNotRecorded means nothing was written: the ledger entry
	// failed, so no appointment was attempted.
	ErrExceptionNotRecorded = errors.New("recurrence exception not recorded")

	// ErrAppointmentNotCreated means the ledger entry is durable but the
	// appointment is missing. Retry the create, not the exception.
	ErrAppointmentNotCreated = errors.New("exception recorded but appointment not created")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// FromError maps a service error onto an HTTP status and wire error.
// Unknown errors become 500 with fallback as the message.
func FromError(err error, fallback string) (int, Response) {
	switch {
	case errors.Is(err, ErrAppointmentNotCreated):
		return http.StatusBadGateway, Error(string(APPOINTMENT_NOT_CREATED), ErrAppointmentNotCreated.Error())
	case errors.Is(err, ErrExceptionNotRecorded):
		return http.StatusBadGateway, Error(string(EXCEPTION_NOT_RECORDED), ErrExceptionNotRecorded.Error())
	case errors.Is(err, ErrInvalidRule):
		return http.StatusUnprocessableEntity, Error(string(INVALID_RULE), err.Error())
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, Error(string(BAD_REQUEST), err.Error())
	case errors.Is(err, ErrNoRecurrence):
		return http.StatusNotFound, Error(string(NO_RECURRENCE), "client has no recurrence")
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, Error(string(NOT_FOUND), "resource not found")
	case errors.Is(err, ErrLocked):
		return http.StatusLocked, Error(string(LOCKED), "resource is locked")
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, Error(string(CONFLICT), err.Error())
	default:
		return http.StatusInternalServerError, Error(string(FAILED_REQUEST), fallback)
	}
}
