package shared

import (
	"errors"
	"net/http"

	"privacydesk/internal/domain/request"
	"privacydesk/internal/platform/storage"
	"privacydesk/internal/transport/http/api"
)

// FailFromError maps domain errors onto the response envelope: validation
// issues render inline as field details, missing records are 404, terminal
// state conflicts 409, storage failures 503.
func FailFromError(w http.ResponseWriter, err error, requestID string) {
	var verr *request.ValidationError
	switch {
	case errors.As(err, &verr):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
			map[string]any{"fields": verr.Issues}, requestID)
	case errors.Is(err, request.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, request.ErrStateConflict):
		api.Fail(w, http.StatusConflict, "state_conflict", err.Error(), requestID)
	case errors.Is(err, storage.ErrStorage):
		api.Fail(w, http.StatusServiceUnavailable, "storage_error", "persistence failure, please retry", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", requestID)
	}
}
