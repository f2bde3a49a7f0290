package shared

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hrflow/internal/platform/apperror"
	"hrflow/internal/transport/http/api"
)

// WriteError maps a service error onto the envelope. Errors without an
// apperror kind are logged and reported as internal.
func WriteError(w http.ResponseWriter, requestID string, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		slog.Error("unhandled error", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, apperror.CodeInternalError, "an unexpected error occurred", requestID)
		return
	}
	if appErr.Kind == apperror.KindInternal || appErr.HTTPStatus >= http.StatusInternalServerError {
		slog.Error("request failed", "err", err, "code", appErr.Code, "requestId", requestID)
	}

	message := err.Error()
	if appErr.Kind == apperror.KindInternal {
		message = appErr.Message
	}
	details := map[string]any{"kind": appErr.Kind}
	if issues := apperror.Issues(err); len(issues) > 0 {
		details["fields"] = issues
	}
	api.FailWithDetails(w, appErr.HTTPStatus, appErr.Code, message, details, requestID)
}

// DecodeJSON reads a single JSON object, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.New(apperror.KindValidation, "payload_too_large", "request body too large", http.StatusRequestEntityTooLarge)
		}
		return apperror.Wrap(err, apperror.KindValidation, apperror.CodeInvalidInput, "invalid JSON payload", http.StatusBadRequest)
	}
	return nil
}
