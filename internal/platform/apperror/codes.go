package apperror

import "net/http"

const (
	CodeInvalidInput  = "invalid_payload"
	CodeUnauthorized  = "unauthorized"
	CodeForbidden     = "forbidden"
	CodeNotFound      = "not_found"
	CodeInternalError = "internal_error"
)

var (
	ErrInvalidInput = New(KindValidation, CodeInvalidInput, "the provided input is invalid", http.StatusBadRequest)
	ErrForbidden    = New(KindForbidden, CodeForbidden, "not allowed", http.StatusForbidden)
	ErrInternal     = New(KindInternal, CodeInternalError, "an unexpected error occurred", http.StatusInternalServerError)
)
