package onboarding

import (
	"net/http"

	"hrflow/internal/platform/apperror"
)

var (
	ErrInvalidState       = apperror.New(apperror.KindStateConflict, "invalid_state", "form is not in a state that allows this action", http.StatusConflict)
	ErrAlreadySubmitted   = apperror.New(apperror.KindStateConflict, "already_submitted", "form has already been submitted", http.StatusConflict)
	ErrAlreadyOnboarded   = apperror.New(apperror.KindStateConflict, "already_onboarded", "account is already onboarded", http.StatusConflict)
	ErrDuplicateIdentity  = apperror.New(apperror.KindReferential, "duplicate_identity", "company email is already in use", http.StatusConflict)
	ErrFormNotFound       = apperror.New(apperror.KindReferential, "form_not_found", "employment form not found", http.StatusNotFound)
	ErrStagingNotFound    = apperror.New(apperror.KindReferential, "staging_not_found", "staged onboarding not found", http.StatusNotFound)
	ErrCodeUnavailable    = apperror.New(apperror.KindInternal, "employee_code_unavailable", "could not allocate a unique employee code", http.StatusServiceUnavailable)
	ErrNotEmployeeAccount = apperror.New(apperror.KindForbidden, "forbidden", "only employee accounts have employment forms", http.StatusForbidden)
)
