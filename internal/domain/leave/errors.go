package leave

import (
	"fmt"
	"net/http"

	"hrflow/internal/domain/balance"
	"hrflow/internal/platform/apperror"
)

var (
	ErrInvalidState        = apperror.New(apperror.KindStateConflict, "invalid_state", "leave request is not in a state that allows this action", http.StatusConflict)
	ErrNotOnboarded        = apperror.New(apperror.KindBusinessRule, "not_onboarded", "account has no employee record", http.StatusUnprocessableEntity)
	ErrInsufficientBalance = balance.ErrInsufficient
	ErrRequestNotFound     = apperror.New(apperror.KindReferential, "leave_request_not_found", "leave request not found", http.StatusNotFound)
)

// forbidden reports the role a caller needed.
func forbidden(role string) error {
	return fmt.Errorf("%w: requires role %s", apperror.ErrForbidden, role)
}
