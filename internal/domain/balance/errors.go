package balance

import (
	"net/http"

	"hrflow/internal/platform/apperror"
)

var (
	ErrBalanceNotFound = apperror.New(apperror.KindReferential, "balance_not_found", "leave balance not found", http.StatusNotFound)
	ErrInsufficient    = apperror.New(apperror.KindBusinessRule, "insufficient_balance", "not enough leave balance", http.StatusUnprocessableEntity)
	ErrInvalidAmount   = apperror.New(apperror.KindValidation, "invalid_amount", "debit amount must be positive", http.StatusBadRequest)
)
