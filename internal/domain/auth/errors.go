package auth

import (
	"net/http"

	"hrflow/internal/platform/apperror"
)

var (
	ErrAccountNotFound = apperror.New(apperror.KindReferential, "account_not_found", "account not found", http.StatusNotFound)
	ErrEmailTaken      = apperror.New(apperror.KindReferential, "duplicate_identity", "email already belongs to another account", http.StatusConflict)
)
