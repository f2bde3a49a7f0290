package core

import (
	"net/http"

	"hrflow/internal/platform/apperror"
)

var (
	ErrEmployeeNotFound  = apperror.New(apperror.KindReferential, "employee_not_found", "employee not found", http.StatusNotFound)
	ErrManagerNotFound   = apperror.New(apperror.KindReferential, "manager_not_found", "manager not found", http.StatusUnprocessableEntity)
	ErrManagerInactive   = apperror.New(apperror.KindReferential, "manager_inactive", "manager is inactive", http.StatusUnprocessableEntity)
	ErrDuplicateEmployee = apperror.New(apperror.KindReferential, "duplicate_identity", "employee identity already exists", http.StatusConflict)
)
