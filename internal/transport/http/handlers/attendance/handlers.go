package attendancehandler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/attendance"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/core"
	"hrflow/internal/platform/apperror"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

const maxSpanDays = 366

// EmployeeLookup resolves the caller's own master record.
type EmployeeLookup interface {
	EmployeeByAccount(ctx context.Context, accountID string) (core.Employee, error)
}

type Handler struct {
	Records   attendance.StoreAPI
	Employees EmployeeLookup
	Perms     middleware.PermissionStore
}

func NewHandler(records attendance.StoreAPI, employees EmployeeLookup, perms middleware.PermissionStore) *Handler {
	return &Handler{Records: records, Employees: employees, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/attendance", h.handleList)
}

// handleList returns records in [from, to]. Employees only read their own;
// without dates the current month is returned.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	from, err := shared.QueryDate(r, "from")
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	to, err := shared.QueryDate(r, "to")
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	from, to = defaultSpan(from, to, time.Now().UTC())
	if to.Before(from) {
		shared.WriteError(w, reqID, apperror.Invalid("to", "must be on or after from"))
		return
	}
	if to.Sub(from) > maxSpanDays*24*time.Hour {
		shared.WriteError(w, reqID, apperror.Invalid("to", "range must not exceed 366 days"))
		return
	}

	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	if employeeID == "" || (!user.HasRole(auth.RoleHR) && !user.HasRole(auth.RoleManager)) {
		emp, err := h.Employees.EmployeeByAccount(r.Context(), user.UserID)
		if errors.Is(err, core.ErrEmployeeNotFound) && employeeID != "" {
			shared.WriteError(w, reqID, apperror.ErrForbidden)
			return
		}
		if err != nil {
			shared.WriteError(w, reqID, err)
			return
		}
		if employeeID != "" && employeeID != emp.ID {
			shared.WriteError(w, reqID, apperror.ErrForbidden)
			return
		}
		employeeID = emp.ID
	}

	records, err := h.Records.List(r.Context(), employeeID, from, to)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{
		"employeeId": employeeID,
		"from":       from.Format("2006-01-02"),
		"to":         to.Format("2006-01-02"),
		"records":    records,
	}, reqID)
}

func defaultSpan(from, to, now time.Time) (time.Time, time.Time) {
	if from.IsZero() && to.IsZero() {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, -1)
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	if to.IsZero() {
		to = from.AddDate(0, 1, 0)
	}
	return from, to
}
