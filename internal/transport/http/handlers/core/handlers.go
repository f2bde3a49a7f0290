package corehandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/core"
	"hrflow/internal/platform/apperror"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
	Perms   middleware.PermissionStore
	Effects shared.Effects
}

func NewHandler(service *core.Service, perms middleware.PermissionStore, effects shared.Effects) *Handler {
	return &Handler{Service: service, Perms: perms, Effects: effects}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/employees/me", h.handleMe)
	r.Get("/employees/{employeeID}", h.handleGetEmployee)
	r.Route("/managers", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/", h.handleListManagers)
		r.With(middleware.RequirePermission(auth.PermOnboardingPromote, h.Perms)).Post("/", h.handleCreateManager)
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	emp, err := h.Service.EmployeeByAccount(r.Context(), user.UserID)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	emp, err := h.Service.EmployeeByID(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	if user.HasRole(auth.RoleEmployee) && emp.AccountID != user.UserID {
		shared.WriteError(w, reqID, core.ErrEmployeeNotFound)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleListManagers(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	managers, err := h.Service.ListManagers(r.Context(), status)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, managers, reqID)
}

func (h *Handler) handleCreateManager(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if !user.HasRole(auth.RoleHR) {
		shared.WriteError(w, reqID, apperror.ErrForbidden)
		return
	}

	var payload core.ManagerInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	m, err := h.Service.CreateManager(r.Context(), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	h.Effects.Committed(r, shared.Outcome{Entry: audit.Entry{
		ActorID:    user.UserID,
		Action:     "directory.manager_created",
		EntityType: "manager",
		EntityID:   m.ID,
		After:      m,
	}})
	api.Created(w, m, reqID)
}
