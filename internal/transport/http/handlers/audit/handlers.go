package audithandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/auth"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/audit/events", h.handleListEvents)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	page := shared.ParsePagination(r, 100, 500)
	filter := audit.Filter{
		Action:     strings.TrimSpace(q.Get("action")),
		EntityType: strings.TrimSpace(q.Get("entityType")),
		EntityID:   strings.TrimSpace(q.Get("entityId")),
		ActorID:    strings.TrimSpace(q.Get("actorId")),
	}

	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	events, err := h.Service.List(r.Context(), filter, q.Get("includeDetails") == "true", page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}

	page.WriteTotal(w, total)
	api.Success(w, events, reqID)
}
