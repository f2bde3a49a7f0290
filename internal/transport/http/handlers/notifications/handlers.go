package notificationshandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/notifications"
	"hrflow/internal/platform/apperror"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

type Handler struct {
	Service  *notifications.Service
	Accounts *auth.Service
}

func NewHandler(service *notifications.Service, accounts *auth.Service) *Handler {
	return &Handler{Service: service, Accounts: accounts}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.handleList)
}

// handleList shows the delivery log. HR may read any recipient; everyone
// else reads their own login address.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	recipient := strings.TrimSpace(r.URL.Query().Get("recipient"))
	if recipient != "" && !user.HasRole(auth.RoleHR) && !strings.EqualFold(recipient, user.Email) {
		shared.WriteError(w, reqID, apperror.ErrForbidden)
		return
	}
	if recipient == "" {
		account, err := h.Accounts.Account(r.Context(), user.UserID)
		if err != nil {
			shared.WriteError(w, reqID, err)
			return
		}
		recipient = account.Email
	}

	page := shared.ParsePagination(r, 50, 200)
	items, err := h.Service.List(r.Context(), recipient, page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, items, reqID)
}
