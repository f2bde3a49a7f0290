package leavehandler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/leave"
	"hrflow/internal/domain/notifications"
	"hrflow/internal/platform/apperror"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

const machine = "leave"

type Handler struct {
	Service *leave.Service
	Perms   middleware.PermissionStore
	Effects shared.Effects
}

func NewHandler(service *leave.Service, perms middleware.PermissionStore, effects shared.Effects) *Handler {
	return &Handler{Service: service, Perms: perms, Effects: effects}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermLeaveRead, h.Perms)
	request := middleware.RequirePermission(auth.PermLeaveRequest, h.Perms)

	r.Route("/leave", func(r chi.Router) {
		r.With(read).Get("/balances", h.handleBalances)
		r.With(read).Get("/requests", h.handleList)
		r.With(request).Post("/requests", h.handleSubmit)
		r.With(read).Get("/requests/{requestID}", h.handleGet)
		r.With(read).Get("/requests/{requestID}/slip.pdf", h.handleSlip)
		r.With(middleware.RequirePermission(auth.PermLeaveManagerAct, h.Perms)).Post("/requests/{requestID}/manager-decision", h.handleManagerDecision)
		r.With(middleware.RequirePermission(auth.PermLeaveHRAct, h.Perms)).Post("/requests/{requestID}/hr-decision", h.handleHRDecision)
	})
}

type submitRequest struct {
	LeaveType string `json:"leaveType"`
	From      string `json:"from"`
	To        string `json:"to"`
	HalfDay   bool   `json:"halfDay"`
	Reason    string `json:"reason"`
}

func (p submitRequest) input() (leave.SubmitInput, error) {
	in := leave.SubmitInput{LeaveType: p.LeaveType, HalfDay: p.HalfDay, Reason: p.Reason}
	from, err := shared.ParseDate(strings.TrimSpace(p.From))
	if err != nil {
		return in, apperror.Invalid("from", "must be a valid date in YYYY-MM-DD format")
	}
	in.From = from
	if strings.TrimSpace(p.To) != "" {
		to, err := shared.ParseDate(strings.TrimSpace(p.To))
		if err != nil {
			return in, apperror.Invalid("to", "must be a valid date in YYYY-MM-DD format")
		}
		in.To = &to
	}
	return in, nil
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload submitRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	in, err := payload.input()
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	req, intents, err := h.Service.Submit(r.Context(), user, in)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	h.Effects.Committed(r, shared.Outcome{
		Entry:   requestEntry(user, audit.ActionLeaveSubmitted, req),
		Machine: machine,
		Status:  string(req.Status),
		Intents: intents,
	})
	api.Created(w, req, reqID)
}

func (h *Handler) handleManagerDecision(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, audit.ActionLeaveManagerAct, h.Service.DecideManager)
}

func (h *Handler) handleHRDecision(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, audit.ActionLeaveHRAct, h.Service.DecideHR)
}

type decideFunc func(ctx context.Context, actor auth.UserContext, requestID string, in leave.DecisionInput) (leave.DecisionResult, []notifications.Intent, error)

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, action string, fn decideFunc) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload leave.DecisionInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	res, intents, err := fn(r.Context(), user, chi.URLParam(r, "requestID"), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	h.Effects.Committed(r, shared.Outcome{
		Entry:   requestEntry(user, action, res.Request),
		Machine: machine,
		Status:  string(res.Request.Status),
		Intents: intents,
	})
	api.Success(w, res, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	req, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "requestID"))
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, req, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	filter := leave.Filter{
		EmployeeID: strings.TrimSpace(r.URL.Query().Get("employeeId")),
		Status:     leave.Status(strings.TrimSpace(r.URL.Query().Get("status"))),
	}
	res, err := h.Service.List(r.Context(), user, filter, page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	page.WriteTotal(w, res.Total)
	api.Success(w, res, reqID)
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	year := time.Now().UTC().Year()
	if raw := strings.TrimSpace(r.URL.Query().Get("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2100 {
			shared.WriteError(w, reqID, apperror.Invalid("year", "must be a year between 2000 and 2100"))
			return
		}
		year = parsed
	}
	balances, err := h.Service.Balances(r.Context(), user, strings.TrimSpace(r.URL.Query().Get("employeeId")), year)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, balances, reqID)
}

func (h *Handler) handleSlip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	requestID := chi.URLParam(r, "requestID")

	pdf, err := h.Service.ApprovalSlip(r.Context(), user, requestID)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=leave-"+requestID+".pdf")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("write slip failed", "err", err)
	}
}

func requestEntry(user auth.UserContext, action string, req leave.Request) audit.Entry {
	return audit.Entry{
		ActorID:    user.UserID,
		Action:     action,
		EntityType: "leave_request",
		EntityID:   req.ID,
		After: map[string]any{
			"series":    req.Series,
			"status":    req.Status,
			"totalDays": req.TotalDays,
		},
	}
}
