package onboardinghandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/notifications"
	"hrflow/internal/domain/onboarding"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

const machine = "onboarding"

type Handler struct {
	Service  *onboarding.Service
	Accounts *auth.Service
	Perms    middleware.PermissionStore
	Effects  shared.Effects
}

func NewHandler(service *onboarding.Service, accounts *auth.Service, perms middleware.PermissionStore, effects shared.Effects) *Handler {
	return &Handler{Service: service, Accounts: accounts, Perms: perms, Effects: effects}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	self := middleware.RequirePermission(auth.PermOnboardingSelf, h.Perms)
	review := middleware.RequirePermission(auth.PermOnboardingReview, h.Perms)
	promote := middleware.RequirePermission(auth.PermOnboardingPromote, h.Perms)
	hire := middleware.RequirePermission(auth.PermOnboardingHire, h.Perms)

	r.Route("/onboarding", func(r chi.Router) {
		r.With(hire).Post("/hires", h.handleCreateHire)
		r.With(self).Post("/form", h.handleSaveForm)
		r.With(self).Post("/form/submit", h.handleSubmit)
		r.Get("/me", h.handleMe)
		r.With(review).Get("/accounts/{accountID}", h.handleGetAccount)
		r.With(review).Get("/forms", h.handleListForms)
		r.With(review).Put("/forms/{formID}", h.handleEditForm)
		r.With(review).Post("/forms/{formID}/review", h.handleReview)
		r.With(promote).Get("/staging", h.handleListStaging)
		r.With(promote).Post("/staging/{stagingID}/promote", h.handlePromote)
	})
}

func (h *Handler) handleCreateHire(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload auth.HireInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	res, err := h.Accounts.CreateHire(r.Context(), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}

	h.Effects.Committed(r, shared.Outcome{
		Entry: audit.Entry{
			ActorID:    user.UserID,
			Action:     audit.ActionHireCreated,
			EntityType: "account",
			EntityID:   res.Account.ID,
			After:      res.Account,
		},
		Intents: notifications.Fanout(notifications.TemplateHireCreated, map[string]any{
			"email":                       res.Account.Email,
			notifications.KeyTempPassword: res.TempPassword,
		}, res.Account.Email),
	})
	api.Created(w, res, reqID)
}

func (h *Handler) handleSaveForm(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload onboarding.FormInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	form, intents, err := h.Service.SaveForm(r.Context(), user, payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}

	action := audit.ActionFormSaved
	if form.Status == onboarding.FormSubmitted {
		action = audit.ActionFormSubmitted
	}
	h.Effects.Committed(r, shared.Outcome{
		Entry:   formEntry(user, action, form),
		Machine: machine,
		Status:  string(form.Status),
		Intents: intents,
	})
	api.Success(w, form, reqID)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	form, intents, err := h.Service.Submit(r.Context(), user)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	h.Effects.Committed(r, shared.Outcome{
		Entry:   formEntry(user, audit.ActionFormSubmitted, form),
		Machine: machine,
		Status:  string(form.Status),
		Intents: intents,
	})
	api.Success(w, form, reqID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	view, err := h.Service.Get(r.Context(), user.UserID)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, view, reqID)
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	view, err := h.Service.Get(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, view, reqID)
}

func (h *Handler) handleListForms(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	status := onboarding.FormStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	forms, err := h.Service.ListForms(r.Context(), status, page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, forms, reqID)
}

func (h *Handler) handleEditForm(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload onboarding.EditInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	form, err := h.Service.HREdit(r.Context(), user, chi.URLParam(r, "formID"), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	h.Effects.Committed(r, shared.Outcome{Entry: formEntry(user, audit.ActionFormEdited, form)})
	api.Success(w, form, reqID)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload onboarding.ReviewInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	res, intents, err := h.Service.Review(r.Context(), user, chi.URLParam(r, "formID"), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	h.Effects.Committed(r, shared.Outcome{
		Entry:   formEntry(user, audit.ActionFormReviewed, res.Form),
		Machine: machine,
		Status:  string(res.Form.Status),
		Intents: intents,
	})
	api.Success(w, res, reqID)
}

func (h *Handler) handleListStaging(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	status := onboarding.StagingStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	rows, err := h.Service.ListStaging(r.Context(), status, page.Limit, page.Offset)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	api.Success(w, rows, reqID)
}

func (h *Handler) handlePromote(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload onboarding.PromoteInput
	if err := shared.DecodeJSON(r, &payload); err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	res, intents, err := h.Service.Promote(r.Context(), user, chi.URLParam(r, "stagingID"), payload)
	if err != nil {
		shared.WriteError(w, reqID, err)
		return
	}
	h.Effects.Committed(r, shared.Outcome{
		Entry: audit.Entry{
			ActorID:    user.UserID,
			Action:     audit.ActionPromoted,
			EntityType: "employee",
			EntityID:   res.Employee.ID,
			After:      res.Employee,
		},
		Machine: machine,
		Status:  string(onboarding.StageOnboarded),
		Intents: intents,
	})
	api.Created(w, res, reqID)
}

// formEntry leaves the payload out; it is encrypted at rest and must not be
// copied into the audit log in clear.
func formEntry(user auth.UserContext, action string, form onboarding.Form) audit.Entry {
	return audit.Entry{
		ActorID:    user.UserID,
		Action:     action,
		EntityType: "employment_form",
		EntityID:   form.ID,
		After:      map[string]any{"status": form.Status, "employmentType": form.EmploymentType},
	}
}
