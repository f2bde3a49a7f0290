package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/core"
	"hrflow/internal/domain/notifications"
	"hrflow/internal/platform/apperror"
)

const maxCodeAttempts = 10

type Service struct {
	repo          Repository
	now           func() time.Time
	newCode       func(year int) string
	companyDomain string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithCodeGenerator(gen func(year int) string) Option {
	return func(s *Service) { s.newCode = gen }
}

// WithCompanyDomain restricts promotion to company emails under domain.
func WithCompanyDomain(domain string) Option {
	return func(s *Service) { s.companyDomain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "@")) }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, newCode: core.RandomEmployeeCode}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type FormInput struct {
	EmploymentType EmploymentType `json:"employmentType" validate:"required,oneof=Intern Contract Full-Time Manager"`
	Payload        map[string]any `json:"payload" validate:"required"`
	Attachments    []Attachment   `json:"attachments" validate:"max=20,dive"`
	Submit         bool           `json:"submit"`
}

type EditInput struct {
	EmploymentType EmploymentType `json:"employmentType" validate:"omitempty,oneof=Intern Contract Full-Time Manager"`
	Payload        map[string]any `json:"payload" validate:"required"`
	Attachments    []Attachment   `json:"attachments" validate:"omitempty,max=20,dive"`
}

type ReviewInput struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Notes    string `json:"notes" validate:"max=2000"`
}

type PromoteInput struct {
	Name             string   `json:"name" validate:"required,max=200"`
	CompanyEmail     string   `json:"companyEmail" validate:"required,email,max=254"`
	PrimaryManager   string   `json:"primaryManager" validate:"required,max=254"`
	OptionalManagers []string `json:"optionalManagers" validate:"max=2,dive,max=254"`
	Department       string   `json:"department" validate:"max=100"`
	Designation      string   `json:"designation" validate:"max=100"`
	Location         string   `json:"location" validate:"max=100"`
}

func requireHR(actor auth.UserContext) error {
	if !actor.HasRole(auth.RoleHR) {
		return fmt.Errorf("%w: role %s", apperror.ErrForbidden, actor.RoleName)
	}
	return nil
}

// SaveForm creates or updates the caller's draft, submitting it when asked.
func (s *Service) SaveForm(ctx context.Context, actor auth.UserContext, in FormInput) (Form, []notifications.Intent, error) {
	if !actor.HasRole(auth.RoleEmployee) {
		return Form{}, nil, ErrNotEmployeeAccount
	}
	if err := apperror.ValidateStruct(in); err != nil {
		return Form{}, nil, err
	}

	var out Form
	var intents []notifications.Intent
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		account, err := tx.Account(ctx, actor.UserID, true)
		if err != nil {
			return err
		}
		if account.Role != auth.RoleEmployee {
			return ErrNotEmployeeAccount
		}

		form, err := tx.FormByAccount(ctx, account.ID, true)
		switch {
		case errors.Is(err, ErrFormNotFound):
			form = Form{AccountID: account.ID, Status: FormDraft}
		case err != nil:
			return err
		case form.Status != FormDraft:
			return fmt.Errorf("%w: form is %s", ErrAlreadySubmitted, form.Status)
		}

		form.EmploymentType = in.EmploymentType
		form.Payload = in.Payload
		form.Attachments = in.Attachments
		if in.Submit {
			s.markSubmitted(&form)
		}
		if form.ID == "" {
			form, err = tx.InsertForm(ctx, form)
		} else {
			form, err = tx.UpdateForm(ctx, form)
		}
		if err != nil {
			return err
		}
		out = form

		if in.Submit {
			intents, err = submittedIntents(ctx, tx, account, form)
		}
		return err
	})
	if err != nil {
		return Form{}, nil, err
	}
	return out, intents, nil
}

// Submit moves the caller's draft to submitted.
func (s *Service) Submit(ctx context.Context, actor auth.UserContext) (Form, []notifications.Intent, error) {
	var out Form
	var intents []notifications.Intent
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		account, err := tx.Account(ctx, actor.UserID, true)
		if err != nil {
			return err
		}
		form, err := tx.FormByAccount(ctx, account.ID, true)
		if err != nil {
			return err
		}
		if !form.Status.CanTransitionTo(FormSubmitted) {
			return fmt.Errorf("%w: form is %s", ErrInvalidState, form.Status)
		}
		s.markSubmitted(&form)
		if out, err = tx.UpdateForm(ctx, form); err != nil {
			return err
		}
		intents, err = submittedIntents(ctx, tx, account, out)
		return err
	})
	if err != nil {
		return Form{}, nil, err
	}
	return out, intents, nil
}

func (s *Service) markSubmitted(form *Form) {
	at := s.now().UTC()
	form.Status = FormSubmitted
	form.SubmittedAt = &at
}

func submittedIntents(ctx context.Context, tx Tx, account auth.Account, form Form) ([]notifications.Intent, error) {
	hr, err := tx.EmailsByRole(ctx, auth.RoleHR)
	if err != nil {
		return nil, err
	}
	return notifications.Fanout(notifications.TemplateFormSubmitted, map[string]any{
		"email":          account.Email,
		"employmentType": string(form.EmploymentType),
		"formId":         form.ID,
	}, hr...), nil
}

// HREdit replaces a submitted or approved form's payload. Status is left
// alone.
func (s *Service) HREdit(ctx context.Context, actor auth.UserContext, formID string, in EditInput) (Form, error) {
	if err := requireHR(actor); err != nil {
		return Form{}, err
	}
	if err := apperror.ValidateStruct(in); err != nil {
		return Form{}, err
	}

	var out Form
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		form, err := tx.FormByID(ctx, formID, true)
		if err != nil {
			return err
		}
		if form.Status != FormSubmitted && form.Status != FormApproved {
			return fmt.Errorf("%w: form is %s", ErrInvalidState, form.Status)
		}
		if in.EmploymentType != "" {
			form.EmploymentType = in.EmploymentType
		}
		form.Payload = in.Payload
		if in.Attachments != nil {
			form.Attachments = in.Attachments
		}
		out, err = tx.UpdateForm(ctx, form)
		return err
	})
	return out, err
}

// Review approves or rejects a submitted form. Approval creates the staging
// row in the same transaction.
func (s *Service) Review(ctx context.Context, actor auth.UserContext, formID string, in ReviewInput) (ReviewResult, []notifications.Intent, error) {
	if err := requireHR(actor); err != nil {
		return ReviewResult{}, nil, err
	}
	if err := apperror.ValidateStruct(in); err != nil {
		return ReviewResult{}, nil, err
	}
	approve := in.Decision == "approve"
	next := FormRejected
	if approve {
		next = FormApproved
	}

	var res ReviewResult
	var intents []notifications.Intent
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		form, err := tx.FormByID(ctx, formID, true)
		if err != nil {
			return err
		}
		if form.Status == FormApproved {
			return ErrAlreadyOnboarded
		}
		if !form.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: form is %s", ErrInvalidState, form.Status)
		}
		if _, err := tx.StagingByAccount(ctx, form.AccountID); err == nil {
			return ErrAlreadyOnboarded
		} else if !errors.Is(err, ErrStagingNotFound) {
			return err
		}

		at := s.now().UTC()
		form.Status = next
		form.ReviewedBy = actor.UserID
		form.ReviewedAt = &at
		form.ReviewNotes = strings.TrimSpace(in.Notes)
		if res.Form, err = tx.UpdateForm(ctx, form); err != nil {
			return err
		}

		template := notifications.TemplateFormRejected
		if approve {
			staging, err := tx.InsertStaging(ctx, Staging{AccountID: form.AccountID, FormID: form.ID, Status: StagingPending})
			if err != nil {
				return err
			}
			res.Staging = &staging
			template = notifications.TemplateFormApproved
		}

		account, err := tx.Account(ctx, form.AccountID, false)
		if err != nil {
			return err
		}
		intents = notifications.Fanout(template, map[string]any{"notes": form.ReviewNotes}, account.Email)
		return nil
	})
	if err != nil {
		return ReviewResult{}, nil, err
	}
	return res, intents, nil
}

// Promote writes a staged onboarding into the employee master. Every step
// shares one transaction; a failure anywhere leaves the account email,
// staging row and directory as they were.
func (s *Service) Promote(ctx context.Context, actor auth.UserContext, stagingID string, in PromoteInput) (PromoteResult, []notifications.Intent, error) {
	if err := requireHR(actor); err != nil {
		return PromoteResult{}, nil, err
	}
	in = normalisePromote(in)
	if err := apperror.ValidateStruct(in); err != nil {
		return PromoteResult{}, nil, err
	}
	if s.companyDomain != "" && !strings.HasSuffix(in.CompanyEmail, "@"+s.companyDomain) {
		return PromoteResult{}, nil, apperror.Invalid("companyEmail", "must be an @"+s.companyDomain+" address")
	}

	var res PromoteResult
	var intents []notifications.Intent
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		staging, err := tx.StagingByID(ctx, stagingID, true)
		if err != nil {
			return err
		}
		if !staging.Status.CanTransitionTo(StagingAssigned) {
			return fmt.Errorf("%w: staging is %s", ErrAlreadyOnboarded, staging.Status)
		}
		form, err := tx.FormByID(ctx, staging.FormID, false)
		if err != nil {
			return err
		}
		if form.Status != FormApproved {
			return fmt.Errorf("%w: form is %s", ErrInvalidState, form.Status)
		}
		if _, err := tx.EmployeeByAccount(ctx, staging.AccountID); err == nil {
			return ErrAlreadyOnboarded
		} else if !errors.Is(err, core.ErrEmployeeNotFound) {
			return err
		}
		account, err := tx.Account(ctx, staging.AccountID, true)
		if err != nil {
			return err
		}

		inUse, err := tx.EmployeeEmailInUse(ctx, in.CompanyEmail)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("%w: %s", ErrDuplicateIdentity, in.CompanyEmail)
		}
		taken, err := tx.EmailOwnedByOther(ctx, in.CompanyEmail, account.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %s belongs to another account", ErrDuplicateIdentity, in.CompanyEmail)
		}

		primary, err := core.ResolveManager(ctx, tx, in.PrimaryManager)
		if err != nil {
			return err
		}
		managerIDs, dropped, err := resolveOptional(ctx, tx, primary, in.OptionalManagers)
		if err != nil {
			return err
		}

		code, err := s.allocateCode(ctx, tx)
		if err != nil {
			return err
		}

		if !strings.EqualFold(account.Email, in.CompanyEmail) {
			if err := tx.UpdateAccountEmail(ctx, account.ID, in.CompanyEmail); err != nil {
				return err
			}
		}

		at := s.now().UTC()
		staging.Status = StagingAssigned
		staging.EmployeeCode = code
		staging.CompanyEmail = in.CompanyEmail
		staging.ManagerIDs = managerIDs
		staging.AssignedAt = &at
		if res.Staging, err = tx.UpdateStaging(ctx, staging); err != nil {
			return err
		}

		res.Employee, err = tx.InsertEmployee(ctx, core.Employee{
			AccountID:      account.ID,
			EmployeeCode:   code,
			Name:           in.Name,
			CompanyEmail:   in.CompanyEmail,
			ManagerIDs:     managerIDs,
			EmploymentType: string(form.EmploymentType),
			Status:         core.StatusActive,
			Department:     in.Department,
			Designation:    in.Designation,
			Location:       in.Location,
			JoinedOn:       today(at),
		})
		if err != nil {
			return err
		}
		res.Dropped = dropped

		intents = notifications.Fanout(notifications.TemplateEmployeePromoted, map[string]any{
			"name":         in.Name,
			"employeeCode": code,
			"companyEmail": in.CompanyEmail,
		}, in.CompanyEmail, account.Email)
		return nil
	})
	if err != nil {
		return PromoteResult{}, nil, err
	}
	return res, intents, nil
}

// resolveOptional resolves extra managers best effort. Unknown or inactive
// ones are dropped; storage errors are not.
func resolveOptional(ctx context.Context, tx Tx, primary core.Manager, idents []string) ([]string, []string, error) {
	ids := []string{primary.ID}
	var dropped []string
	for _, ident := range idents {
		if strings.TrimSpace(ident) == "" {
			continue
		}
		m, err := core.ResolveManager(ctx, tx, ident)
		if errors.Is(err, core.ErrManagerNotFound) || errors.Is(err, core.ErrManagerInactive) {
			slog.Info("optional manager dropped", "manager", ident, "err", err)
			dropped = append(dropped, ident)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if containsID(ids, m.ID) || len(ids) == core.MaxManagers {
			continue
		}
		ids = append(ids, m.ID)
	}
	return ids, dropped, nil
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func (s *Service) allocateCode(ctx context.Context, tx Tx) (string, error) {
	year := s.now().Year()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.newCode(year)
		inUse, err := tx.EmployeeCodeInUse(ctx, code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", ErrCodeUnavailable
}

// today truncates to a calendar date in UTC.
func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalisePromote(in PromoteInput) PromoteInput {
	in.Name = normaliseName(in.Name)
	in.CompanyEmail = strings.ToLower(strings.TrimSpace(in.CompanyEmail))
	in.PrimaryManager = strings.TrimSpace(in.PrimaryManager)
	in.Department = strings.TrimSpace(in.Department)
	in.Designation = strings.TrimSpace(in.Designation)
	in.Location = strings.TrimSpace(in.Location)
	return in
}

// normaliseName collapses whitespace and title-cases each word. A Caser is
// stateful, so one is built per call.
func normaliseName(name string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}

// Get returns the aggregate view of an account's onboarding.
func (s *Service) Get(ctx context.Context, accountID string) (Onboarding, error) {
	out := Onboarding{AccountID: accountID}
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		form, err := tx.FormByAccount(ctx, accountID, false)
		switch {
		case err == nil:
			out.Form = &form
		case !errors.Is(err, ErrFormNotFound):
			return err
		}
		staging, err := tx.StagingByAccount(ctx, accountID)
		switch {
		case err == nil:
			out.Staging = &staging
		case !errors.Is(err, ErrStagingNotFound):
			return err
		}
		emp, err := tx.EmployeeByAccount(ctx, accountID)
		switch {
		case err == nil:
			out.Employee = &emp
		case !errors.Is(err, core.ErrEmployeeNotFound):
			return err
		}
		return nil
	})
	if err != nil {
		return Onboarding{}, err
	}
	out.Stage = deriveStage(out.Form, out.Staging, out.Employee != nil)
	return out, nil
}

func (s *Service) ListForms(ctx context.Context, status FormStatus, limit, offset int) ([]Form, error) {
	if status != "" && !status.Valid() {
		return nil, apperror.Invalid("status", "is not a known form status")
	}
	var out []Form
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListForms(ctx, status, limit, offset)
		return err
	})
	return out, err
}

func (s *Service) ListStaging(ctx context.Context, status StagingStatus, limit, offset int) ([]Staging, error) {
	if status != "" && status != StagingPending && status != StagingAssigned {
		return nil, apperror.Invalid("status", "is not a known staging status")
	}
	var out []Staging
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListStaging(ctx, status, limit, offset)
		return err
	})
	return out, err
}
