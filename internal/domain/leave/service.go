package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hrflow/internal/domain/attendance"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/balance"
	"hrflow/internal/domain/core"
	"hrflow/internal/domain/notifications"
	"hrflow/internal/platform/apperror"
)

type Service struct {
	repo       Repository
	allocation decimal.Decimal
	now        func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the approval machine. allocation seeds new ledger rows.
func NewService(repo Repository, allocation decimal.Decimal, opts ...Option) *Service {
	s := &Service{repo: repo, allocation: allocation, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ledger(tx Tx) *balance.Ledger {
	return balance.NewLedger(tx.Balances(), s.allocation)
}

type SubmitInput struct {
	LeaveType string     `json:"leaveType" validate:"required,max=50"`
	From      time.Time  `json:"from" validate:"required"`
	To        *time.Time `json:"to"`
	HalfDay   bool       `json:"halfDay"`
	Reason    string     `json:"reason" validate:"max=1000"`
}

type DecisionInput struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Notes    string `json:"notes" validate:"max=2000"`
}

// Submit files a request for the caller's own employee record. The balance
// check reads the ledger year of the start date; pending requests do not
// reserve days.
func (s *Service) Submit(ctx context.Context, actor auth.UserContext, in SubmitInput) (Request, []notifications.Intent, error) {
	in.LeaveType = strings.TrimSpace(in.LeaveType)
	in.Reason = strings.TrimSpace(in.Reason)
	if err := apperror.ValidateStruct(in); err != nil {
		return Request{}, nil, err
	}
	from := dateOnly(in.From)
	to := from
	if in.To != nil {
		to = dateOnly(*in.To)
	}
	total, err := TotalDays(from, to, in.HalfDay)
	if err != nil {
		return Request{}, nil, apperror.Invalid("to", "must be on or after from")
	}

	var out Request
	var intents []notifications.Intent
	err = s.repo.WithinTx(ctx, func(tx Tx) error {
		emp, err := tx.EmployeeByAccount(ctx, actor.UserID)
		if errors.Is(err, core.ErrEmployeeNotFound) {
			return ErrNotOnboarded
		}
		if err != nil {
			return err
		}
		if emp.Status != core.StatusActive {
			return fmt.Errorf("%w: employee is %s", ErrNotOnboarded, emp.Status)
		}

		bal, err := s.ledger(tx).Get(ctx, emp.ID, from.Year())
		if err != nil {
			return err
		}
		if total.GreaterThan(bal.Remaining) {
			return fmt.Errorf("%w: requested %s, remaining %s", ErrInsufficientBalance, total, bal.Remaining)
		}

		n, err := tx.NextSeries(ctx, from.Year())
		if err != nil {
			return err
		}
		out, err = tx.InsertRequest(ctx, Request{
			Series:        FormatSeries(from.Year(), n),
			EmployeeID:    emp.ID,
			LeaveType:     in.LeaveType,
			FromDate:      from,
			ToDate:        to,
			HalfDay:       in.HalfDay,
			TotalDays:     total,
			Reason:        in.Reason,
			Status:        StatusPendingManager,
			BalanceBefore: bal.Remaining,
		})
		if err != nil {
			return err
		}

		managers, err := tx.ManagerEmails(ctx, emp.ManagerIDs)
		if err != nil {
			return err
		}
		intents = notifications.Fanout(notifications.TemplateLeaveSubmitted, requestData(out, emp), managers...)
		return nil
	})
	if err != nil {
		return Request{}, nil, err
	}
	return out, intents, nil
}

// DecideManager is the first approval stage. Any manager may decide any
// request; approval rights are not tied to the employee's assigned managers.
func (s *Service) DecideManager(ctx context.Context, actor auth.UserContext, requestID string, in DecisionInput) (DecisionResult, []notifications.Intent, error) {
	if !actor.HasRole(auth.RoleManager) {
		return DecisionResult{}, nil, forbidden(auth.RoleManager)
	}
	if err := apperror.ValidateStruct(in); err != nil {
		return DecisionResult{}, nil, err
	}
	next := StatusManagerApproved
	if in.Decision == DecisionReject {
		next = StatusRejected
	}

	var res DecisionResult
	var intents []notifications.Intent
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		req, err := lockFor(ctx, tx, requestID, StatusPendingManager, next)
		if err != nil {
			return err
		}
		at := s.now().UTC()
		req.Status = next
		req.ManagerActor = actor.UserID
		req.ManagerAt = &at
		req.ManagerNotes = strings.TrimSpace(in.Notes)
		if res.Request, err = tx.UpdateDecision(ctx, req); err != nil {
			return err
		}

		emp, err := tx.EmployeeByID(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		data := requestData(res.Request, emp)
		if next == StatusRejected {
			data["stage"] = "manager"
			data["notes"] = res.Request.ManagerNotes
			intents = notifications.Fanout(notifications.TemplateLeaveRejected, data, emp.CompanyEmail)
			return nil
		}
		hr, err := tx.EmailsByRole(ctx, auth.RoleHR)
		if err != nil {
			return err
		}
		intents = notifications.Fanout(notifications.TemplateLeaveManagerApproved, data, hr...)
		return nil
	})
	if err != nil {
		return DecisionResult{}, nil, err
	}
	return res, intents, nil
}

// DecideHR is the final stage. Approval debits the ledger and backfills
// attendance in the same transaction as the status change, so a failure in
// either leaves the request at manager_approved.
func (s *Service) DecideHR(ctx context.Context, actor auth.UserContext, requestID string, in DecisionInput) (DecisionResult, []notifications.Intent, error) {
	if !actor.HasRole(auth.RoleHR) {
		return DecisionResult{}, nil, forbidden(auth.RoleHR)
	}
	if err := apperror.ValidateStruct(in); err != nil {
		return DecisionResult{}, nil, err
	}
	next := StatusApproved
	if in.Decision == DecisionReject {
		next = StatusRejected
	}

	var res DecisionResult
	var intents []notifications.Intent
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		req, err := lockFor(ctx, tx, requestID, StatusManagerApproved, next)
		if err != nil {
			return err
		}
		emp, err := tx.EmployeeByID(ctx, req.EmployeeID)
		if err != nil {
			return err
		}

		if next == StatusApproved {
			bal, err := s.ledger(tx).Debit(ctx, req.EmployeeID, req.Year(), req.TotalDays)
			if err != nil {
				return err
			}
			filled, err := attendance.NewBackfill(tx.Attendance()).Apply(ctx, attendance.Span{
				EmployeeID: req.EmployeeID,
				RequestID:  req.ID,
				Series:     req.Series,
				From:       req.FromDate,
				To:         req.ToDate,
			})
			if err != nil {
				return err
			}
			res.Balance = &bal
			res.Attendance = &filled
		}

		at := s.now().UTC()
		req.Status = next
		req.HRActor = actor.UserID
		req.HRAt = &at
		req.HRNotes = strings.TrimSpace(in.Notes)
		if res.Request, err = tx.UpdateDecision(ctx, req); err != nil {
			return err
		}

		data := requestData(res.Request, emp)
		template := notifications.TemplateLeaveApproved
		if next == StatusRejected {
			template = notifications.TemplateLeaveRejected
			data["stage"] = "HR"
			data["notes"] = res.Request.HRNotes
		} else {
			data["remaining"] = res.Balance.Remaining.String()
		}
		intents = notifications.Fanout(template, data, emp.CompanyEmail)
		return nil
	})
	if err != nil {
		return DecisionResult{}, nil, err
	}
	return res, intents, nil
}

// lockFor re-reads the request under a row lock and checks it can move from
// want to next. A caller that lost a race sees the winner's status here.
func lockFor(ctx context.Context, tx Tx, requestID string, want, next Status) (Request, error) {
	req, err := tx.RequestByID(ctx, requestID, true)
	if err != nil {
		return Request{}, err
	}
	if req.Status != want || !req.Status.CanTransitionTo(next) {
		return Request{}, fmt.Errorf("%w: request is %s", ErrInvalidState, req.Status)
	}
	return req, nil
}

func requestData(r Request, emp core.Employee) map[string]any {
	return map[string]any{
		"requestId":    r.ID,
		"series":       r.Series,
		"employeeName": emp.Name,
		"leaveType":    r.LeaveType,
		"from":         r.FromDate.Format("2006-01-02"),
		"to":           r.ToDate.Format("2006-01-02"),
		"totalDays":    r.TotalDays.String(),
		"reason":       r.Reason,
	}
}

// Get returns a request the caller may see. Employees only see their own;
// requests of others read as not found.
func (s *Service) Get(ctx context.Context, actor auth.UserContext, requestID string) (Request, error) {
	var out Request
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		req, err := tx.RequestByID(ctx, requestID, false)
		if err != nil {
			return err
		}
		if err := canSee(ctx, tx, actor, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	return out, err
}

func canSee(ctx context.Context, tx Tx, actor auth.UserContext, req Request) error {
	if actor.HasRole(auth.RoleHR) || actor.HasRole(auth.RoleManager) {
		return nil
	}
	emp, err := tx.EmployeeByAccount(ctx, actor.UserID)
	if errors.Is(err, core.ErrEmployeeNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}
	if emp.ID != req.EmployeeID {
		return ErrRequestNotFound
	}
	return nil
}

// List scopes employees to their own requests; managers and HR see all.
func (s *Service) List(ctx context.Context, actor auth.UserContext, filter Filter, limit, offset int) (RequestListResult, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return RequestListResult{}, apperror.Invalid("status", "is not a known leave status")
	}
	var out RequestListResult
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		if !actor.HasRole(auth.RoleHR) && !actor.HasRole(auth.RoleManager) {
			emp, err := tx.EmployeeByAccount(ctx, actor.UserID)
			if errors.Is(err, core.ErrEmployeeNotFound) {
				return ErrNotOnboarded
			}
			if err != nil {
				return err
			}
			filter.EmployeeID = emp.ID
		}
		var err error
		out, err = tx.ListRequests(ctx, filter, limit, offset)
		return err
	})
	return out, err
}

// Balances lists ledger rows for employeeID, or for the caller when empty.
// The year row is created if it does not exist yet.
func (s *Service) Balances(ctx context.Context, actor auth.UserContext, employeeID string, year int) ([]balance.Balance, error) {
	var out []balance.Balance
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		if employeeID == "" {
			emp, err := tx.EmployeeByAccount(ctx, actor.UserID)
			if errors.Is(err, core.ErrEmployeeNotFound) {
				return ErrNotOnboarded
			}
			if err != nil {
				return err
			}
			employeeID = emp.ID
		} else if !actor.HasRole(auth.RoleHR) && !actor.HasRole(auth.RoleManager) {
			emp, err := tx.EmployeeByAccount(ctx, actor.UserID)
			if err != nil || emp.ID != employeeID {
				return fmt.Errorf("%w: balances of another employee", apperror.ErrForbidden)
			}
		} else if _, err := tx.EmployeeByID(ctx, employeeID); err != nil {
			return err
		}

		ledger := s.ledger(tx)
		if _, err := ledger.Get(ctx, employeeID, year); err != nil {
			return err
		}
		var err error
		out, err = ledger.List(ctx, employeeID)
		return err
	})
	return out, err
}

// ApprovalSlip renders a PDF for an approved request.
func (s *Service) ApprovalSlip(ctx context.Context, actor auth.UserContext, requestID string) ([]byte, error) {
	var req Request
	var emp core.Employee
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		var err error
		if req, err = tx.RequestByID(ctx, requestID, false); err != nil {
			return err
		}
		if err := canSee(ctx, tx, actor, req); err != nil {
			return err
		}
		emp, err = tx.EmployeeByID(ctx, req.EmployeeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if req.Status != StatusApproved {
		return nil, fmt.Errorf("%w: slips exist only for approved requests", ErrInvalidState)
	}
	return renderSlip(req, emp, s.now())
}
