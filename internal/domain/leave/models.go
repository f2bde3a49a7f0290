package leave

import (
	"time"

	"github.com/shopspring/decimal"

	"hrflow/internal/domain/attendance"
	"hrflow/internal/domain/balance"
)

type Status string

const (
	StatusPendingManager  Status = "pending_manager_approval"
	StatusManagerApproved Status = "manager_approved"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

type Request struct {
	ID            string          `json:"id"`
	Series        string          `json:"series"`
	EmployeeID    string          `json:"employeeId"`
	EmployeeName  string          `json:"employeeName,omitempty"`
	LeaveType     string          `json:"leaveType"`
	FromDate      time.Time       `json:"fromDate"`
	ToDate        time.Time       `json:"toDate"`
	HalfDay       bool            `json:"halfDay"`
	TotalDays     decimal.Decimal `json:"totalDays"`
	Reason        string          `json:"reason"`
	Status        Status          `json:"status"`
	ManagerActor  string          `json:"managerActor,omitempty"`
	ManagerAt     *time.Time      `json:"managerAt,omitempty"`
	ManagerNotes  string          `json:"managerNotes,omitempty"`
	HRActor       string          `json:"hrActor,omitempty"`
	HRAt          *time.Time      `json:"hrAt,omitempty"`
	HRNotes       string          `json:"hrNotes,omitempty"`
	BalanceBefore decimal.Decimal `json:"leaveBalanceBefore"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Year is the ledger year the request draws from.
func (r Request) Year() int {
	return r.FromDate.Year()
}

type Filter struct {
	EmployeeID string
	Status     Status
}

type RequestListResult struct {
	Requests []Request `json:"requests"`
	Total    int       `json:"total"`
}

// DecisionResult is the outcome of a manager or HR decision. Balance and
// Attendance are set only on final approval.
type DecisionResult struct {
	Request    Request            `json:"request"`
	Balance    *balance.Balance   `json:"balance,omitempty"`
	Attendance *attendance.Result `json:"attendance,omitempty"`
}
