package core

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// MaxManagers is the number of manager slots on an employee record.
const MaxManagers = 3

// Employee is the canonical employee master record.
type Employee struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"accountId"`
	EmployeeCode   string    `json:"employeeCode"`
	Name           string    `json:"name"`
	CompanyEmail   string    `json:"companyEmail"`
	ManagerIDs     []string  `json:"managerIds"`
	EmploymentType string    `json:"employmentType"`
	Status         string    `json:"status"`
	Department     string    `json:"department"`
	Designation    string    `json:"designation"`
	Location       string    `json:"location"`
	JoinedOn       time.Time `json:"joinedOn"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Manager struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"accountId,omitempty"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (m Manager) Active() bool {
	return m.Status == StatusActive
}
