package onboarding

import (
	"time"

	"hrflow/internal/domain/core"
)

type EmploymentType string

const (
	TypeIntern   EmploymentType = "Intern"
	TypeContract EmploymentType = "Contract"
	TypeFullTime EmploymentType = "Full-Time"
	TypeManager  EmploymentType = "Manager"
)

type FormStatus string

const (
	FormDraft     FormStatus = "draft"
	FormSubmitted FormStatus = "submitted"
	FormApproved  FormStatus = "approved"
	FormRejected  FormStatus = "rejected"
)

type StagingStatus string

const (
	StagingPending  StagingStatus = "pending_assignment"
	StagingAssigned StagingStatus = "assigned"
)

// Stage is the single status callers see for an account's onboarding.
type Stage string

const (
	StageNoForm            Stage = "no_form"
	StageDraft             Stage = "draft"
	StageSubmitted         Stage = "submitted"
	StageRejected          Stage = "rejected"
	StagePendingAssignment Stage = "pending_assignment"
	StageOnboarded         Stage = "onboarded"
)

type Attachment struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	Ref         string `json:"ref" validate:"required,max=1024"`
	ContentType string `json:"contentType,omitempty" validate:"omitempty,max=255"`
}

type Form struct {
	ID             string         `json:"id"`
	AccountID      string         `json:"accountId"`
	EmploymentType EmploymentType `json:"employmentType"`
	Payload        map[string]any `json:"payload"`
	Attachments    []Attachment   `json:"attachments"`
	Status         FormStatus     `json:"status"`
	SubmittedAt    *time.Time     `json:"submittedAt,omitempty"`
	ReviewedBy     string         `json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewedAt,omitempty"`
	ReviewNotes    string         `json:"reviewNotes,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type Staging struct {
	ID           string        `json:"id"`
	AccountID    string        `json:"accountId"`
	FormID       string        `json:"formId"`
	EmployeeCode string        `json:"employeeCode,omitempty"`
	CompanyEmail string        `json:"companyEmail,omitempty"`
	ManagerIDs   []string      `json:"managerIds"`
	Status       StagingStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	AssignedAt   *time.Time    `json:"assignedAt,omitempty"`
}

// Onboarding is the aggregate view of one account's pipeline.
type Onboarding struct {
	AccountID string         `json:"accountId"`
	Stage     Stage          `json:"stage"`
	Form      *Form          `json:"form,omitempty"`
	Staging   *Staging       `json:"staging,omitempty"`
	Employee  *core.Employee `json:"employee,omitempty"`
}

type ReviewResult struct {
	Form    Form     `json:"form"`
	Staging *Staging `json:"staging,omitempty"`
}

// PromoteResult carries the new master record. Dropped lists optional
// manager identifiers that did not resolve.
type PromoteResult struct {
	Employee core.Employee `json:"employee"`
	Staging  Staging       `json:"staging"`
	Dropped  []string      `json:"droppedManagers,omitempty"`
}
