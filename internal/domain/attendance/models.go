package attendance

import "time"

type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLeave   Status = "Leave"
	StatusHoliday Status = "Holiday"
)

type Record struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employeeId"`
	Date            time.Time `json:"date"`
	Status          Status    `json:"status"`
	Reason          string    `json:"reason"`
	SourceRequestID string    `json:"sourceRequestId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Span is an approved leave to be written into attendance.
type Span struct {
	EmployeeID string
	RequestID  string
	Series     string
	From       time.Time
	To         time.Time
}

type Result struct {
	Inserted []time.Time `json:"inserted"`
	Existing int         `json:"existing"`
	Weekend  int         `json:"weekend"`
}
