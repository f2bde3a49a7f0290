package leave

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"hrflow/internal/domain/core"
)

func renderSlip(req Request, emp core.Employee, issuedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Leave approval "+req.Series, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Leave Approval Slip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)

	lines := []string{
		fmt.Sprintf("Request: %s", req.Series),
		fmt.Sprintf("Employee: %s (%s)", emp.Name, emp.EmployeeCode),
		fmt.Sprintf("Email: %s", emp.CompanyEmail),
		fmt.Sprintf("Leave type: %s", req.LeaveType),
		fmt.Sprintf("Period: %s to %s", req.FromDate.Format("2006-01-02"), req.ToDate.Format("2006-01-02")),
		fmt.Sprintf("Days: %s", req.TotalDays.String()),
		fmt.Sprintf("Balance before request: %s", req.BalanceBefore.String()),
	}
	if req.ManagerAt != nil {
		lines = append(lines, fmt.Sprintf("Manager approval: %s", req.ManagerAt.Format("2006-01-02 15:04 MST")))
	}
	if req.HRAt != nil {
		lines = append(lines, fmt.Sprintf("HR approval: %s", req.HRAt.Format("2006-01-02 15:04 MST")))
	}
	for _, line := range lines {
		pdf.Cell(0, 8, line)
		pdf.Ln(7)
	}
	pdf.Ln(5)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Issued %s", issuedAt.UTC().Format(time.RFC3339)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
