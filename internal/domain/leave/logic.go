package leave

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	errReversedSpan = errors.New("end date before start date")
	halfDay         = decimal.NewFromFloat(0.5)
)

// CalculateDays returns the inclusive calendar day count between start and end.
func CalculateDays(start, end time.Time) (int, error) {
	start, end = dateOnly(start), dateOnly(end)
	if end.Before(start) {
		return 0, errReversedSpan
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// TotalDays is the leave charged for a span; a half day takes 0.5 off.
func TotalDays(from, to time.Time, half bool) (decimal.Decimal, error) {
	days, err := CalculateDays(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.NewFromInt(int64(days))
	if half {
		total = total.Sub(halfDay)
	}
	return total, nil
}

// FormatSeries renders the human-readable request token, e.g. LV-2026-00042.
func FormatSeries(year int, n int64) string {
	return fmt.Sprintf("LV-%d-%05d", year, n)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
