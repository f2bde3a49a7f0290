package attendance

import (
	"context"
	"errors"
	"time"
)

var errInvalidSpan = errors.New("attendance span ends before it starts")

// Backfill writes Leave rows for the working days of an approved span.
type Backfill struct {
	store StoreAPI
}

func NewBackfill(store StoreAPI) *Backfill {
	return &Backfill{store: store}
}

// Apply is idempotent: weekends are skipped and dates that already have a
// record, from any source, are left untouched.
func (b *Backfill) Apply(ctx context.Context, span Span) (Result, error) {
	var res Result
	from, to := dateOnly(span.From), dateOnly(span.To)
	if to.Before(from) {
		return res, errInvalidSpan
	}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if IsWeekend(day) {
			res.Weekend++
			continue
		}
		inserted, err := b.store.InsertIfAbsent(ctx, Record{
			EmployeeID:      span.EmployeeID,
			Date:            day,
			Status:          StatusLeave,
			Reason:          LeaveReason(span.Series),
			SourceRequestID: span.RequestID,
		})
		if err != nil {
			return res, err
		}
		if inserted {
			res.Inserted = append(res.Inserted, day)
		} else {
			res.Existing++
		}
	}
	return res, nil
}

func LeaveReason(series string) string {
	if series == "" {
		return "Approved leave"
	}
	return "Approved leave " + series
}

func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WorkingDays lists the weekdays in [from, to].
func WorkingDays(from, to time.Time) []time.Time {
	var out []time.Time
	for day := dateOnly(from); !day.After(dateOnly(to)); day = day.AddDate(0, 0, 1) {
		if !IsWeekend(day) {
			out = append(out, day)
		}
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
