package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	rows    map[string]Record
	failOn  string
	inserts int
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]Record{}}
}

func rowKey(employeeID string, day time.Time) string {
	return fmt.Sprintf("%s/%s", employeeID, day.Format("2006-01-02"))
}

func (m *memStore) InsertIfAbsent(_ context.Context, rec Record) (bool, error) {
	k := rowKey(rec.EmployeeID, rec.Date)
	if k == m.failOn {
		return false, errors.New("insert failed")
	}
	if _, ok := m.rows[k]; ok {
		return false, nil
	}
	m.inserts++
	m.rows[k] = rec
	return true, nil
}

func (m *memStore) List(_ context.Context, employeeID string, from, to time.Time) ([]Record, error) {
	var out []Record
	for _, rec := range m.rows {
		if rec.EmployeeID == employeeID && !rec.Date.Before(from) && !rec.Date.After(to) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestApplySkipsWeekends(t *testing.T) {
	store := newMemStore()
	bf := NewBackfill(store)

	// Fri 2026-03-06 .. Tue 2026-03-10
	res, err := bf.Apply(context.Background(), Span{EmployeeID: "e1", RequestID: "r1", Series: "LV-2026-00001", From: day(2026, 3, 6), To: day(2026, 3, 10)})
	require.NoError(t, err)
	assert.Len(t, res.Inserted, 3)
	assert.Equal(t, 2, res.Weekend)
	assert.Equal(t, 0, res.Existing)

	recs, err := store.List(context.Background(), "e1", day(2026, 3, 1), day(2026, 3, 31))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.Equal(t, StatusLeave, rec.Status)
		assert.Equal(t, "Approved leave LV-2026-00001", rec.Reason)
		assert.Equal(t, "r1", rec.SourceRequestID)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	store := newMemStore()
	bf := NewBackfill(store)
	span := Span{EmployeeID: "e1", RequestID: "r1", Series: "LV-2026-00002", From: day(2026, 3, 2), To: day(2026, 3, 4)}

	first, err := bf.Apply(context.Background(), span)
	require.NoError(t, err)
	snapshot := len(store.rows)

	second, err := bf.Apply(context.Background(), span)
	require.NoError(t, err)
	assert.Len(t, first.Inserted, 3)
	assert.Empty(t, second.Inserted)
	assert.Equal(t, 3, second.Existing)
	assert.Equal(t, snapshot, len(store.rows))
	assert.Equal(t, 3, store.inserts)
}

func TestApplyKeepsExistingRecords(t *testing.T) {
	store := newMemStore()
	existing := Record{EmployeeID: "e1", Date: day(2026, 3, 3), Status: StatusPresent, Reason: "badge"}
	store.rows[rowKey("e1", existing.Date)] = existing

	res, err := NewBackfill(store).Apply(context.Background(), Span{EmployeeID: "e1", From: day(2026, 3, 2), To: day(2026, 3, 4)})
	require.NoError(t, err)
	assert.Len(t, res.Inserted, 2)
	assert.Equal(t, 1, res.Existing)
	assert.Equal(t, StatusPresent, store.rows[rowKey("e1", existing.Date)].Status)
}

func TestApplyWeekendOnlySpan(t *testing.T) {
	store := newMemStore()
	res, err := NewBackfill(store).Apply(context.Background(), Span{EmployeeID: "e1", From: day(2026, 3, 7), To: day(2026, 3, 8)})
	require.NoError(t, err)
	assert.Empty(t, res.Inserted)
	assert.Equal(t, 2, res.Weekend)
	assert.Empty(t, store.rows)
}

func TestApplyPropagatesStoreError(t *testing.T) {
	store := newMemStore()
	store.failOn = rowKey("e1", day(2026, 3, 3))
	_, err := NewBackfill(store).Apply(context.Background(), Span{EmployeeID: "e1", From: day(2026, 3, 2), To: day(2026, 3, 4)})
	require.Error(t, err)
}

func TestApplyRejectsReversedSpan(t *testing.T) {
	_, err := NewBackfill(newMemStore()).Apply(context.Background(), Span{EmployeeID: "e1", From: day(2026, 3, 4), To: day(2026, 3, 2)})
	require.Error(t, err)
}

func TestWorkingDays(t *testing.T) {
	days := WorkingDays(day(2026, 2, 27), day(2026, 3, 3))
	require.Len(t, days, 3)
	assert.Equal(t, day(2026, 2, 27), days[0])
	assert.Equal(t, day(2026, 3, 2), days[1])
	assert.Equal(t, "Approved leave", LeaveReason(""))
}
