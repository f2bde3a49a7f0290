package leave

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"hrflow/internal/domain/attendance"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/balance"
	"hrflow/internal/domain/core"
)

type memState struct {
	employees  map[string]core.Employee
	managers   map[string]string
	hrEmails   []string
	balances   map[string]balance.Balance
	attendance map[string]attendance.Record
	requests   map[string]Request
	counters   map[int]int64
}

func (s memState) clone() memState {
	out := memState{
		employees:  make(map[string]core.Employee, len(s.employees)),
		managers:   make(map[string]string, len(s.managers)),
		hrEmails:   append([]string(nil), s.hrEmails...),
		balances:   make(map[string]balance.Balance, len(s.balances)),
		attendance: make(map[string]attendance.Record, len(s.attendance)),
		requests:   make(map[string]Request, len(s.requests)),
		counters:   make(map[int]int64, len(s.counters)),
	}
	for k, v := range s.employees {
		out.employees[k] = v
	}
	for k, v := range s.managers {
		out.managers[k] = v
	}
	for k, v := range s.balances {
		out.balances[k] = v
	}
	for k, v := range s.attendance {
		out.attendance[k] = v
	}
	for k, v := range s.requests {
		out.requests[k] = v
	}
	for k, v := range s.counters {
		out.counters[k] = v
	}
	return out
}

type memRepo struct {
	mu     sync.Mutex
	state  memState
	seq    int
	failOn map[string]error
}

func newMemRepo() *memRepo {
	return &memRepo{
		state: memState{
			employees:  map[string]core.Employee{},
			managers:   map[string]string{},
			balances:   map[string]balance.Balance{},
			attendance: map[string]attendance.Record{},
			requests:   map[string]Request{},
			counters:   map[int]int64{},
		},
		failOn: map[string]error{},
	}
}

func (r *memRepo) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := r.state.clone()
	if err := fn(&memTx{r: r}); err != nil {
		r.state = snapshot
		return err
	}
	return nil
}

func (r *memRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *memRepo) balance(employeeID string, year int) (balance.Balance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.state.balances[balanceKey(employeeID, year)]
	return b, ok
}

func (r *memRepo) leaveDays(employeeID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.state.attendance {
		if rec.EmployeeID == employeeID && rec.Status == attendance.StatusLeave {
			n++
		}
	}
	return n
}

func (r *memRepo) requestCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.requests)
}

func balanceKey(employeeID string, year int) string {
	return fmt.Sprintf("%s/%d", employeeID, year)
}

type memTx struct {
	r *memRepo
}

func (t *memTx) fail(op string) error {
	return t.r.failOn[op]
}

func (t *memTx) EmployeeByAccount(_ context.Context, accountID string) (core.Employee, error) {
	for _, e := range t.r.state.employees {
		if e.AccountID == accountID {
			return e, nil
		}
	}
	return core.Employee{}, core.ErrEmployeeNotFound
}

func (t *memTx) EmployeeByID(_ context.Context, employeeID string) (core.Employee, error) {
	e, ok := t.r.state.employees[employeeID]
	if !ok {
		return core.Employee{}, core.ErrEmployeeNotFound
	}
	return e, nil
}

func (t *memTx) ManagerEmails(_ context.Context, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if email, ok := t.r.state.managers[id]; ok {
			out = append(out, email)
		}
	}
	return out, nil
}

func (t *memTx) EmailsByRole(_ context.Context, role string) ([]string, error) {
	if role == auth.RoleHR {
		return append([]string(nil), t.r.state.hrEmails...), nil
	}
	return nil, nil
}

func (t *memTx) Balances() balance.StoreAPI {
	return memBalances{t: t}
}

func (t *memTx) Attendance() attendance.StoreAPI {
	return memAttendance{t: t}
}

func (t *memTx) NextSeries(_ context.Context, year int) (int64, error) {
	t.r.state.counters[year]++
	return t.r.state.counters[year], nil
}

func (t *memTx) InsertRequest(_ context.Context, req Request) (Request, error) {
	if err := t.fail("InsertRequest"); err != nil {
		return Request{}, err
	}
	req.ID = t.r.nextID("req")
	req.CreatedAt = time.Now().UTC()
	req.EmployeeName = t.r.state.employees[req.EmployeeID].Name
	t.r.state.requests[req.ID] = req
	return req, nil
}

func (t *memTx) RequestByID(_ context.Context, id string, _ bool) (Request, error) {
	req, ok := t.r.state.requests[id]
	if !ok {
		return Request{}, ErrRequestNotFound
	}
	return req, nil
}

func (t *memTx) UpdateDecision(_ context.Context, req Request) (Request, error) {
	if err := t.fail("UpdateDecision"); err != nil {
		return Request{}, err
	}
	if _, ok := t.r.state.requests[req.ID]; !ok {
		return Request{}, ErrRequestNotFound
	}
	t.r.state.requests[req.ID] = req
	return req, nil
}

func (t *memTx) ListRequests(_ context.Context, filter Filter, limit, offset int) (RequestListResult, error) {
	var all []Request
	for _, req := range t.r.state.requests {
		if filter.EmployeeID != "" && req.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		all = append(all, req)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Series < all[j].Series })
	out := RequestListResult{Total: len(all)}
	if offset < len(all) {
		all = all[offset:]
		if limit > 0 && limit < len(all) {
			all = all[:limit]
		}
		out.Requests = all
	}
	return out, nil
}

type memBalances struct {
	t *memTx
}

func (m memBalances) EnsureBalance(_ context.Context, employeeID string, year int, allocated decimal.Decimal) (balance.Balance, error) {
	key := balanceKey(employeeID, year)
	if b, ok := m.t.r.state.balances[key]; ok {
		return b, nil
	}
	b := balance.Balance{EmployeeID: employeeID, Year: year, Allocated: allocated, Taken: decimal.Zero, Remaining: allocated}
	m.t.r.state.balances[key] = b
	return b, nil
}

func (m memBalances) Debit(_ context.Context, employeeID string, year int, days decimal.Decimal) (balance.Balance, error) {
	if err := m.t.fail("Debit"); err != nil {
		return balance.Balance{}, err
	}
	key := balanceKey(employeeID, year)
	b, ok := m.t.r.state.balances[key]
	if !ok {
		return balance.Balance{}, balance.ErrBalanceNotFound
	}
	if b.Remaining.LessThan(days) {
		return balance.Balance{}, balance.ErrInsufficient
	}
	b.Taken = b.Taken.Add(days)
	b.Remaining = b.Allocated.Sub(b.Taken)
	m.t.r.state.balances[key] = b
	return b, nil
}

func (m memBalances) ListBalances(_ context.Context, employeeID string) ([]balance.Balance, error) {
	var out []balance.Balance
	for _, b := range m.t.r.state.balances {
		if b.EmployeeID == employeeID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

type memAttendance struct {
	t *memTx
}

func (m memAttendance) InsertIfAbsent(_ context.Context, rec attendance.Record) (bool, error) {
	if err := m.t.fail("InsertIfAbsent"); err != nil {
		return false, err
	}
	key := rec.EmployeeID + "/" + rec.Date.Format("2006-01-02")
	if _, ok := m.t.r.state.attendance[key]; ok {
		return false, nil
	}
	m.t.r.state.attendance[key] = rec
	return true, nil
}

func (m memAttendance) List(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, rec := range m.t.r.state.attendance {
		if rec.EmployeeID == employeeID && !rec.Date.Before(from) && !rec.Date.After(to) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
