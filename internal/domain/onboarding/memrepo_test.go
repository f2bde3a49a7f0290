package onboarding

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/core"
)

type memState struct {
	accounts  map[string]auth.Account
	forms     map[string]Form
	staging   map[string]Staging
	employees map[string]core.Employee
	managers  []core.Manager
}

func (s memState) clone() memState {
	out := memState{
		accounts:  make(map[string]auth.Account, len(s.accounts)),
		forms:     make(map[string]Form, len(s.forms)),
		staging:   make(map[string]Staging, len(s.staging)),
		employees: make(map[string]core.Employee, len(s.employees)),
		managers:  append([]core.Manager(nil), s.managers...),
	}
	for k, v := range s.accounts {
		out.accounts[k] = v
	}
	for k, v := range s.forms {
		out.forms[k] = v
	}
	for k, v := range s.staging {
		out.staging[k] = v
	}
	for k, v := range s.employees {
		out.employees[k] = v
	}
	return out
}

// memRepo serialises transactions and restores the pre-transaction state
// when fn fails.
type memRepo struct {
	mu     sync.Mutex
	state  memState
	seq    int
	failOn map[string]error
}

func newMemRepo() *memRepo {
	return &memRepo{
		state: memState{
			accounts:  map[string]auth.Account{},
			forms:     map[string]Form{},
			staging:   map[string]Staging{},
			employees: map[string]core.Employee{},
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

func (r *memRepo) addAccount(id, email, role string) {
	r.state.accounts[id] = auth.Account{ID: id, Email: email, Role: role, Status: "active"}
}

func (r *memRepo) addManager(id, name, email, status string) {
	r.state.managers = append(r.state.managers, core.Manager{ID: id, Name: name, Email: email, Status: status})
}

// snapshot copies state under the lock for assertions.
func (r *memRepo) snapshot() memState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone()
}

type memTx struct {
	r *memRepo
}

func (t *memTx) fail(op string) error {
	return t.r.failOn[op]
}

func (t *memTx) Account(_ context.Context, accountID string, _ bool) (auth.Account, error) {
	a, ok := t.r.state.accounts[accountID]
	if !ok {
		return auth.Account{}, auth.ErrAccountNotFound
	}
	return a, nil
}

func (t *memTx) EmailOwnedByOther(_ context.Context, email, accountID string) (bool, error) {
	for _, a := range t.r.state.accounts {
		if a.ID != accountID && strings.EqualFold(a.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) UpdateAccountEmail(ctx context.Context, accountID, email string) error {
	if err := t.fail("UpdateAccountEmail"); err != nil {
		return err
	}
	if taken, _ := t.EmailOwnedByOther(ctx, email, accountID); taken {
		return ErrDuplicateIdentity
	}
	a, ok := t.r.state.accounts[accountID]
	if !ok {
		return auth.ErrAccountNotFound
	}
	a.Email = email
	t.r.state.accounts[accountID] = a
	return nil
}

func (t *memTx) EmailsByRole(_ context.Context, role string) ([]string, error) {
	var out []string
	for _, a := range t.r.state.accounts {
		if a.Role == role {
			out = append(out, a.Email)
		}
	}
	return out, nil
}

func (t *memTx) FormByAccount(_ context.Context, accountID string, _ bool) (Form, error) {
	for _, f := range t.r.state.forms {
		if f.AccountID == accountID {
			return f, nil
		}
	}
	return Form{}, ErrFormNotFound
}

func (t *memTx) FormByID(_ context.Context, formID string, _ bool) (Form, error) {
	f, ok := t.r.state.forms[formID]
	if !ok {
		return Form{}, ErrFormNotFound
	}
	return f, nil
}

func (t *memTx) InsertForm(ctx context.Context, f Form) (Form, error) {
	if _, err := t.FormByAccount(ctx, f.AccountID, false); err == nil {
		return Form{}, ErrInvalidState
	}
	f.ID = t.r.nextID("form")
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	t.r.state.forms[f.ID] = f
	return f, nil
}

func (t *memTx) UpdateForm(_ context.Context, f Form) (Form, error) {
	if err := t.fail("UpdateForm"); err != nil {
		return Form{}, err
	}
	if _, ok := t.r.state.forms[f.ID]; !ok {
		return Form{}, ErrFormNotFound
	}
	f.UpdatedAt = time.Now()
	t.r.state.forms[f.ID] = f
	return f, nil
}

func (t *memTx) ListForms(_ context.Context, status FormStatus, _, _ int) ([]Form, error) {
	var out []Form
	for _, f := range t.r.state.forms {
		if status == "" || f.Status == status {
			out = append(out, f)
		}
	}
	return out, nil
}

func (t *memTx) StagingByID(_ context.Context, stagingID string, _ bool) (Staging, error) {
	s, ok := t.r.state.staging[stagingID]
	if !ok {
		return Staging{}, ErrStagingNotFound
	}
	return s, nil
}

func (t *memTx) StagingByAccount(_ context.Context, accountID string) (Staging, error) {
	for _, s := range t.r.state.staging {
		if s.AccountID == accountID {
			return s, nil
		}
	}
	return Staging{}, ErrStagingNotFound
}

func (t *memTx) InsertStaging(_ context.Context, s Staging) (Staging, error) {
	if err := t.fail("InsertStaging"); err != nil {
		return Staging{}, err
	}
	for _, existing := range t.r.state.staging {
		if existing.AccountID == s.AccountID || existing.FormID == s.FormID {
			return Staging{}, ErrAlreadyOnboarded
		}
	}
	s.ID = t.r.nextID("staging")
	s.CreatedAt = time.Now()
	t.r.state.staging[s.ID] = s
	return s, nil
}

func (t *memTx) UpdateStaging(_ context.Context, s Staging) (Staging, error) {
	if err := t.fail("UpdateStaging"); err != nil {
		return Staging{}, err
	}
	t.r.state.staging[s.ID] = s
	return s, nil
}

func (t *memTx) ListStaging(_ context.Context, status StagingStatus, _, _ int) ([]Staging, error) {
	var out []Staging
	for _, s := range t.r.state.staging {
		if status == "" || s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t *memTx) EmployeeByAccount(_ context.Context, accountID string) (core.Employee, error) {
	for _, e := range t.r.state.employees {
		if e.AccountID == accountID {
			return e, nil
		}
	}
	return core.Employee{}, core.ErrEmployeeNotFound
}

func (t *memTx) EmployeeEmailInUse(_ context.Context, email string) (bool, error) {
	for _, e := range t.r.state.employees {
		if strings.EqualFold(e.CompanyEmail, email) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) EmployeeCodeInUse(_ context.Context, code string) (bool, error) {
	for _, e := range t.r.state.employees {
		if e.EmployeeCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertEmployee(_ context.Context, e core.Employee) (core.Employee, error) {
	if err := t.fail("InsertEmployee"); err != nil {
		return core.Employee{}, err
	}
	for _, existing := range t.r.state.employees {
		if existing.AccountID == e.AccountID || existing.EmployeeCode == e.EmployeeCode || strings.EqualFold(existing.CompanyEmail, e.CompanyEmail) {
			return core.Employee{}, ErrDuplicateIdentity
		}
	}
	e.ID = t.r.nextID("emp")
	e.CreatedAt = time.Now()
	t.r.state.employees[e.ID] = e
	return e, nil
}

func (t *memTx) FindManagers(_ context.Context, ident string) ([]core.Manager, error) {
	var out []core.Manager
	for _, m := range t.r.state.managers {
		if m.ID == ident || strings.EqualFold(m.Email, ident) || strings.EqualFold(m.Name, ident) {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ Tx = (*memTx)(nil)
