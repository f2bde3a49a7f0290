package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/core"
	"hrflow/internal/platform/crypto"
	"hrflow/internal/platform/db"
)

// Store is the Postgres Repository. Form payloads are sealed with Crypto
// before they are written.
type Store struct {
	DB     db.Beginner
	Crypto *crypto.Service
}

func NewStore(pool db.Beginner, sealer *crypto.Service) *Store {
	return &Store{DB: pool, Crypto: sealer}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		return fn(&pgTx{
			q:         tx,
			crypto:    s.Crypto,
			accounts:  auth.NewStore(tx),
			directory: core.NewStore(tx),
		})
	})
}

type pgTx struct {
	q         db.Querier
	crypto    *crypto.Service
	accounts  *auth.Store
	directory *core.Store
}

func (t *pgTx) Account(ctx context.Context, accountID string, lock bool) (auth.Account, error) {
	return t.accounts.AccountByID(ctx, accountID, lock)
}

func (t *pgTx) EmailOwnedByOther(ctx context.Context, email, accountID string) (bool, error) {
	return t.accounts.EmailOwnedByOther(ctx, email, accountID)
}

func (t *pgTx) UpdateAccountEmail(ctx context.Context, accountID, email string) error {
	err := t.accounts.UpdateEmail(ctx, accountID, email)
	if errors.Is(err, auth.ErrEmailTaken) {
		return fmt.Errorf("%w: %s", ErrDuplicateIdentity, email)
	}
	return err
}

func (t *pgTx) EmailsByRole(ctx context.Context, role string) ([]string, error) {
	return t.accounts.EmailsByRole(ctx, role)
}

func (t *pgTx) EmployeeByAccount(ctx context.Context, accountID string) (core.Employee, error) {
	return t.directory.EmployeeByAccount(ctx, accountID)
}

func (t *pgTx) EmployeeEmailInUse(ctx context.Context, email string) (bool, error) {
	return t.directory.EmailInUse(ctx, email)
}

func (t *pgTx) EmployeeCodeInUse(ctx context.Context, code string) (bool, error) {
	return t.directory.CodeInUse(ctx, code)
}

func (t *pgTx) InsertEmployee(ctx context.Context, e core.Employee) (core.Employee, error) {
	out, err := t.directory.InsertEmployee(ctx, e)
	if errors.Is(err, core.ErrDuplicateEmployee) {
		return core.Employee{}, fmt.Errorf("%w: %v", ErrDuplicateIdentity, err)
	}
	return out, err
}

func (t *pgTx) FindManagers(ctx context.Context, ident string) ([]core.Manager, error) {
	return t.directory.FindManagers(ctx, ident)
}

const formColumns = `id, account_id, employment_type, payload, attachments, status,
      submitted_at, COALESCE(reviewed_by::text, ''), reviewed_at, review_notes, created_at, updated_at`

func (t *pgTx) scanForm(row pgx.Row) (Form, error) {
	var f Form
	var payload, attachments []byte
	var employmentType, status string
	if err := row.Scan(&f.ID, &f.AccountID, &employmentType, &payload, &attachments, &status,
		&f.SubmittedAt, &f.ReviewedBy, &f.ReviewedAt, &f.ReviewNotes, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return Form{}, err
	}
	f.EmploymentType = EmploymentType(employmentType)
	f.Status = FormStatus(status)
	if err := t.crypto.OpenJSON(payload, &f.Payload); err != nil {
		return Form{}, fmt.Errorf("open form payload: %w", err)
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &f.Attachments); err != nil {
			return Form{}, fmt.Errorf("decode attachments: %w", err)
		}
	}
	return f, nil
}

func (t *pgTx) formQuery(ctx context.Context, query string, args ...any) (Form, error) {
	f, err := t.scanForm(t.q.QueryRow(ctx, query, args...))
	if db.IsNoRows(err) {
		return Form{}, ErrFormNotFound
	}
	return f, err
}

func (t *pgTx) encodeForm(f Form) ([]byte, []byte, error) {
	payload, err := t.crypto.SealJSON(f.Payload)
	if err != nil {
		return nil, nil, err
	}
	if f.Attachments == nil {
		f.Attachments = []Attachment{}
	}
	attachments, err := json.Marshal(f.Attachments)
	if err != nil {
		return nil, nil, err
	}
	return payload, attachments, nil
}

func (t *pgTx) FormByAccount(ctx context.Context, accountID string, lock bool) (Form, error) {
	return t.formQuery(ctx, db.ForUpdate(`
    SELECT `+formColumns+`
    FROM employment_forms
    WHERE account_id = $1`, lock), accountID)
}

func (t *pgTx) FormByID(ctx context.Context, formID string, lock bool) (Form, error) {
	return t.formQuery(ctx, db.ForUpdate(`
    SELECT `+formColumns+`
    FROM employment_forms
    WHERE id = $1`, lock), formID)
}

func (t *pgTx) InsertForm(ctx context.Context, f Form) (Form, error) {
	payload, attachments, err := t.encodeForm(f)
	if err != nil {
		return Form{}, err
	}
	out, err := t.formQuery(ctx, `
    INSERT INTO employment_forms (account_id, employment_type, payload, attachments, status, submitted_at)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING `+formColumns,
		f.AccountID, string(f.EmploymentType), payload, attachments, string(f.Status), f.SubmittedAt)
	if _, dup := db.UniqueViolation(err); dup {
		return Form{}, fmt.Errorf("%w: form already exists for account", ErrInvalidState)
	}
	return out, err
}

func (t *pgTx) UpdateForm(ctx context.Context, f Form) (Form, error) {
	payload, attachments, err := t.encodeForm(f)
	if err != nil {
		return Form{}, err
	}
	return t.formQuery(ctx, `
    UPDATE employment_forms
    SET employment_type = $2, payload = $3, attachments = $4, status = $5,
        submitted_at = $6, reviewed_by = $7, reviewed_at = $8, review_notes = $9, updated_at = now()
    WHERE id = $1
    RETURNING `+formColumns,
		f.ID, string(f.EmploymentType), payload, attachments, string(f.Status),
		f.SubmittedAt, nullIfEmpty(f.ReviewedBy), f.ReviewedAt, f.ReviewNotes)
}

func (t *pgTx) ListForms(ctx context.Context, status FormStatus, limit, offset int) ([]Form, error) {
	rows, err := t.q.Query(ctx, `
    SELECT `+formColumns+`
    FROM employment_forms
    WHERE ($1 = '' OR status = $1)
    ORDER BY updated_at DESC
    LIMIT $2 OFFSET $3
  `, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Form
	for rows.Next() {
		f, err := t.scanForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

const stagingColumns = `id, account_id, form_id, COALESCE(employee_code, ''), COALESCE(company_email, ''),
      manager_ids::text[], status, created_at, assigned_at`

func scanStaging(row pgx.Row) (Staging, error) {
	var s Staging
	var status string
	if err := row.Scan(&s.ID, &s.AccountID, &s.FormID, &s.EmployeeCode, &s.CompanyEmail,
		&s.ManagerIDs, &status, &s.CreatedAt, &s.AssignedAt); err != nil {
		return Staging{}, err
	}
	s.Status = StagingStatus(status)
	return s, nil
}

func (t *pgTx) stagingQuery(ctx context.Context, query string, args ...any) (Staging, error) {
	s, err := scanStaging(t.q.QueryRow(ctx, query, args...))
	if db.IsNoRows(err) {
		return Staging{}, ErrStagingNotFound
	}
	return s, err
}

func (t *pgTx) StagingByID(ctx context.Context, stagingID string, lock bool) (Staging, error) {
	return t.stagingQuery(ctx, db.ForUpdate(`
    SELECT `+stagingColumns+`
    FROM staged_onboardings
    WHERE id = $1`, lock), stagingID)
}

func (t *pgTx) StagingByAccount(ctx context.Context, accountID string) (Staging, error) {
	return t.stagingQuery(ctx, `
    SELECT `+stagingColumns+`
    FROM staged_onboardings
    WHERE account_id = $1
  `, accountID)
}

func (t *pgTx) InsertStaging(ctx context.Context, s Staging) (Staging, error) {
	out, err := t.stagingQuery(ctx, `
    INSERT INTO staged_onboardings (account_id, form_id, manager_ids, status)
    VALUES ($1,$2,$3::text[]::uuid[],$4)
    RETURNING `+stagingColumns,
		s.AccountID, s.FormID, nonNil(s.ManagerIDs), string(s.Status))
	if _, dup := db.UniqueViolation(err); dup {
		return Staging{}, ErrAlreadyOnboarded
	}
	return out, err
}

func (t *pgTx) UpdateStaging(ctx context.Context, s Staging) (Staging, error) {
	return t.stagingQuery(ctx, `
    UPDATE staged_onboardings
    SET employee_code = $2, company_email = $3, manager_ids = $4::text[]::uuid[], status = $5, assigned_at = $6
    WHERE id = $1
    RETURNING `+stagingColumns,
		s.ID, nullIfEmpty(s.EmployeeCode), nullIfEmpty(s.CompanyEmail), nonNil(s.ManagerIDs), string(s.Status), s.AssignedAt)
}

func (t *pgTx) ListStaging(ctx context.Context, status StagingStatus, limit, offset int) ([]Staging, error) {
	rows, err := t.q.Query(ctx, `
    SELECT `+stagingColumns+`
    FROM staged_onboardings
    WHERE ($1 = '' OR status = $1)
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Staging
	for rows.Next() {
		s, err := scanStaging(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

var _ Tx = (*pgTx)(nil)
