package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hrflow/internal/app/server"
	"hrflow/internal/domain/auth"
	"hrflow/internal/platform/config"
)

const (
	secret       = "test-secret"
	hrEmail      = "hr@test.local"
	managerEmail = "journey.manager@test.local"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type client struct {
	t    *testing.T
	http *http.Client
	base string
}

func (c client) call(token, method, path string, body any, wantStatus int, out any) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+"/api/v1"+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	require.Equalf(c.t, wantStatus, resp.StatusCode, "%s %s: %s", method, path, raw)
	if out == nil {
		return
	}
	var env envelope
	require.NoError(c.t, json.Unmarshal(raw, &env))
	require.NoError(c.t, json.Unmarshal(env.Data, out))
}

func testApp(t *testing.T) (*server.App, client) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:            dbURL,
		JWTSecret:              secret,
		DataEncryptionKey:      "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		Environment:            "test",
		SeedHREmail:            hrEmail,
		SeedHRPassword:         "ChangeMe123!",
		SeedManagers:           []string{"Journey Manager:" + managerEmail},
		SeedManagerPassword:    "Manager123!",
		EmailFrom:              "no-reply@test.local",
		RunMigrations:          true,
		RunSeed:                true,
		MaxBodyBytes:           1048576,
		RateLimitPerMinute:     1000,
		LeaveDefaultAllocation: 27,
		NotifyWorkers:          1,
		NotifyQueueSize:        16,
		ShutdownTimeout:        5 * time.Second,
	}

	app, err := server.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, client{t: t, http: ts.Client(), base: ts.URL}
}

func tokenFor(t *testing.T, app *server.App, email, role string) string {
	t.Helper()
	var id string
	err := app.DB.QueryRow(context.Background(), `SELECT id::text FROM accounts WHERE lower(email) = lower($1)`, email).Scan(&id)
	require.NoError(t, err)
	return mint(t, id, role, email)
}

func mint(t *testing.T, accountID, role, email string) string {
	t.Helper()
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: accountID, RoleName: role, Email: email}, time.Hour)
	require.NoError(t, err)
	return token
}

// onboard walks a fresh hire through form, review and promotion and returns
// the employee token and id.
func onboard(t *testing.T, c client, hrToken string) (string, string) {
	t.Helper()
	stamp := time.Now().UnixNano()
	personal := fmt.Sprintf("journey-%d@example.com", stamp)

	var hire auth.HireResult
	c.call(hrToken, http.MethodPost, "/onboarding/hires", map[string]any{"email": personal}, http.StatusCreated, &hire)
	require.NotEmpty(t, hire.TempPassword)
	empToken := mint(t, hire.Account.ID, auth.RoleEmployee, personal)

	var form struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	c.call(empToken, http.MethodPost, "/onboarding/form", map[string]any{
		"employmentType": "Full-Time",
		"payload":        map[string]any{"fullName": "Journey Person", "phone": "555-0100"},
	}, http.StatusOK, &form)
	require.Equal(t, "draft", form.Status)

	c.call(empToken, http.MethodPost, "/onboarding/form/submit", nil, http.StatusOK, &form)
	require.Equal(t, "submitted", form.Status)

	// a submitted form is locked for the hire
	c.call(empToken, http.MethodPost, "/onboarding/form", map[string]any{
		"employmentType": "Full-Time",
		"payload":        map[string]any{"fullName": "Changed"},
	}, http.StatusConflict, nil)

	var reviewed struct {
		Staging struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"staging"`
	}
	c.call(hrToken, http.MethodPost, "/onboarding/forms/"+form.ID+"/review", map[string]any{"decision": "approve"}, http.StatusOK, &reviewed)
	require.Equal(t, "pending_assignment", reviewed.Staging.Status)

	var promoted struct {
		Employee struct {
			ID           string `json:"id"`
			CompanyEmail string `json:"companyEmail"`
		} `json:"employee"`
	}
	companyEmail := fmt.Sprintf("journey.person.%d@corp.test", stamp)
	c.call(hrToken, http.MethodPost, "/onboarding/staging/"+reviewed.Staging.ID+"/promote", map[string]any{
		"name":           "Journey Person",
		"companyEmail":   companyEmail,
		"primaryManager": managerEmail,
	}, http.StatusOK, &promoted)
	require.Equal(t, companyEmail, promoted.Employee.CompanyEmail)

	c.call(hrToken, http.MethodPost, "/onboarding/staging/"+reviewed.Staging.ID+"/promote", map[string]any{
		"name":           "Journey Person",
		"companyEmail":   "other." + companyEmail,
		"primaryManager": managerEmail,
	}, http.StatusConflict, nil)

	return empToken, promoted.Employee.ID
}

type leaveRequest struct {
	ID        string          `json:"id"`
	Series    string          `json:"series"`
	Status    string          `json:"status"`
	TotalDays decimal.Decimal `json:"totalDays"`
}

func TestOnboardingToLeaveJourney(t *testing.T) {
	app, c := testApp(t)
	hrToken := tokenFor(t, app, hrEmail, auth.RoleHR)
	managerToken := tokenFor(t, app, managerEmail, auth.RoleManager)
	empToken, employeeID := onboard(t, c, hrToken)

	var before []struct {
		Remaining decimal.Decimal `json:"remaining"`
	}
	c.call(empToken, http.MethodGet, "/leave/balances?year=2030", nil, http.StatusOK, &before)
	require.Len(t, before, 1)
	require.True(t, before[0].Remaining.Equal(decimal.NewFromInt(27)))

	// Monday 4 March 2030 to Wednesday 6 March 2030.
	var req leaveRequest
	c.call(empToken, http.MethodPost, "/leave/requests", map[string]any{
		"leaveType": "Annual",
		"from":      "2030-03-04",
		"to":        "2030-03-06",
		"reason":    "family trip",
	}, http.StatusCreated, &req)
	require.Equal(t, "pending_manager_approval", req.Status)
	require.True(t, req.TotalDays.Equal(decimal.NewFromInt(3)))
	require.Regexp(t, `^LV-2030-\d{5}$`, req.Series)

	// HR cannot skip the manager stage.
	c.call(hrToken, http.MethodPost, "/leave/requests/"+req.ID+"/hr-decision", map[string]any{"decision": "approve"}, http.StatusConflict, nil)

	var managerRes struct {
		Request leaveRequest `json:"request"`
	}
	c.call(managerToken, http.MethodPost, "/leave/requests/"+req.ID+"/manager-decision", map[string]any{"decision": "approve"}, http.StatusOK, &managerRes)
	require.Equal(t, "manager_approved", managerRes.Request.Status)

	var hrRes struct {
		Request leaveRequest `json:"request"`
		Balance struct {
			Remaining decimal.Decimal `json:"remaining"`
		} `json:"balance"`
	}
	c.call(hrToken, http.MethodPost, "/leave/requests/"+req.ID+"/hr-decision", map[string]any{"decision": "approve"}, http.StatusOK, &hrRes)
	require.Equal(t, "approved", hrRes.Request.Status)
	require.True(t, hrRes.Balance.Remaining.Equal(decimal.NewFromInt(24)))

	// A second approval is a state conflict and leaves the ledger alone.
	c.call(hrToken, http.MethodPost, "/leave/requests/"+req.ID+"/hr-decision", map[string]any{"decision": "approve"}, http.StatusConflict, nil)

	var attendance struct {
		EmployeeID string `json:"employeeId"`
		Records    []struct {
			Status string `json:"status"`
		} `json:"records"`
	}
	c.call(empToken, http.MethodGet, "/attendance?from=2030-03-01&to=2030-03-31", nil, http.StatusOK, &attendance)
	require.Equal(t, employeeID, attendance.EmployeeID)
	require.Len(t, attendance.Records, 3)
	for _, rec := range attendance.Records {
		require.Equal(t, "Leave", rec.Status)
	}

	var after []struct {
		Taken     decimal.Decimal `json:"taken"`
		Remaining decimal.Decimal `json:"remaining"`
	}
	c.call(empToken, http.MethodGet, "/leave/balances?year=2030", nil, http.StatusOK, &after)
	require.Len(t, after, 1)
	require.True(t, after[0].Taken.Equal(decimal.NewFromInt(3)))
	require.True(t, after[0].Remaining.Equal(decimal.NewFromInt(24)))
}

func TestLeaveRejectedBeyondBalance(t *testing.T) {
	app, c := testApp(t)
	hrToken := tokenFor(t, app, hrEmail, auth.RoleHR)
	empToken, _ := onboard(t, c, hrToken)

	// 1 to 28 April 2030 is 28 days against an allocation of 27.
	c.call(empToken, http.MethodPost, "/leave/requests", map[string]any{
		"leaveType": "Annual",
		"from":      "2030-04-01",
		"to":        "2030-04-28",
	}, http.StatusUnprocessableEntity, nil)
}

func TestEmployeeCannotReadOtherBalances(t *testing.T) {
	app, c := testApp(t)
	hrToken := tokenFor(t, app, hrEmail, auth.RoleHR)
	empToken, _ := onboard(t, c, hrToken)
	_, otherID := onboard(t, c, hrToken)

	c.call(empToken, http.MethodGet, "/leave/balances?employeeId="+otherID, nil, http.StatusForbidden, nil)
	c.call(hrToken, http.MethodGet, "/leave/balances?employeeId="+otherID, nil, http.StatusOK, nil)
}
