package leavehandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/leave"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

// The service has no repository: every case here must be rejected before
// a transaction would be opened.
func newRouter() chi.Router {
	h := NewHandler(leave.NewService(nil, decimal.NewFromInt(27)), auth.NewStaticPermissions(), shared.Effects{})
	router := chi.NewRouter()
	h.RegisterRoutes(router)
	return router
}

func do(t *testing.T, user *auth.UserContext, method, target, body string) (*httptest.ResponseRecorder, api.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	var env api.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

var (
	employee = &auth.UserContext{UserID: "acc-emp", RoleName: auth.RoleEmployee}
	manager  = &auth.UserContext{UserID: "acc-mgr", RoleName: auth.RoleManager}
	hr       = &auth.UserContext{UserID: "acc-hr", RoleName: auth.RoleHR}
)

func TestRequiresAuthentication(t *testing.T) {
	rec, env := do(t, nil, http.MethodGet, "/leave/requests", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unauthorized", env.Error.Code)
}

func TestDecisionRoutesArePermissionGated(t *testing.T) {
	cases := []struct {
		name   string
		user   *auth.UserContext
		target string
	}{
		{"employee manager decision", employee, "/leave/requests/r1/manager-decision"},
		{"employee hr decision", employee, "/leave/requests/r1/hr-decision"},
		{"manager hr decision", manager, "/leave/requests/r1/hr-decision"},
		{"hr manager decision", hr, "/leave/requests/r1/manager-decision"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := do(t, tc.user, http.MethodPost, tc.target, `{"decision":"approve"}`)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, "forbidden", env.Error.Code)
		})
	}
}

func TestHRCannotSubmitLeave(t *testing.T) {
	rec, _ := do(t, hr, http.MethodPost, "/leave/requests", `{"leaveType":"Annual","from":"2025-03-03"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"bad from date", `{"leaveType":"Annual","from":"03/03/2025"}`, "from"},
		{"bad to date", `{"leaveType":"Annual","from":"2025-03-03","to":"tomorrow"}`, "to"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := do(t, employee, http.MethodPost, "/leave/requests", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, "invalid_payload", env.Error.Code)
			assert.Contains(t, rec.Body.String(), `"field":"`+tc.field+`"`)
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		rec, _ := do(t, employee, http.MethodPost, "/leave/requests", `{"leaveType":"Annual","from":"2025-03-03","days":3}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDecisionValidatesPayload(t *testing.T) {
	rec, env := do(t, hr, http.MethodPost, "/leave/requests/r1/hr-decision", `{"decision":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, rec.Body.String(), `"field":"decision"`)
}

func TestBalancesRejectsYearOutOfRange(t *testing.T) {
	for _, year := range []string{"1999", "2101", "abc"} {
		rec, _ := do(t, employee, http.MethodGet, "/leave/balances?year="+year, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, year)
	}
}
