package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"hrflow/internal/domain/auth"
)

func TestRequirePermission(t *testing.T) {
	guard := RequirePermission(auth.PermLeaveHRAct, auth.NewStaticPermissions())
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name string
		user *auth.UserContext
		want int
	}{
		{name: "anonymous", want: http.StatusUnauthorized},
		{name: "manager", user: &auth.UserContext{UserID: "m1", RoleName: auth.RoleManager}, want: http.StatusForbidden},
		{name: "hr", user: &auth.UserContext{UserID: "h1", RoleName: auth.RoleHR}, want: http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.user != nil {
				req = req.WithContext(WithUser(context.Background(), *tc.user))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
