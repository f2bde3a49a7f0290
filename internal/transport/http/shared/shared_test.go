package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrflow/internal/domain/notifications"
	"hrflow/internal/platform/apperror"
	"hrflow/internal/platform/metrics"
	"hrflow/internal/transport/http/api"
)

var errConflict = apperror.New(apperror.KindStateConflict, "invalid_state", "leave request is not in a state that allows this action", http.StatusConflict)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var env api.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestWriteErrorMapsKind(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, "req-1", fmt.Errorf("%w: request is approved", errConflict))

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_state", env.Error.Code)
	assert.Contains(t, env.Error.Message, "request is approved")
	assert.Equal(t, "req-1", env.RequestID)
}

func TestWriteErrorHidesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, "req-2", errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, apperror.CodeInternalError, env.Error.Code)
	assert.NotContains(t, env.Error.Message, "connection reset")
}

func TestWriteErrorIncludesFieldIssues(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, "", apperror.Invalid("to", "must be on or after from"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"to"`)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Decision string `json:"decision"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"decision":"approve","extra":1}`))
	err := DecodeJSON(req, &dst)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"decision":"approve"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "approve", dst.Decision)
}

func TestQueryDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?from=2025-03-03&to=nope", nil)
	from, err := QueryDate(req, "from")
	require.NoError(t, err)
	assert.Equal(t, 3, from.Day())

	_, err = QueryDate(req, "to")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	missing, err := QueryDate(req, "since")
	require.NoError(t, err)
	assert.True(t, missing.IsZero())
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=20", nil)
	page := ParsePagination(req, 50, 200)
	assert.Equal(t, 200, page.Limit)
	assert.Equal(t, 20, page.Offset)
}

func TestParsePaginationPages(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25&page=3", nil)
	page := ParsePagination(req, 50, 200)
	assert.Equal(t, 25, page.Limit)
	assert.Equal(t, 50, page.Offset)

	req = httptest.NewRequest(http.MethodGet, "/?limit=-1&page=0&offset=x", nil)
	page = ParsePagination(req, 50, 200)
	assert.Equal(t, Pagination{Limit: 50}, page)

	rec := httptest.NewRecorder()
	Pagination{Limit: 25, Offset: 50}.WriteTotal(rec, 120)
	assert.Equal(t, "120", rec.Header().Get("X-Total-Count"))
	assert.Equal(t, "25", rec.Header().Get("X-Page-Limit"))
	assert.Equal(t, "50", rec.Header().Get("X-Page-Offset"))
}

type recordingDispatcher struct {
	got []string
}

func (d *recordingDispatcher) Notify(_ context.Context, recipient, template string, _ map[string]any) bool {
	d.got = append(d.got, recipient+"|"+template)
	return true
}

func TestEffectsCommitted(t *testing.T) {
	d := &recordingDispatcher{}
	collector := metrics.New()
	effects := Effects{Notifier: d, Metrics: collector}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	effects.Committed(req, Outcome{
		Machine: "leave",
		Status:  "approved",
		Intents: notifications.Fanout(notifications.TemplateLeaveApproved, nil, "a@corp.test", "a@corp.test"),
	})

	assert.Equal(t, []string{"a@corp.test|" + notifications.TemplateLeaveApproved}, d.got)
	transitions := collector.Snapshot()["transitions"].(map[string]uint64)
	assert.Equal(t, uint64(1), transitions["leave:approved"])
}

func TestEffectsToleratesNilCollaborators(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	Effects{}.Committed(req, Outcome{Machine: "leave", Status: "approved"})
}
