package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrflow/internal/platform/config"
)

func TestNewDisabledIsNoop(t *testing.T) {
	m := New(config.Config{EmailEnabled: false, SMTPHost: "smtp.example.com"})
	_, ok := m.(noopMailer)
	require.True(t, ok)
	assert.NoError(t, m.Send(context.Background(), "a@example.com", "b@example.com", "s", "b"))
}

func TestBuildMessage(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	msg := string(buildMessage("hr@example.com", "emp@example.com", "Leave approved", "line one\nline two", at))

	assert.True(t, strings.HasPrefix(msg, "From: hr@example.com\r\nTo: emp@example.com\r\nSubject: Leave approved\r\n"))
	assert.Contains(t, msg, "Date: Mon, 02 Mar 2026 09:00:00 +0000\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nline one\r\nline two"))
}
