package security

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jane@example.com", "j***@example.com"},
		{"a@b.io", "***@b.io"},
		{"x", "***"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskEmail(tt.in))
	}
}

func TestSecurityLogger_LevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sl := NewSecurityLogger(zap.New(core), "jobmatch-web", "test")

	sl.LogLoginFailed(context.Background(), "jane@example.com", "10.0.0.1", "ua", "req-1", "bad_password")
	sl.LogSessionInvalidated(context.Background(), "student", "10.0.0.1", "req-2", "/my-applications")

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, string(EventLoginFailed), entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "j***@example.com", fields["subject_value"])
	assert.Equal(t, "req-1", fields["request_id"])

	assert.Equal(t, string(EventSessionInvalidated), entries[1].Message)
	assert.Equal(t, "student", entries[1].ContextMap()["subject_value"])
}

func TestLoginTracker_InMemoryBlocksAfterMaxAttempts(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	lt := NewLoginTracker(LoginTrackerConfig{
		MaxAttempts:   3,
		AttemptWindow: time.Minute,
		BlockDuration: 10 * time.Minute,
	}, NewSecurityLogger(zap.New(core), "svc", "test"))
	lt.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		blocked, err := lt.RecordFailedAttempt(ctx, "Jane@Example.com", "ip", "ua", "rid")
		require.NoError(t, err)
		assert.False(t, blocked)
	}
	blocked, err := lt.RecordFailedAttempt(ctx, "jane@example.com ", "ip", "ua", "rid")
	require.NoError(t, err)
	assert.True(t, blocked)

	isBlocked, err := lt.IsBlocked(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.True(t, isBlocked)
	assert.Equal(t, 1, logs.FilterMessage(string(EventLoginBlocked)).Len())

	now = now.Add(11 * time.Minute)
	isBlocked, err = lt.IsBlocked(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.False(t, isBlocked)
}

func TestLoginTracker_ClearAttempts(t *testing.T) {
	lt := NewLoginTracker(LoginTrackerConfig{MaxAttempts: 2, AttemptWindow: time.Minute, BlockDuration: time.Minute}, nil)
	ctx := context.Background()

	_, err := lt.RecordFailedAttempt(ctx, "sam@x.io", "", "", "")
	require.NoError(t, err)
	require.NoError(t, lt.ClearAttempts(ctx, "sam@x.io"))

	blocked, err := lt.RecordFailedAttempt(ctx, "sam@x.io", "", "", "")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestValidateResume(t *testing.T) {
	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	text := []byte("Jane Doe\nSoftware Engineer\n")

	tests := []struct {
		name     string
		filename string
		data     []byte
		max      int64
		valid    bool
		errPart  string
	}{
		{name: "pdf", filename: "cv.PDF", data: pdf, max: 1 << 20, valid: true},
		{name: "plain text", filename: "cv.txt", data: text, max: 1 << 20, valid: true},
		{name: "bad extension", filename: "cv.exe", data: pdf, max: 1 << 20, errPart: "valid file type"},
		{name: "too large", filename: "cv.pdf", data: pdf, max: 8, errPart: "less than"},
		{name: "spoofed", filename: "cv.pdf", data: text, max: 1 << 20, errPart: "does not match"},
		{name: "empty", filename: "cv.txt", data: nil, max: 1 << 20, errPart: "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateResume(tt.filename, tt.data, tt.max)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.errPart != "" {
				assert.True(t, strings.Contains(result.Error, tt.errPart), result.Error)
			}
		})
	}
	assert.Equal(t, []string{".doc", ".docx", ".pdf", ".txt"}, AllowedResumeExtensions())
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, SeverityHIGH, GetSeverity(EventCSRFViolation))
	assert.Equal(t, SeverityINFO, GetSeverity(EventLogout))
	assert.Equal(t, SeverityMEDIUM, GetSeverity(EventType("unknown")))
	assert.True(t, IsHighOrAbove(EventLoginBlocked))
	assert.False(t, IsHighOrAbove(EventLoginFailed))

	core, logs := observer.New(zapcore.DebugLevel)
	sl := NewSecurityLogger(zap.New(core), "svc", "test")
	sl.Log(context.Background(), SecurityEvent{Event: EventCSRFViolation})
	sl.Log(context.Background(), SecurityEvent{Event: EventLoginSuccess})

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "HIGH", entries[0].ContextMap()["severity"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
}
