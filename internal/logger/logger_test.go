package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.Info("content created", "content_id", "content-1")

	assert.Contains(t, buf.String(), `"msg":"content created"`)
	assert.Contains(t, buf.String(), `"content_id":"content-1"`)
}

func TestNew_FormatFromEnvironment(t *testing.T) {
	tests := []struct {
		env      string
		wantJSON bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: slog.LevelInfo, Environment: tt.env, Writer: &buf})
			log.Info("hello")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"level":"INFO"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(input))
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	ctx := context.Background()

	assert.False(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelWarn))
	assert.True(t, h.Enabled(ctx, slog.LevelError))

	defaults := NewPrettyHandler(&bytes.Buffer{}, nil)
	assert.False(t, defaults.Enabled(ctx, slog.LevelDebug))
	assert.True(t, defaults.Enabled(ctx, slog.LevelInfo))
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.Warn("share link created", "owner_id", "user-1", "title", "two words")

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "share link created")
	assert.Contains(t, out, "owner_id=user-1")
	assert.Contains(t, out, `title="two words"`)
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).
		With("component", "api").
		WithGroup("http").
		With("method", "GET")

	log.Info("request", "status", 200)

	out := buf.String()
	assert.Contains(t, out, "component=api")
	assert.Contains(t, out, "http.method=GET")
	assert.Contains(t, out, "http.status=200")
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true}))

	log.Info("with source")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, "2025-01-02T03:04:05Z", formatValue(slog.TimeValue(ts)))
	assert.Equal(t, "1.5s", formatValue(slog.DurationValue(1500*time.Millisecond)))
	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, `"has space"`, formatValue(slog.StringValue("has space")))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
	assert.Equal(t, "true", formatValue(slog.BoolValue(true)))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.WithError(errors.New("boom")).
		WithField("content_id", "content-1").
		WithFields(map[string]any{"owner_id": "user-1"}).
		Error("delete failed")

	out := buf.String()
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"content_id":"content-1"`)
	assert.Contains(t, out, `"owner_id":"user-1"`)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	require.NotNil(t, log)
	log.Info("dropped")
}
