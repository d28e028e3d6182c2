package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.Info("book created", "book_uid", "b-1")

	assert.Contains(t, buf.String(), `"msg":"book created"`)
	assert.Contains(t, buf.String(), `"book_uid":"b-1"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf})
			log.Info("hello")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.NotContains(t, buf.String(), `"msg"`)
			}
		})
	}
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelWarn, Format: "pretty", Writer: &buf})

	log.Info("quiet")
	log.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
	assert.Contains(t, buf.String(), "WRN")
}

func TestPrettyHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.With("request_id", "r1").WithGroup("mail").Info("queued", "to", "a@b.c")

	out := buf.String()
	assert.Contains(t, out, "request_id=r1")
	assert.Contains(t, out, "mail.to=a@b.c")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestPrettyHandler_ComponentTag(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.Info("OK 00001_create_users.sql", "component", "goose")

	out := buf.String()
	assert.Contains(t, out, "[goose]")
	assert.NotContains(t, out, "component=")
	assert.Less(t, strings.Index(out, "[goose]"), strings.Index(out, "OK 00001"))
}

func TestContextLogger(t *testing.T) {
	fallback := Discard()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	scoped := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx, fallback))
}
