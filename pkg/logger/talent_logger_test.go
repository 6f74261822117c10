package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_FieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelInfo, Output: &buf, Service: "test"})

	log.Debug("hidden")
	assert.Zero(t, buf.Len())

	log.WithField("consultant_id", "c1").WithError(errors.New("boom")).Warn("upload failed: %s", "cv.pdf")
	entry := decodeLine(t, &buf)

	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "upload failed: cv.pdf", entry["message"])
	assert.Equal(t, "c1", entry["consultant_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "test", entry["service"])
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelDebug, Output: &buf})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, "u-7")
	log.WithContext(ctx).Info("ok")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "u-7", entry["user_id"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
