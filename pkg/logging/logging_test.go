package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestIntoContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info").With("service", "storefront")

	ctx := IntoContext(context.Background(), l)
	FromContext(ctx).Info("hello", "status", 200)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "storefront", line["service"])
	assert.EqualValues(t, 200, line["status"])
}

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		level     string
		debugOn   bool
		warnOn    bool
		errorOnly bool
	}{
		{level: "debug", debugOn: true, warnOn: true},
		{level: "", warnOn: true},
		{level: "WARN", warnOn: true},
		{level: "error", errorOnly: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := NewWithWriter(&bytes.Buffer{}, tt.level)
			ctx := context.Background()
			assert.Equal(t, tt.debugOn, l.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.warnOn, l.Enabled(ctx, slog.LevelWarn))
			assert.True(t, l.Enabled(ctx, slog.LevelError))
			if tt.errorOnly {
				assert.False(t, l.Enabled(ctx, slog.LevelWarn))
			}
		})
	}
}
