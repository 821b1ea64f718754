package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := With(WithLogger(context.Background(), logger), "stack", "dev")

	FromContext(ctx).Info("Cycle finished.")

	assert.Contains(t, buf.String(), "stack=dev")
	assert.Contains(t, buf.String(), "Cycle finished.")
}
