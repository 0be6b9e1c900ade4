package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomHandler_FormatsTypeAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandlerWithOptions("swapbook", &buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.Info("Swap transition committed",
		slog.String("type", "swap"),
		slog.Int64("swap_id", 42),
	)

	out := buf.String()
	assert.Contains(t, out, "[swapbook]")
	assert.Contains(t, out, "[SWAP]")
	assert.Contains(t, out, "Swap transition committed")
	assert.Contains(t, out, "swap_id=42")
	assert.NotContains(t, out, "type=swap")
}

func TestCustomHandler_ErrorDetails(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandlerWithOptions("swapbook", &buf, nil))

	log.Error("Notification failed",
		slog.String("type", "notify"),
		slog.Any("error", errors.New("sink down")),
		slog.String("error_location", "emitter.go:10"),
	)

	out := buf.String()
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "[NOTIFY]")
	assert.Contains(t, out, "Notification failed (emitter.go:10): sink down")
}

func TestCustomHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandlerWithOptions("swapbook", &buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("dropped")
	log.Debug("dropped too")
	assert.Empty(t, buf.String())

	log.Warn("kept", slog.String("status", "degraded"))
	assert.Contains(t, buf.String(), "kept [Status: degraded]")
}

func TestCustomHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandlerWithOptions("swapbook", &buf, nil)).With(slog.String("component", "engine"))

	log.Info("started")
	assert.Contains(t, buf.String(), "component=engine")
	assert.Contains(t, buf.String(), "[SYS]")
}
