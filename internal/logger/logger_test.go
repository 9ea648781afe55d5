package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	level   slog.Level
	records []slog.Record
	attrs   []slog.Attr
}

func (h *recordingHandler) Enabled(_ context.Context, level slog.Level) bool { return level >= h.level }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.attrs = append(h.attrs, attrs...)
	return h
}

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func TestMultiHandlerDispatchesToAll(t *testing.T) {
	debug := &recordingHandler{level: slog.LevelDebug}
	warn := &recordingHandler{level: slog.LevelWarn}
	log := slog.New(NewMultiHandler(debug, warn))

	log.Debug("debug message")
	log.Warn("warn message")

	assert.Len(t, debug.records, 2)
	assert.Len(t, warn.records, 2, "Handle fans out regardless of each handler's level")
	assert.True(t, NewMultiHandler(debug, warn).Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewMultiHandler(warn).Enabled(context.Background(), slog.LevelInfo))
}

func TestMultiHandlerWithAttrs(t *testing.T) {
	h := &recordingHandler{}
	log := slog.New(NewMultiHandler(h)).With("session.id", "abc")
	log.Info("hello")

	assert.Len(t, h.attrs, 1)
	assert.Equal(t, "session.id", h.attrs[0].Key)
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelWarn, false)

	log.Info("hidden")
	log.Warn("shown", "intent.type", "place")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "intent.type=place")
}
