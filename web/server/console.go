package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warning", "error"
}

// ConsoleHandler is a slog.Handler that forwards records to a console channel.
// Records are dropped rather than blocking when the channel is full.
type ConsoleHandler struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	level       slog.Level
	attrs       []slog.Attr
	group       string
}

// NewConsoleHandler creates a handler for a specific render
func NewConsoleHandler(renderID string, consoleChan chan<- ConsoleMessage, level slog.Level) *ConsoleHandler {
	return &ConsoleHandler{
		renderID:    renderID,
		consoleChan: consoleChan,
		level:       level,
	}
}

// Enabled reports whether records at level are forwarded
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats the record as "message key=value ..." and sends it
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	if h.consoleChan == nil {
		return nil
	}

	var b strings.Builder
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Resolve())
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", h.qualify(a.Key), a.Value.Resolve())
		return true
	})

	select {
	case h.consoleChan <- ConsoleMessage{
		RenderID:  h.renderID,
		Message:   b.String(),
		Timestamp: r.Time,
		Level:     levelName(r.Level),
	}:
	default:
		// Channel full, skip (don't block)
	}
	return nil
}

// WithAttrs returns a handler that adds attrs to every record
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}
	return &clone
}

func (h *ConsoleHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

// WithGroup returns a handler that prefixes keys with name
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
