package server

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConsoleHandler_BasicLogging(t *testing.T) {
	// Create a channel to receive console messages
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewConsoleHandler("test-render-123", messageChan, slog.LevelInfo))

	logger.Info("render started", "width", 400)

	select {
	case msg := <-messageChan:
		if msg.Message != "render started width=400" {
			t.Errorf("Expected message 'render started width=400', got '%s'", msg.Message)
		}
		if msg.Level != "info" || msg.RenderID != "test-render-123" {
			t.Errorf("Expected level info for test-render-123, got %s for %s", msg.Level, msg.RenderID)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}
}

func TestConsoleHandler_Levels(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewConsoleHandler("test-render-456", messageChan, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("shown")
	logger.Warn("careful")
	logger.Error("broken")

	want := []struct{ message, level string }{
		{"shown", "info"},
		{"careful", "warning"},
		{"broken", "error"},
	}
	if len(messageChan) != len(want) {
		t.Fatalf("Expected %d messages, got %d", len(want), len(messageChan))
	}
	for _, w := range want {
		msg := <-messageChan
		if msg.Message != w.message || msg.Level != w.level {
			t.Errorf("Expected %q at %s, got %q at %s", w.message, w.level, msg.Message, msg.Level)
		}
	}
}

func TestConsoleHandler_WithAttrsAndGroup(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewConsoleHandler("r", messageChan, slog.LevelDebug)).
		With("scene", "default").
		WithGroup("render")

	logger.Info("done", "rows", 3)

	msg := <-messageChan
	if msg.Message != "done scene=default render.rows=3" {
		t.Errorf("Unexpected message %q", msg.Message)
	}
}

func TestConsoleHandler_ChannelFull(t *testing.T) {
	// Small buffer that will fill up
	messageChan := make(chan ConsoleMessage, 2)
	logger := slog.New(NewConsoleHandler("test-render-full", messageChan, slog.LevelInfo))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			logger.Info("message", "i", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Logging blocked on a full channel")
	}

	if len(messageChan) != 2 {
		t.Errorf("Expected 2 buffered messages, got %d", len(messageChan))
	}
	first := <-messageChan
	if !strings.HasSuffix(first.Message, "i=0") {
		t.Errorf("Expected the first message to be kept, got %q", first.Message)
	}
}

func TestConsoleHandler_NilChannel(t *testing.T) {
	logger := slog.New(NewConsoleHandler("nil", nil, slog.LevelInfo))
	logger.Info("nowhere to go")
}
