package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg)

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	if logger.Slog() == nil {
		t.Error("expected non-nil underlying logger")
	}
}

func TestLogger_WithWalkID(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg)
	ctx := ContextWithWalkID(context.Background(), "test-walk-123")

	loggerWithID := logger.WithWalkID(ctx)
	loggerWithID.Info("test message")

	output := buf.String()
	if !strings.Contains(output, "test-walk-123") {
		t.Errorf("expected walk ID in output, got %s", output)
	}
}

func TestLogger_WithWalkID_Empty(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg)
	ctx := context.Background() // No walk ID

	loggerWithID := logger.WithWalkID(ctx)

	// Should return same logger instance
	if loggerWithID != logger {
		t.Error("expected same logger when no walk ID")
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg)
	loggerWithFields := logger.WithFields("key", "abc123", "tier", "stale")
	loggerWithFields.Info("test")

	output := buf.String()
	if !strings.Contains(output, "abc123") {
		t.Errorf("expected key in output, got %s", output)
	}
	if !strings.Contains(output, "stale") {
		t.Errorf("expected tier in output, got %s", output)
	}
}

func TestLogger_Slog(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg)
	slogger := logger.Slog()

	if slogger == nil {
		t.Error("expected non-nil slog.Logger")
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: false, // Text format
	}

	logger := NewLogger(cfg)
	logger.Info("test message")

	output := buf.String()
	if strings.Contains(output, "{") {
		t.Errorf("expected text format, got JSON-like output: %s", output)
	}
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info("should not panic")
	logger.Debug("should not panic")
}
