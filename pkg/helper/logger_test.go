package helper

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level to be enabled")
	}

	logger, err = NewLogger("warn")
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("expected info to be filtered at warn level")
	}
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	if _, err := NewLogger("chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
