package logging

import (
	"testing"

	"github.com/udevstartup/sitecms/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New(config.LogConfig{Level: "debug", Development: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled")
	}

	logger, err = New(config.LogConfig{})
	if err != nil {
		t.Fatalf("New(default): %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("default level should not enable debug")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
