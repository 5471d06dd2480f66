package main

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newRuntimeLogger writes JSON logs to ~/.local/state/invite/invite-tui.log.
// The terminal belongs to the UI, so without a state directory nothing is
// logged at all.
func newRuntimeLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return zap.NewNop(), nil
	}
	logDir := filepath.Join(home, ".local", "state", "invite")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return zap.NewNop(), nil
	}
	logPath := filepath.Join(logDir, "invite-tui.log")

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{logPath}
	config.ErrorOutputPaths = []string{logPath}
	return config.Build()
}
