package main

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newRuntimeLogger writes JSON logs to ~/.local/state/invite/invite.log and
// falls back to stderr when the state directory is unusable.
func newRuntimeLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	if home, err := os.UserHomeDir(); err == nil {
		logDir := filepath.Join(home, ".local", "state", "invite")
		if err := os.MkdirAll(logDir, 0755); err == nil {
			logPath := filepath.Join(logDir, "invite.log")
			config.OutputPaths = []string{logPath}
			config.ErrorOutputPaths = []string{logPath}
		}
	}
	return config.Build()
}
