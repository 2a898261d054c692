// Package logging builds the process-wide zap logger.
package logging

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console logger on stderr and installs it as the zap global.
// Only warnings and errors are shown unless verbose is set. The returned
// cleanup flushes the logger and restores the previous global.
func New(verbose bool) (*zap.Logger, func(), error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level.SetLevel(zapcore.DebugLevel)
		cfg.DisableCaller = false
	} else {
		cfg.DisableCaller = true
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	restore := zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil && !isIgnorableSyncError(err) {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
		restore()
	}
	return logger, cleanup, nil
}

// isIgnorableSyncError reports errors from syncing a terminal, which does
// not support fsync.
func isIgnorableSyncError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && (pathErr.Path == "/dev/stderr" || pathErr.Path == "/dev/stdout") {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "inappropriate ioctl for device") ||
		strings.Contains(msg, "invalid argument")
}
