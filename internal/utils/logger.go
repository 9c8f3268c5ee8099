package utils

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zlog is the process-wide logger. It is a no-op until InitLogger runs so
// packages can log safely from tests.
var Zlog = zap.NewNop()

// InitLogger builds Zlog for the given level and environment. Production
// uses JSON output, anything else the console encoder.
func InitLogger(level, environment string) error {
	var cfg zap.Config
	if strings.EqualFold(environment, "production") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	Zlog = logger
	return nil
}

// SyncLogger flushes buffered entries. Errors from syncing stdout/stderr are ignored.
func SyncLogger() {
	_ = Zlog.Sync()
}
