package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the process-wide logger; nil until Init runs.
	Log *zap.Logger
	// Sugar wraps Log with printf-style helpers.
	Sugar *zap.SugaredLogger

	mu sync.Mutex
)

// Init builds a console logger at the given level ("debug", "info", ...).
// An unknown level falls back to info.
func Init(level string) error {
	mu.Lock()
	defer mu.Unlock()
	initLocked(level)
	return nil
}

func initLocked(level string) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.Set(level); err != nil {
			lvl = zapcore.InfoLevel
		}
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		lvl,
	)

	Log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	Sugar = Log.Sugar()
}

// GetLogger returns a named logger, initialising the default one on first use.
func GetLogger(name string) *zap.SugaredLogger {
	mu.Lock()
	if Log == nil {
		initLocked(os.Getenv("YAMDB_LOG_LEVEL"))
	}
	l := Log
	mu.Unlock()
	return l.Named(name).Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	mu.Lock()
	l := Log
	mu.Unlock()
	if l != nil {
		_ = l.Sync()
	}
}
