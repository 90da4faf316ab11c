// Package logger provides leveled logging for the docs assistant.
// Console output goes to stderr in a terse "[LEVEL] message" form; debug,
// info and warn lines only appear in verbose mode. Configure adds a rotated
// JSON log file that records info and above regardless of verbosity.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the log file.
type Options struct {
	// File is the log file path. Empty disables file logging.
	File string

	// MaxSizeMB is the size at which the file rotates.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	MaxBackups int

	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int
}

// Rotation defaults.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
)

var (
	mu      sync.RWMutex
	verbose atomic.Bool
	output  io.Writer = os.Stderr
	rotator *lumberjack.Logger
	log     = build()
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	verbose.Store(v)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	return verbose.Load()
}

// SetOutput sets the console writer. Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = build()
}

// Configure enables file logging, replacing any previous file.
func Configure(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if rotator != nil {
		if err := rotator.Close(); err != nil {
			return fmt.Errorf("close log file: %w", err)
		}
		rotator = nil
	}

	if opts.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, DefaultMaxSizeMB),
			MaxBackups: orDefault(opts.MaxBackups, DefaultMaxBackups),
			MaxAge:     orDefault(opts.MaxAgeDays, DefaultMaxAgeDays),
			Compress:   true,
		}
	}
	log = build()
	return nil
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	_ = log.Sync()
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	log = build()
	return err
}

// Debug logs a message shown in verbose mode.
func Debug(format string, args ...any) {
	logf(zapcore.DebugLevel, format, args)
}

// Info logs an informational message shown in verbose mode.
func Info(format string, args ...any) {
	logf(zapcore.InfoLevel, format, args)
}

// Warn logs a warning shown in verbose mode.
func Warn(format string, args ...any) {
	logf(zapcore.WarnLevel, format, args)
}

// Error logs an error. Errors always reach the console.
func Error(format string, args ...any) {
	logf(zapcore.ErrorLevel, format, args)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	if !verbose.Load() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

func logf(level zapcore.Level, format string, args []any) {
	mu.RLock()
	l := log
	mu.RUnlock()

	if !l.Core().Enabled(level) {
		return
	}
	if ce := l.Check(level, fmt.Sprintf(format, args...)); ce != nil {
		ce.Write()
	}
}

// build assembles the zap logger (caller must hold mu for writing, or be init).
func build() *zap.Logger {
	consoleConfig := zapcore.EncoderConfig{
		MessageKey:       "message",
		LevelKey:         "level",
		EncodeLevel:      bracketLevel,
		ConsoleSeparator: " ",
	}
	consoleLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.ErrorLevel || verbose.Load()
	})
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleConfig),
		zapcore.Lock(zapcore.AddSync(output)),
		consoleLevel,
	)

	if rotator != nil {
		fileConfig := zap.NewProductionEncoderConfig()
		fileConfig.TimeKey = "timestamp"
		fileConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		fileConfig.MessageKey = "message"
		fileConfig.LevelKey = "level"
		fileConfig.EncodeLevel = zapcore.CapitalLevelEncoder

		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(fileConfig),
			zapcore.AddSync(rotator),
			zap.InfoLevel,
		)
		core = zapcore.NewTee(core, fileCore)
	}

	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
}

func bracketLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
