package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used throughout the container.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a logger with the given fields attached to every entry.
	With(fields ...Field) Logger

	// Named returns a logger with the given name segment appended.
	Named(name string) Logger

	// Sync flushes any buffered entries.
	Sync() error
}

// LogLevel names a logging threshold.
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LoggingConfig configures logger construction.
type LoggingConfig struct {
	Level       LogLevel `yaml:"level"`
	Format      string   `yaml:"format"`
	Environment string   `yaml:"environment"`
}

// logger implements the Logger interface using zap.
type logger struct {
	zap *zap.Logger
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(config LoggingConfig) Logger {
	logLevel := zapcore.InfoLevel
	switch strings.ToLower(string(config.Level)) {
	case "debug":
		logLevel = zapcore.DebugLevel
	case "info":
		logLevel = zapcore.InfoLevel
	case "warn", "warning":
		logLevel = zapcore.WarnLevel
	case "error":
		logLevel = zapcore.ErrorLevel
	}

	var zapConfig zap.Config
	if config.Environment == "production" || config.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(logLevel)

	zapLogger, _ := zapConfig.Build(zap.AddCallerSkip(1))

	return &logger{zap: zapLogger}
}

// NewDevelopmentLogger creates a console logger at debug level.
func NewDevelopmentLogger() Logger {
	zapLogger, _ := zap.NewDevelopmentConfig().Build(zap.AddCallerSkip(1))

	return &logger{zap: zapLogger}
}

// NewProductionLogger creates a JSON logger at info level.
func NewProductionLogger() Logger {
	zapLogger, _ := zap.NewProductionConfig().Build(zap.AddCallerSkip(1))

	return &logger{zap: zapLogger}
}

func (l *logger) Debug(msg string, fields ...Field) {
	l.zap.Debug(msg, fieldsToZap(fields)...)
}

func (l *logger) Info(msg string, fields ...Field) {
	l.zap.Info(msg, fieldsToZap(fields)...)
}

func (l *logger) Warn(msg string, fields ...Field) {
	l.zap.Warn(msg, fieldsToZap(fields)...)
}

func (l *logger) Error(msg string, fields ...Field) {
	l.zap.Error(msg, fieldsToZap(fields)...)
}

func (l *logger) With(fields ...Field) Logger {
	return &logger{zap: l.zap.With(fieldsToZap(fields)...)}
}

func (l *logger) Named(name string) Logger {
	return &logger{zap: l.zap.Named(name)}
}

func (l *logger) Sync() error {
	return l.zap.Sync()
}

// noopLogger implements the Logger interface but does nothing.
type noopLogger struct{}

// NewNoopLogger creates a logger that discards everything.
func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(msg string, fields ...Field) {}
func (l *noopLogger) Info(msg string, fields ...Field)  {}
func (l *noopLogger) Warn(msg string, fields ...Field)  {}
func (l *noopLogger) Error(msg string, fields ...Field) {}
func (l *noopLogger) With(fields ...Field) Logger       { return l }
func (l *noopLogger) Named(name string) Logger          { return l }
func (l *noopLogger) Sync() error                       { return nil }

// Entry is a log entry captured by the TestLogger.
type Entry struct {
	Level   LogLevel
	Message string
	Fields  []Field
}

// TestLogger records entries in memory for assertions in tests.
type TestLogger struct {
	mu      sync.Mutex
	entries []Entry
	fields  []Field
	name    string
}

// NewTestLogger creates a recording logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

// Entries returns a copy of all recorded entries.
func (l *TestLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)

	return out
}

// EntriesAt returns recorded entries at the given level.
func (l *TestLogger) EntriesAt(level LogLevel) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}

	return out
}

func (l *TestLogger) record(level LogLevel, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)
	l.entries = append(l.entries, Entry{Level: level, Message: msg, Fields: all})
}

func (l *TestLogger) Debug(msg string, fields ...Field) { l.record(LevelDebug, msg, fields) }
func (l *TestLogger) Info(msg string, fields ...Field)  { l.record(LevelInfo, msg, fields) }
func (l *TestLogger) Warn(msg string, fields ...Field)  { l.record(LevelWarn, msg, fields) }
func (l *TestLogger) Error(msg string, fields ...Field) { l.record(LevelError, msg, fields) }

func (l *TestLogger) With(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	attached := make([]Field, 0, len(l.fields)+len(fields))
	attached = append(attached, l.fields...)
	attached = append(attached, fields...)

	// Children share the parent's entry sink so assertions see everything.
	return &childLogger{parent: l, fields: attached, name: l.name}
}

func (l *TestLogger) Named(name string) Logger {
	return &childLogger{parent: l, fields: l.fields, name: name}
}

func (l *TestLogger) Sync() error { return nil }

// childLogger forwards to a parent TestLogger with extra fields attached.
type childLogger struct {
	parent *TestLogger
	fields []Field
	name   string
}

func (l *childLogger) record(level LogLevel, msg string, fields []Field) {
	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)
	l.parent.record(level, msg, all)
}

func (l *childLogger) Debug(msg string, fields ...Field) { l.record(LevelDebug, msg, fields) }
func (l *childLogger) Info(msg string, fields ...Field)  { l.record(LevelInfo, msg, fields) }
func (l *childLogger) Warn(msg string, fields ...Field)  { l.record(LevelWarn, msg, fields) }
func (l *childLogger) Error(msg string, fields ...Field) { l.record(LevelError, msg, fields) }

func (l *childLogger) With(fields ...Field) Logger {
	attached := make([]Field, 0, len(l.fields)+len(fields))
	attached = append(attached, l.fields...)
	attached = append(attached, fields...)

	return &childLogger{parent: l.parent, fields: attached, name: l.name}
}

func (l *childLogger) Named(name string) Logger {
	return &childLogger{parent: l.parent, fields: l.fields, name: name}
}

func (l *childLogger) Sync() error { return nil }
