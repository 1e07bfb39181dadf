package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled
// from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger defines the minimal logging interface for AgentRouter. This allows
// users to provide their own logger implementation or use the built-in
// adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// NoOpLogger discards all log messages. Useful for testing or when logging
// is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// LoggerConfig configures construction of a RouterLogger.
type LoggerConfig struct {
	Level     LogLevel
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	UserID    string
	SessionID string
}

// DefaultLoggerConfig returns a baseline JSON info level configuration.
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{Level: LogLevelInfo, Format: "json", Output: os.Stdout}
}

// RouterLogger wraps slog.Logger adding contextual cloning helpers and
// routing-domain convenience methods. It is cheap to copy via With* methods.
type RouterLogger struct {
	logger    *slog.Logger
	userID    string
	sessionID string
}

// NewLogger builds a RouterLogger from a config (or defaults if nil).
func NewLogger(cfg *LoggerConfig) *RouterLogger {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.Level), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return &RouterLogger{logger: slog.New(handler), userID: cfg.UserID, sessionID: cfg.SessionID}
}

// NewSlogLogger creates a new RouterLogger with the specified configuration.
func NewSlogLogger(level LogLevel, format string, addSource bool) *RouterLogger {
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	if format != "" {
		cfg.Format = format
	}
	cfg.AddSource = addSource
	return NewLogger(cfg)
}

// WithSession attaches user and session identifiers to every log entry.
func (l *RouterLogger) WithSession(userID, sessionID string) *RouterLogger {
	nl := *l
	nl.userID = userID
	nl.sessionID = sessionID
	return &nl
}

func (l *RouterLogger) attrs(extra ...any) []any {
	out := make([]any, 0, len(extra)+4)
	if l.userID != "" {
		out = append(out, "user_id", l.userID)
	}
	if l.sessionID != "" {
		out = append(out, "session_id", l.sessionID)
	}
	return append(out, extra...)
}

// Debug logs at debug level.
func (l *RouterLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, l.attrs(args...)...) }

// Info logs at info level.
func (l *RouterLogger) Info(msg string, args ...any) { l.logger.Info(msg, l.attrs(args...)...) }

// Warn logs at warn level.
func (l *RouterLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, l.attrs(args...)...) }

// Error logs at error level.
func (l *RouterLogger) Error(msg string, args ...any) { l.logger.Error(msg, l.attrs(args...)...) }

// LogClassification records the outcome of a classification step.
func (l *RouterLogger) LogClassification(agentID string, confidence float64, dur time.Duration, err error) {
	if err != nil {
		l.Error("classification failed", "duration", dur, "error", err.Error())
		return
	}
	l.Info("classification completed", "agent_id", agentID, "confidence", confidence, "duration", dur)
}

// LogDispatch records the outcome of an agent dispatch.
func (l *RouterLogger) LogDispatch(agentID string, fallback bool, dur time.Duration, err error) {
	if err != nil {
		l.Error("dispatch failed", "agent_id", agentID, "duration", dur, "error", err.Error())
		return
	}
	l.Info("dispatch completed", "agent_id", agentID, "fallback", fallback, "duration", dur)
}

// LogLLMCall records model call latency, token usage and success.
func (l *RouterLogger) LogLLMCall(model string, tokens int, dur time.Duration, err error) {
	if err != nil {
		l.Error("LLM call failed", "model", model, "duration", dur, "error", err.Error())
		return
	}
	l.Info("LLM call completed", "model", model, "token_count", tokens, "duration", dur)
}
