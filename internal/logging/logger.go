// Package logging provides leveled key-value logging for macrod's
// diagnostic output. It wraps the standard log package; engine run logs
// go through the engine's own ring buffer, never through this package.
package logging

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
)

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// ParseLevel maps a settings string to a Level. Unknown strings map to
// LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Logger writes leveled messages with attached context fields.
type Logger struct {
	mu       sync.RWMutex
	minLevel Level
	fields   map[string]any
	output   *log.Logger
}

var defaultLogger = New()

// New creates a Logger writing to stderr at info level.
func New() *Logger {
	return &Logger{
		minLevel: LevelInfo,
		fields:   make(map[string]any),
		output:   log.New(os.Stderr, "", log.LstdFlags),
	}
}

// SetLevel sets the minimum level that will be written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// SetOutput redirects the logger.
func (l *Logger) SetOutput(output *log.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = output
}

// With returns a child Logger carrying an extra context field.
func (l *Logger) With(key string, value any) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fields := make(map[string]any, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value

	return &Logger{minLevel: l.minLevel, fields: fields, output: l.output}
}

func (l *Logger) log(level Level, msg string, keyVals ...any) {
	l.mu.RLock()
	minLevel := l.minLevel
	output := l.output
	ctx := l.fields
	l.mu.RUnlock()

	if level < minLevel {
		return
	}

	fields := make(map[string]any, len(ctx)+len(keyVals)/2)
	for k, v := range ctx {
		fields[k] = v
	}
	for i := 0; i+1 < len(keyVals); i += 2 {
		if key, ok := keyVals[i].(string); ok {
			fields[key] = keyVals[i+1]
		}
	}

	var sb strings.Builder
	sb.WriteString(levelNames[level])
	sb.WriteString(": ")
	sb.WriteString(msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString(" |")
		for _, k := range keys {
			sb.WriteString(" ")
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(formatValue(fields[k]))
		}
	}

	output.Print(sb.String())
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\n") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case error:
		return fmt.Sprintf("%q", val.Error())
	default:
		return fmt.Sprint(v)
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keyVals ...any) { l.log(LevelDebug, msg, keyVals...) }

// Info logs at info level.
func (l *Logger) Info(msg string, keyVals ...any) { l.log(LevelInfo, msg, keyVals...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keyVals ...any) { l.log(LevelWarn, msg, keyVals...) }

// Error logs at error level.
func (l *Logger) Error(msg string, keyVals ...any) { l.log(LevelError, msg, keyVals...) }

// Package-level functions using the default logger.

// SetLevel sets the minimum level for the default logger.
func SetLevel(level Level) { defaultLogger.SetLevel(level) }

// SetOutput redirects the default logger.
func SetOutput(output *log.Logger) { defaultLogger.SetOutput(output) }

// With returns a child of the default logger with an extra field.
func With(key string, value any) *Logger { return defaultLogger.With(key, value) }

// Debug logs at debug level on the default logger.
func Debug(msg string, keyVals ...any) { defaultLogger.Debug(msg, keyVals...) }

// Info logs at info level on the default logger.
func Info(msg string, keyVals ...any) { defaultLogger.Info(msg, keyVals...) }

// Warn logs at warn level on the default logger.
func Warn(msg string, keyVals ...any) { defaultLogger.Warn(msg, keyVals...) }

// Error logs at error level on the default logger.
func Error(msg string, keyVals ...any) { defaultLogger.Error(msg, keyVals...) }
