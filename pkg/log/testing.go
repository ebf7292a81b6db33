package log

import (
	"context"
	"sync"
)

// Entry is a single record captured by TestLogger.
type Entry struct {
	Level  Level
	Msg    string
	Fields map[string]any
}

type entrySink struct {
	mu      sync.Mutex
	entries []Entry
}

// TestLogger is an in-memory Logger implementation for tests. It records
// every entry along with accumulated With fields. Loggers derived via With
// share the parent's entry sink.
type TestLogger struct {
	sink   *entrySink
	fields map[string]any
}

// NewTestLogger creates an empty TestLogger.
func NewTestLogger() *TestLogger {
	return &TestLogger{sink: &entrySink{}, fields: map[string]any{}}
}

// Entries returns a copy of the captured log entries.
func (t *TestLogger) Entries() []Entry {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	out := make([]Entry, len(t.sink.entries))
	copy(out, t.sink.entries)
	return out
}

func (t *TestLogger) record(level Level, msg string, fields []any) {
	merged := make(map[string]any, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			merged[key] = fields[i+1]
		}
	}

	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.entries = append(t.sink.entries, Entry{Level: level, Msg: msg, Fields: merged})
}

// Debug implements Logger.
func (t *TestLogger) Debug(msg string, fields ...any) { t.record(LevelDebug, msg, fields) }

// Info implements Logger.
func (t *TestLogger) Info(msg string, fields ...any) { t.record(LevelInfo, msg, fields) }

// Warn implements Logger.
func (t *TestLogger) Warn(msg string, fields ...any) { t.record(LevelWarn, msg, fields) }

// Error implements Logger.
func (t *TestLogger) Error(msg string, fields ...any) { t.record(LevelError, msg, fields) }

// With implements Logger; the returned logger shares the entry sink.
func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]any, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			merged[key] = fields[i+1]
		}
	}
	return &TestLogger{sink: t.sink, fields: merged}
}

// Enabled implements Logger; the test logger captures everything.
func (t *TestLogger) Enabled(context.Context, Level) bool { return true }
