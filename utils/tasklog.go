package utils

import (
	"fmt"
	"strings"
)

// Level is the severity of a buffered task log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type logEntry struct {
	level Level
	line  string
}

// TaskLog buffers the log lines of one scrape task until the task finishes.
// It is owned by a single goroutine and is not safe for concurrent use.
type TaskLog struct {
	context string
	counter int
	entries []logEntry
}

// NewTaskLog creates an empty buffer tagged with context, e.g. "TOYOTA-CAMRY".
func NewTaskLog(context string) *TaskLog {
	return &TaskLog{context: context}
}

// Context returns the tag the buffer was created with.
func (t *TaskLog) Context() string { return t.context }

// Log appends a numbered line at the given level.
func (t *TaskLog) Log(level Level, format string, args ...any) {
	t.counter++
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	t.entries = append(t.entries, logEntry{
		level: level,
		line:  fmt.Sprintf("[%s.%d] %s", t.context, t.counter, msg),
	})
}

func (t *TaskLog) Debug(format string, args ...any) { t.Log(LevelDebug, format, args...) }
func (t *TaskLog) Info(format string, args ...any)  { t.Log(LevelInfo, format, args...) }
func (t *TaskLog) Warn(format string, args ...any)  { t.Log(LevelWarn, format, args...) }
func (t *TaskLog) Error(format string, args ...any) { t.Log(LevelError, format, args...) }

// Lines returns the buffered lines in insertion order.
func (t *TaskLog) Lines() []string {
	lines := make([]string, len(t.entries))
	for i, e := range t.entries {
		lines[i] = e.line
	}
	return lines
}

// Flush writes a header, every buffered line and a blank separator to l as one
// uninterrupted block.
func (t *TaskLog) Flush(l *Logger) {
	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	l.Info("========== %s ==========", t.context)
	for _, e := range t.entries {
		switch e.level {
		case LevelInfo:
			l.Info("%s", e.line)
		case LevelWarn:
			l.Warn("%s", e.line)
		case LevelError:
			l.Error("%s", e.line)
		default:
			l.Debug("%s", e.line)
		}
	}
	l.Info("")
}
