// Package testutil holds shared test helpers: a recording logger and small
// estimator artifacts sized for the feature pipeline.
package testutil

import (
	"sync"

	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/logging"
)

// LogMessage is one entry captured by MockLogger.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// MockLogger records every entry. Loggers derived with With or Named share
// the same buffer. Fatal is recorded and does not exit.
type MockLogger struct {
	buf    *logBuffer
	name   string
	fields []logging.Field
}

type logBuffer struct {
	mu       sync.Mutex
	messages []LogMessage
}

// NewMockLogger returns an empty recording logger.
func NewMockLogger() *MockLogger {
	return &MockLogger{buf: &logBuffer{}}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	m.buf.mu.Lock()
	defer m.buf.mu.Unlock()
	m.buf.messages = append(m.buf.messages, LogMessage{Level: level, Logger: m.name, Message: msg, Fields: all})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	return &MockLogger{buf: m.buf, name: m.name, fields: append(append([]logging.Field(nil), m.fields...), fields...)}
}

func (m *MockLogger) Named(name string) logging.Logger {
	n := name
	if m.name != "" {
		n = m.name + "." + name
	}
	return &MockLogger{buf: m.buf, name: n, fields: m.fields}
}

func (m *MockLogger) Sync() error { return nil }

// Messages returns a copy of every entry logged so far.
func (m *MockLogger) Messages() []LogMessage {
	m.buf.mu.Lock()
	defer m.buf.mu.Unlock()
	out := make([]LogMessage, len(m.buf.messages))
	copy(out, m.buf.messages)
	return out
}

// Clear drops recorded entries.
func (m *MockLogger) Clear() {
	m.buf.mu.Lock()
	defer m.buf.mu.Unlock()
	m.buf.messages = m.buf.messages[:0]
}

// HasMessage reports whether an entry with level and msg was logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	for _, e := range m.Messages() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}
