// This file contains helpers for testing logging behavior. TestLogger
// captures log records in memory so tests can assert on messages and
// structured fields without touching real output streams.

package log

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Record is one captured log call.
type Record struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// recordStore collects the records of a TestLogger and of every child
// created through With. Sweeps log from worker goroutines, so access is
// mutex-guarded.
type recordStore struct {
	mu      sync.Mutex
	min     Level
	records []Record
}

func (s *recordStore) append(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

func (s *recordStore) level() Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.min
}

func (s *recordStore) setLevel(level Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.min = level
}

func (s *recordStore) snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *recordStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

// TestLogger is a Logger implementation that captures records in memory for
// later inspection. Loggers derived with With feed the parent's store, so a
// test can hand child loggers to library code and assert in one place.
type TestLogger struct {
	store *recordStore
	bound map[string]any
}

// NewTestLogger creates a TestLogger with the given minimum level.
//
// Example:
//
//	logger := log.NewTestLogger(log.LevelDebug)
//	logger.Info("fit complete", log.RankKey, 4)
//	if !logger.ContainsField(log.RankKey, 4) {
//	    t.Error("rank not logged")
//	}
func NewTestLogger(level Level) *TestLogger {
	return &TestLogger{
		store: &recordStore{min: level},
		bound: map[string]any{},
	}
}

// Debug implements Logger.Debug.
func (t *TestLogger) Debug(msg string, fields ...any) { t.log(LevelDebug, msg, fields) }

// Info implements Logger.Info.
func (t *TestLogger) Info(msg string, fields ...any) { t.log(LevelInfo, msg, fields) }

// Warn implements Logger.Warn.
func (t *TestLogger) Warn(msg string, fields ...any) { t.log(LevelWarn, msg, fields) }

// Error implements Logger.Error.
func (t *TestLogger) Error(msg string, fields ...any) { t.log(LevelError, msg, fields) }

// With implements Logger.With. The child shares the parent's record store.
func (t *TestLogger) With(fields ...any) Logger {
	bound := make(map[string]any, len(t.bound)+len(fields)/2)
	for k, v := range t.bound {
		bound[k] = v
	}
	foldPairs(bound, fields)
	return &TestLogger{store: t.store, bound: bound}
}

// Enabled implements Logger.Enabled.
func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return t.store.level() <= level
}

func (t *TestLogger) log(level Level, msg string, fields []any) {
	if t.store.level() > level {
		return
	}
	rec := Record{
		Level:   level,
		Message: msg,
		Fields:  make(map[string]any, len(t.bound)+len(fields)/2),
	}
	for k, v := range t.bound {
		rec.Fields[k] = v
	}
	foldPairs(rec.Fields, fields)
	t.store.append(rec)
}

// foldPairs folds alternating key-value pairs into dst. Error values are
// stored as their message so records compare by value.
func foldPairs(dst map[string]any, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", fields[i])
		}
		if err, isErr := fields[i+1].(error); isErr {
			dst[key] = err.Error()
		} else {
			dst[key] = fields[i+1]
		}
	}
}

// Records returns a copy of every captured record in emission order.
func (t *TestLogger) Records() []Record {
	return t.store.snapshot()
}

// ContainsMessage reports whether any captured record's message contains the
// given substring.
func (t *TestLogger) ContainsMessage(message string) bool {
	for _, rec := range t.store.snapshot() {
		if strings.Contains(rec.Message, message) {
			return true
		}
	}
	return false
}

// ContainsField reports whether any captured record carries the field with
// the given value. Values are compared as logged, without serialization, so
// an int stays an int.
func (t *TestLogger) ContainsField(key string, value any) bool {
	for _, rec := range t.store.snapshot() {
		if got, ok := rec.Fields[key]; ok && reflect.DeepEqual(got, value) {
			return true
		}
	}
	return false
}

// Clear discards all captured records.
func (t *TestLogger) Clear() {
	t.store.clear()
}

// TestLoggerProvider implements LoggerProvider on top of a single capturing
// logger. Install it with SetProvider to intercept library output in tests.
type TestLoggerProvider struct {
	logger *TestLogger
}

// NewTestLoggerProvider creates a provider whose loggers all feed one record
// store.
func NewTestLoggerProvider(level Level) *TestLoggerProvider {
	return &TestLoggerProvider{logger: NewTestLogger(level)}
}

// Logger returns the capturing logger for assertions.
func (p *TestLoggerProvider) Logger() *TestLogger {
	return p.logger
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *TestLoggerProvider) GetLogger() Logger {
	return p.logger
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *TestLoggerProvider) GetLoggerWithName(name string) Logger {
	return p.logger.With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *TestLoggerProvider) SetLevel(level Level) {
	p.logger.store.setLevel(level)
}
