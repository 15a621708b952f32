// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry is one captured log record, flattened.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a slog.Handler that keeps every record at or above
// debug level. Handlers derived with WithAttrs share the recorder's
// storage.
type LogRecorder struct {
	state *recorderState
	attrs []slog.Attr
}

type recorderState struct {
	mutex   sync.Mutex
	entries []LogEntry
}

// NewLogRecorder returns an empty recorder and a logger writing to it.
func NewLogRecorder() (*LogRecorder, *slog.Logger) {
	recorder := &LogRecorder{state: &recorderState{}}
	return recorder, slog.New(recorder)
}

// Enabled accepts every level.
func (recorder *LogRecorder) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle stores the record.
func (recorder *LogRecorder) Handle(_ context.Context, record slog.Record) error {
	entry := LogEntry{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   make(map[string]any, len(recorder.attrs)+record.NumAttrs()),
	}
	for _, attr := range recorder.attrs {
		entry.Attrs[attr.Key] = attr.Value.Any()
	}
	record.Attrs(func(attr slog.Attr) bool {
		entry.Attrs[attr.Key] = attr.Value.Any()
		return true
	})

	recorder.state.mutex.Lock()
	recorder.state.entries = append(recorder.state.entries, entry)
	recorder.state.mutex.Unlock()
	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (recorder *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, 0, len(recorder.attrs)+len(attrs))
	combined = append(combined, recorder.attrs...)
	combined = append(combined, attrs...)
	return &LogRecorder{state: recorder.state, attrs: combined}
}

// WithGroup ignores the group; tests match on flat keys.
func (recorder *LogRecorder) WithGroup(string) slog.Handler {
	return recorder
}

// Entries returns a copy of every record captured so far.
func (recorder *LogRecorder) Entries() []LogEntry {
	recorder.state.mutex.Lock()
	defer recorder.state.mutex.Unlock()
	return append([]LogEntry(nil), recorder.state.entries...)
}

// Len returns the number of records captured so far.
func (recorder *LogRecorder) Len() int {
	recorder.state.mutex.Lock()
	defer recorder.state.mutex.Unlock()
	return len(recorder.state.entries)
}

// Reset discards captured records.
func (recorder *LogRecorder) Reset() {
	recorder.state.mutex.Lock()
	defer recorder.state.mutex.Unlock()
	recorder.state.entries = nil
}
