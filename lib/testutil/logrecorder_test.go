// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"log/slog"
	"testing"
)

func TestLogRecorderCapturesAttrs(t *testing.T) {
	t.Parallel()
	recorder, logger := NewLogRecorder()

	logger.With("component", "relay").Warn("frame dropped", "size", 12)

	entries := recorder.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries: got %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Level != slog.LevelWarn || entry.Message != "frame dropped" {
		t.Errorf("entry: got (%v, %q)", entry.Level, entry.Message)
	}
	if entry.Attrs["component"] != "relay" {
		t.Errorf("component attr: got %v, want relay", entry.Attrs["component"])
	}
	if entry.Attrs["size"] != int64(12) {
		t.Errorf("size attr: got %v (%T), want 12", entry.Attrs["size"], entry.Attrs["size"])
	}

	recorder.Reset()
	if recorder.Len() != 0 {
		t.Errorf("Len after Reset: got %d, want 0", recorder.Len())
	}
}

func TestUniqueNameIncreases(t *testing.T) {
	t.Parallel()
	first := UniqueName("Test")
	second := UniqueName("Test")
	if first == second {
		t.Errorf("UniqueName returned %q twice", first)
	}
}
