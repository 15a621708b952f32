// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/anvil/channel"
	"github.com/bureau-foundation/anvil/command"
	"github.com/bureau-foundation/anvil/host"
	"github.com/bureau-foundation/anvil/lib/clock"
	"github.com/bureau-foundation/anvil/lib/indicator"
	"github.com/bureau-foundation/anvil/lib/testutil"
)

func TestWindowScreenToClient(t *testing.T) {
	t.Parallel()

	w := newWindow(640, 480)
	tests := []struct {
		x, y int32
		ok   bool
	}{
		{0, 0, true},
		{639, 479, true},
		{640, 0, false},
		{0, 480, false},
		{-1, 10, false},
	}
	for _, test := range tests {
		x, y, ok := w.ScreenToClient(test.x, test.y)
		if ok != test.ok {
			t.Errorf("ScreenToClient(%d, %d) ok = %v, want %v", test.x, test.y, ok, test.ok)
			continue
		}
		if ok && (x != test.x || y != test.y) {
			t.Errorf("ScreenToClient(%d, %d) = (%d, %d)", test.x, test.y, x, y)
		}
	}
	if width, height := w.ClientSize(); width != 640 || height != 480 {
		t.Errorf("ClientSize = %dx%d", width, height)
	}
}

func TestRenderLoopRevertsExpiredTransient(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fake := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	h, err := host.Init(logger, host.Config{
		Namespace:         channel.NewNamespace(testutil.SocketDir(t), logger),
		Window:            newWindow(8, 4),
		ProcessID:         7,
		Clock:             fake,
		TransientDuration: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(h.Shutdown)

	loop := newRenderLoop(h, fake, logger)
	for _, name := range []string{"streaming", "bookmark"} {
		if err := h.Dispatch(command.IndicatorCommand{Indicator: name}); err != nil {
			t.Fatalf("Dispatch(%s): %v", name, err)
		}
	}

	loop.frame(fake.Now())
	if got := h.CurrentIndicator(); got != indicator.Bookmark {
		t.Fatalf("indicator before expiry = %v, want bookmark", got)
	}

	fake.Advance(2 * time.Second)
	loop.frame(fake.Now())
	if got := h.CurrentIndicator(); got != indicator.Streaming {
		t.Errorf("indicator after expiry = %v, want streaming", got)
	}

	stats := loop.stats()
	if stats.Ticks != 2 || stats.Frames != 0 {
		t.Errorf("stats = %+v, want 2 ticks and no frames", stats)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "anvil.yaml")
	data := "runtime_dir: /tmp/anvil-test\nframebuffer:\n  compression: zstd\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	loaded, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if loaded.RuntimeDir != "/tmp/anvil-test" || loaded.Framebuffer.Compression != "zstd" {
		t.Errorf("loaded = %+v", loaded)
	}

	if err := os.WriteFile(path, []byte("framebuffer:\n  compression: brotli\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig accepted an unknown compression")
	}
}
