// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/anvil/lib/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeWriter struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{frames: make(chan []byte, 64), closed: make(chan struct{})}
}

func (w *fakeWriter) Write(payload []byte) bool {
	select {
	case w.frames <- append([]byte(nil), payload...):
	default:
	}
	return true
}

func (w *fakeWriter) Close() error {
	w.once.Do(func() { close(w.closed) })
	return nil
}

func TestSimulatorStreamsUntilHidden(t *testing.T) {
	t.Parallel()

	writers := make(map[string]*fakeWriter)
	var mutex sync.Mutex
	sim := newSimulator(func(name string) (frameWriter, error) {
		mutex.Lock()
		defer mutex.Unlock()
		writer := newFakeWriter()
		writers[name] = writer
		return writer, nil
	}, time.Millisecond, discardLogger())
	t.Cleanup(sim.Close)

	sim.handle([]byte(`{"event":"show_browser","framebuffer_server":"AnvilFramebufferServer1-0","width":4,"height":2}`))
	if got := sim.streaming(); got != "AnvilFramebufferServer1-0" {
		t.Fatalf("streaming = %q", got)
	}

	mutex.Lock()
	first := writers["AnvilFramebufferServer1-0"]
	mutex.Unlock()
	frameA := testutil.RequireReceive(t, first.frames, 5*time.Second, "first frame")
	frameB := testutil.RequireReceive(t, first.frames, 5*time.Second, "second frame")
	if len(frameA) != 4*2*4 {
		t.Fatalf("frame length = %d, want %d", len(frameA), 4*2*4)
	}
	if string(frameA) == string(frameB) {
		t.Error("consecutive frames are identical")
	}

	// A second show_browser moves the stream to the new channel.
	sim.handle([]byte(`{"event":"show_browser","framebuffer_server":"AnvilFramebufferServer1-1","width":4,"height":2}`))
	testutil.RequireClosed(t, first.closed, 5*time.Second, "previous stream writer closed")
	if got := sim.streaming(); got != "AnvilFramebufferServer1-1" {
		t.Fatalf("streaming after restart = %q", got)
	}

	sim.handle([]byte(`{"event":"hide_browser"}`))
	mutex.Lock()
	second := writers["AnvilFramebufferServer1-1"]
	mutex.Unlock()
	testutil.RequireClosed(t, second.closed, 5*time.Second, "stream writer closed on hide")
	if got := sim.streaming(); got != "" {
		t.Errorf("streaming after hide = %q", got)
	}
	if sim.received("show_browser") != 2 || sim.received("hide_browser") != 1 {
		t.Errorf("counts: show=%d hide=%d", sim.received("show_browser"), sim.received("hide_browser"))
	}
}

func TestSimulatorRejectsBadShow(t *testing.T) {
	t.Parallel()

	var opened atomic.Int32
	sim := newSimulator(func(name string) (frameWriter, error) {
		opened.Add(1)
		return nil, errors.New("unreachable")
	}, time.Millisecond, discardLogger())

	for _, payload := range []string{
		`{"event":"show_browser","framebuffer_server":"A","width":0,"height":2}`,
		`{"event":"show_browser","framebuffer_server":"../escape","width":4,"height":2}`,
		`{"event":"show_browser","framebuffer_server":"Valid","width":4,"height":2}`,
		`not json`,
	} {
		sim.handle([]byte(payload))
	}
	sim.handle(nil)

	if opened.Load() != 1 {
		t.Errorf("open called %d times, want 1", opened.Load())
	}
	if got := sim.streaming(); got != "" {
		t.Errorf("streaming = %q after failed opens", got)
	}
}

func TestPaintFrame(t *testing.T) {
	t.Parallel()

	frame := make([]byte, 3*2*4)
	paintFrame(frame, 3, 2, 5)
	for pixel := 0; pixel < 6; pixel++ {
		if frame[pixel*4+3] != 0xff {
			t.Fatalf("pixel %d alpha = %#x", pixel, frame[pixel*4+3])
		}
	}
	// x=1, y=1 with shift 5.
	offset := (1*3 + 1) * 4
	if frame[offset] != 6 || frame[offset+1] != 6 || frame[offset+2] != 1 {
		t.Errorf("pixel (1,1) = %v", frame[offset:offset+4])
	}
}

func TestSetupCommands(t *testing.T) {
	t.Parallel()

	payloads := setupCommands(options{
		eventChannel:    "AnvilEvents9",
		indicator:       "enabled",
		overlayKeyCode:  0x78,
		bookmarkKeyCode: 0,
	})
	if len(payloads) != 3 {
		t.Fatalf("got %d commands, want 3", len(payloads))
	}

	var forge map[string]any
	if err := json.Unmarshal(payloads[0], &forge); err != nil {
		t.Fatal(err)
	}
	if forge["command"] != "forge_info" || forge["anvil_event"] != "AnvilEvents9" {
		t.Errorf("first command = %v", forge)
	}

	var settings map[string]any
	if err := json.Unmarshal(payloads[1], &settings); err != nil {
		t.Fatal(err)
	}
	if _, ok := settings["bookmark_key"]; ok {
		t.Error("bookmark_key sent for keycode 0")
	}
	highlight, ok := settings["highlight_key"].(map[string]any)
	if !ok || highlight["keycode"] != float64(0x78) || highlight["ctrl"] != true {
		t.Errorf("highlight_key = %v", settings["highlight_key"])
	}

	bare := setupCommands(options{eventChannel: "AnvilEvents9"})
	if len(bare) != 1 {
		t.Errorf("with nothing optional got %d commands, want 1", len(bare))
	}
}

type scriptedWriter struct {
	accept  bool
	written [][]byte
}

func (w *scriptedWriter) Write(payload []byte) bool {
	if w.accept {
		w.written = append(w.written, payload)
	}
	return w.accept
}

func TestBind(t *testing.T) {
	t.Parallel()

	writer := &scriptedWriter{accept: true}
	payloads := [][]byte{[]byte("a"), []byte("b")}
	if err := bind(context.Background(), writer, payloads, discardLogger()); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if len(writer.written) != 2 {
		t.Errorf("wrote %d payloads, want 2", len(writer.written))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := bind(ctx, &scriptedWriter{}, payloads, discardLogger())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("bind with unreachable host = %v, want context.Canceled", err)
	}
}
