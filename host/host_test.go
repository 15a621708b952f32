// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/anvil/channel"
	"github.com/bureau-foundation/anvil/command"
	"github.com/bureau-foundation/anvil/input"
	"github.com/bureau-foundation/anvil/lib/clock"
	"github.com/bureau-foundation/anvil/lib/hotkey"
	"github.com/bureau-foundation/anvil/lib/indicator"
	"github.com/bureau-foundation/anvil/lib/testutil"
)

const testProcessID = 4242

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeWindow struct {
	width, height int
}

func (w *fakeWindow) ClientSize() (int, int) { return w.width, w.height }

func (w *fakeWindow) ScreenToClient(x, y int32) (int32, int32, bool) {
	return x - 100, y - 100, true
}

type fakeCursor struct {
	shown    atomic.Int32
	restored atomic.Int32
}

func (c *fakeCursor) ShowArrow() func() {
	c.shown.Add(1)
	return func() { c.restored.Add(1) }
}

type fakeHook struct {
	released *atomic.Int32
}

func (h fakeHook) Release() { h.released.Add(1) }

type fakeBackend struct {
	err       error
	installed atomic.Int32
	released  atomic.Int32
}

func (b *fakeBackend) Install(input.Sink) (input.Hook, error) {
	b.installed.Add(1)
	if b.err != nil {
		return nil, b.err
	}
	return fakeHook{released: &b.released}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testHost struct {
	*Host
	namespace *channel.Namespace
	clock     *clock.FakeClock
	cursor    *fakeCursor
	dir       string
}

func newTestHost(t *testing.T, logger *slog.Logger, config Config) *testHost {
	t.Helper()
	dir := testutil.SocketDir(t)
	namespace := channel.NewNamespace(dir, discardLogger())
	fake := clock.Fake(testEpoch)
	cursor := &fakeCursor{}

	config.Namespace = namespace
	config.Window = &fakeWindow{width: 8, height: 4}
	config.ProcessID = testProcessID
	config.Clock = fake
	config.Cursor = cursor
	if config.StatusSocket != "" {
		config.StatusSocket = filepath.Join(dir, config.StatusSocket)
	}

	h, err := Init(logger, config)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(h.Shutdown)
	return &testHost{Host: h, namespace: namespace, clock: fake, cursor: cursor, dir: dir}
}

// listenEvents plays the renderer's event channel, decoding every
// message as a JSON object.
func listenEvents(t *testing.T, namespace *channel.Namespace, name string) <-chan map[string]any {
	t.Helper()
	messages := make(chan map[string]any, 64)
	server, err := namespace.Listen(name, func(payload []byte) {
		if payload == nil {
			return
		}
		var message map[string]any
		if err := json.Unmarshal(payload, &message); err != nil {
			t.Errorf("event is not JSON: %v", err)
			return
		}
		messages <- message
	}, 0)
	if err != nil {
		t.Fatalf("Listen(%s): %v", name, err)
	}
	t.Cleanup(func() { server.Close() })
	return messages
}

func openRenderer(t *testing.T, namespace *channel.Namespace, name string, compression channel.Compression) *channel.Client {
	t.Helper()
	client, err := namespace.Open(name, compression)
	if err != nil {
		t.Fatalf("Open(%s): %v", name, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func eventually(t *testing.T, condition func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !condition() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out: %s", message)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func requireEvent(t *testing.T, events <-chan map[string]any, name string) map[string]any {
	t.Helper()
	message := testutil.RequireReceive(t, events, 5*time.Second, "waiting for %s", name)
	if message["event"] != name {
		t.Fatalf("event: got %v, want %s", message["event"], name)
	}
	return message
}

func TestCommandChannelName(t *testing.T) {
	t.Parallel()
	if got := CommandChannelName(1234); got != "AnvilRenderer1234" {
		t.Errorf("CommandChannelName: got %s", got)
	}
}

func TestInitRequiresCollaborators(t *testing.T) {
	t.Parallel()
	if _, err := Init(discardLogger(), Config{Window: &fakeWindow{}}); err == nil {
		t.Error("Init without namespace succeeded")
	}
	namespace := channel.NewNamespace(testutil.SocketDir(t), discardLogger())
	if _, err := Init(discardLogger(), Config{Namespace: namespace}); err == nil {
		t.Error("Init without window succeeded")
	}
}

func TestOverlaySession(t *testing.T) {
	t.Parallel()
	h := newTestHost(t, discardLogger(), Config{})
	events := listenEvents(t, h.namespace, "AnvilEventsSession")
	renderer := openRenderer(t, h.namespace, h.CommandChannel(), channel.CompressionNone)

	for _, message := range []string{
		`{"command":"forge_info","anvil_event":"AnvilEventsSession"}`,
		`{"command":"update_settings","highlight_key":{"keycode":120,"ctrl":true}}` + "\x00",
		`{"command":"indicator","indicator":"capturing"}`,
	} {
		if !renderer.Write([]byte(message)) {
			t.Fatalf("writing %s failed", message)
		}
	}
	eventually(t, func() bool { return h.CurrentIndicator() == indicator.Capturing }, "indicator command applied")
	if got, want := h.Hotkey(hotkey.Overlay), hotkey.Pack(0x78, false, true, false); got != want {
		t.Fatalf("overlay hotkey: got %v, want %v", got, want)
	}
	if got := h.Status().EventChannel; got != "AnvilEventsSession" {
		t.Fatalf("event channel: got %q", got)
	}

	// ctrl+F9 while hidden toggles on the next tick.
	keyboard := h.Keyboard()
	keyboard.Transition(input.VKControl, true, false)
	keyboard.Transition(0x78, true, false)
	keyboard.Transition(0x78, false, false)
	keyboard.Transition(input.VKControl, false, false)
	if h.OverlayVisible() {
		t.Fatal("overlay shown before the tick")
	}
	h.ProcessInputTick()
	if !h.OverlayVisible() {
		t.Fatal("overlay hotkey did not show the overlay")
	}
	if h.cursor.shown.Load() != 1 {
		t.Errorf("arrow cursor shown %d times, want 1", h.cursor.shown.Load())
	}

	show := requireEvent(t, events, "show_browser")
	framebufferName, _ := show["framebuffer_server"].(string)
	if framebufferName != "AnvilFramebufferServer4242-0" {
		t.Errorf("framebuffer_server: got %q", framebufferName)
	}
	if show["width"] != float64(8) || show["height"] != float64(4) {
		t.Errorf("dimensions: got %v x %v, want 8 x 4", show["width"], show["height"])
	}

	// The renderer streams a frame back.
	frames := openRenderer(t, h.namespace, framebufferName, channel.CompressionLZ4)
	frame := bytes.Repeat([]byte{0x10, 0x20, 0x30, 0xff}, 8*4)
	if !frames.Write(frame) {
		t.Fatal("writing frame failed")
	}
	var latest []byte
	eventually(t, func() bool {
		data, ok := h.ReadLatestFramebuffer()
		if ok {
			latest = append([]byte(nil), data...)
		}
		return ok
	}, "frame delivered")
	if !bytes.Equal(latest, frame) {
		t.Error("delivered frame differs from the frame written")
	}
	if _, ok := h.ReadLatestFramebuffer(); ok {
		t.Error("second read returned the same frame again")
	}

	// Keys typed while visible go to the renderer.
	keyboard.Transition(0x41, true, false)
	h.ProcessInputTick()
	key := requireEvent(t, events, "key_event")
	if key["type"] != "down" || key["keycode"] != float64(0x41) || key["system"] != false {
		t.Errorf("key_event: got %v", key)
	}

	// A toggle requested from another goroutine waits for the tick.
	h.RequestToggle()
	if !h.OverlayVisible() {
		t.Fatal("RequestToggle acted before the tick")
	}
	h.ProcessInputTick()
	if h.OverlayVisible() {
		t.Fatal("queued toggle did not hide the overlay")
	}
	requireEvent(t, events, "hide_browser")
	if h.cursor.restored.Load() != 1 {
		t.Errorf("cursor restored %d times, want 1", h.cursor.restored.Load())
	}
}

func TestBookmarkHotkey(t *testing.T) {
	t.Parallel()
	h := newTestHost(t, discardLogger(), Config{})
	events := listenEvents(t, h.namespace, "AnvilEventsBookmark")
	renderer := openRenderer(t, h.namespace, h.CommandChannel(), channel.CompressionNone)
	renderer.Write([]byte(`{"command":"forge_info","anvil_event":"AnvilEventsBookmark"}`))
	renderer.Write([]byte(`{"command":"update_settings","bookmark_key":{"keycode":121,"alt":true}}`))
	eventually(t, func() bool { return h.Hotkey(hotkey.Bookmark) != 0 }, "bookmark key stored")

	keyboard := h.Keyboard()
	keyboard.Transition(input.VKMenu, true, true)
	keyboard.Transition(0x79, true, true)
	h.ProcessInputTick()

	requireEvent(t, events, "create_bookmark")
	if h.OverlayVisible() {
		t.Error("bookmark hotkey toggled the overlay")
	}
}

func TestRelayRecovery(t *testing.T) {
	t.Parallel()
	h := newTestHost(t, discardLogger(), Config{RestartBackoff: time.Second})

	h.ToggleOverlay()
	if !h.OverlayVisible() {
		t.Fatal("overlay not shown")
	}
	first := h.relay.Name()

	browser := openRenderer(t, h.namespace, first, channel.CompressionNone)
	browser.Close()
	eventually(t, h.relay.Died, "relay noticed the renderer leaving")

	h.ProcessInputTick()
	if got := h.controller.Restarts(); got != 0 {
		t.Fatalf("restarted inside the backoff window: %d restarts", got)
	}

	h.clock.Advance(time.Second)
	h.ProcessInputTick()
	if got := h.controller.Restarts(); got != 1 {
		t.Fatalf("restarts after backoff: got %d, want 1", got)
	}
	if second := h.relay.Name(); second == first || second != "AnvilFramebufferServer4242-1" {
		t.Errorf("restarted relay name: got %q after %q", second, first)
	}
	if h.relay.Died() {
		t.Error("relay still died after restart")
	}
}

func TestInputHooksLifecycle(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	h := newTestHost(t, discardLogger(), Config{Backend: backend})

	var resets []string
	var resetMutex sync.Mutex
	h.RegisterReset("d3d11", func() {
		resetMutex.Lock()
		resets = append(resets, "d3d11")
		resetMutex.Unlock()
	})

	h.ProcessInputTick()
	h.ProcessInputTick()
	if got := backend.installed.Load(); got != 1 {
		t.Fatalf("installs after two ticks: got %d, want 1", got)
	}
	if !h.Status().HooksInstalled {
		t.Error("status does not report hooks installed")
	}

	h.Reset()
	if got := backend.released.Load(); got != 1 {
		t.Errorf("releases after Reset: got %d, want 1", got)
	}
	resetMutex.Lock()
	if len(resets) != 1 {
		t.Errorf("reset hooks run: got %v, want [d3d11]", resets)
	}
	resetMutex.Unlock()

	h.ProcessInputTick()
	if got := backend.installed.Load(); got != 2 {
		t.Errorf("installs after Reset and a tick: got %d, want 2", got)
	}

	h.Shutdown()
	if got := backend.released.Load(); got != 2 {
		t.Errorf("releases after Shutdown: got %d, want 2", got)
	}
}

func TestInputHookFailureLoggedOnce(t *testing.T) {
	t.Parallel()
	recorder, logger := testutil.NewLogRecorder()
	backend := &fakeBackend{err: errors.New("no display")}
	h := newTestHost(t, logger, Config{Backend: backend})

	for range 3 {
		h.ProcessInputTick()
	}
	if got := backend.installed.Load(); got != 1 {
		t.Errorf("install attempts: got %d, want 1", got)
	}
	warnings := 0
	for _, entry := range recorder.Entries() {
		if entry.Message == "input hooks unavailable" {
			warnings++
		}
	}
	if warnings != 1 {
		t.Errorf("hook failure logged %d times, want 1", warnings)
	}
}

func TestShutdownHidesOverlay(t *testing.T) {
	t.Parallel()
	h := newTestHost(t, discardLogger(), Config{})
	events := listenEvents(t, h.namespace, "AnvilEventsShutdown")
	renderer := openRenderer(t, h.namespace, h.CommandChannel(), channel.CompressionNone)
	renderer.Write([]byte(`{"command":"forge_info","anvil_event":"AnvilEventsShutdown"}`))
	eventually(t, func() bool { return h.Status().EventChannel == "AnvilEventsShutdown" }, "event channel bound")

	h.ToggleOverlay()
	requireEvent(t, events, "show_browser")

	h.Shutdown()
	h.Shutdown()
	requireEvent(t, events, "hide_browser")
	if h.OverlayVisible() {
		t.Error("overlay visible after Shutdown")
	}
	if h.relay.Active() {
		t.Error("relay active after Shutdown")
	}
}

func TestShowCurrentIndicator(t *testing.T) {
	t.Parallel()
	h := newTestHost(t, discardLogger(), Config{})
	if err := h.Dispatch(command.IndicatorCommand{Indicator: "mic_muted"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	calls := 0
	h.ShowCurrentIndicator(func(event indicator.Event, alpha uint8) {
		calls++
		if event != indicator.MicMuted || alpha != indicator.OpaqueAlpha {
			t.Errorf("ShowCurrentIndicator: got (%v, %d), want (mic_muted, %d)", event, alpha, indicator.OpaqueAlpha)
		}
	})
	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
}
