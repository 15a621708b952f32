// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package overlay

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/anvil/lib/clock"
)

// fakeRelay records lifecycle calls.
type fakeRelay struct {
	mutex   sync.Mutex
	starts  int
	stops   int
	active  bool
	died    bool
	failing bool
}

func (r *fakeRelay) Start() (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.failing {
		return "", errors.New("listen failed")
	}
	r.starts++
	r.active = true
	r.died = false
	return fmt.Sprintf("AnvilFramebufferServer1-%d", r.starts-1), nil
}

func (r *fakeRelay) Stop() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.stops++
	r.active = false
	r.died = true
}

func (r *fakeRelay) Died() bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.died || !r.active
}

func (r *fakeRelay) Dimensions() (int, int) { return 640, 480 }

func (r *fakeRelay) peerDied() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.died = true
}

type notification struct {
	event  string
	name   string
	active bool // relay state when the notification was sent
}

type fakeNotifier struct {
	relay *fakeRelay
	sent  []notification
}

func (n *fakeNotifier) ShowBrowser(name string, width, height int) bool {
	n.sent = append(n.sent, notification{event: "show_browser", name: name, active: n.relay.active})
	return true
}

func (n *fakeNotifier) HideBrowser() bool {
	n.sent = append(n.sent, notification{event: "hide_browser", active: n.relay.active})
	return true
}

type fakeCursor struct {
	arrows   int
	restores int
}

func (c *fakeCursor) ShowArrow() func() {
	c.arrows++
	return func() { c.restores++ }
}

type fixture struct {
	controller *Controller
	relay      *fakeRelay
	notifier   *fakeNotifier
	cursor     *fakeCursor
	clock      *clock.FakeClock
}

func newFixture() *fixture {
	relay := &fakeRelay{died: true}
	notifier := &fakeNotifier{relay: relay}
	cursor := &fakeCursor{}
	fake := clock.Fake(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	controller := NewController(Config{
		Relay:          relay,
		Notifier:       notifier,
		Cursor:         cursor,
		Clock:          fake,
		RestartBackoff: time.Second,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &fixture{controller: controller, relay: relay, notifier: notifier, cursor: cursor, clock: fake}
}

func TestToggleTwiceReturnsToHidden(t *testing.T) {
	t.Parallel()
	f := newFixture()

	f.controller.Toggle()
	if !f.controller.Visible() {
		t.Fatal("first toggle did not show the overlay")
	}
	if !f.relay.active {
		t.Error("relay not active while visible")
	}

	f.controller.Toggle()
	if f.controller.Visible() {
		t.Fatal("second toggle did not hide the overlay")
	}
	if f.relay.active {
		t.Error("relay still active after hide")
	}

	want := []notification{
		{event: "show_browser", name: "AnvilFramebufferServer1-0", active: true},
		{event: "hide_browser", active: true},
	}
	if len(f.notifier.sent) != len(want) {
		t.Fatalf("notifications: got %+v, want %+v", f.notifier.sent, want)
	}
	for index := range want {
		if f.notifier.sent[index] != want[index] {
			t.Errorf("notification %d: got %+v, want %+v", index, f.notifier.sent[index], want[index])
		}
	}
	if f.relay.starts != 1 || f.relay.stops != 1 {
		t.Errorf("relay: got %d starts, %d stops, want 1 and 1", f.relay.starts, f.relay.stops)
	}
	if f.cursor.arrows != 1 || f.cursor.restores != 1 {
		t.Errorf("cursor: got %d arrows, %d restores, want 1 and 1", f.cursor.arrows, f.cursor.restores)
	}
}

func TestToggleStaysHiddenWhenRelayFails(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.relay.failing = true

	f.controller.Toggle()
	if f.controller.Visible() {
		t.Error("overlay shown without a framebuffer relay")
	}
	if len(f.notifier.sent) != 0 {
		t.Errorf("notifications sent: %+v", f.notifier.sent)
	}
	if f.cursor.arrows != 0 {
		t.Error("cursor swapped for a failed show")
	}
}

func TestRecoverRestartsDiedRelayWithBackoff(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.controller.Toggle()

	if f.controller.Recover() {
		t.Error("Recover restarted a healthy relay")
	}

	f.relay.peerDied()
	if f.controller.Recover() {
		t.Error("Recover restarted inside the backoff window after show")
	}

	f.clock.Advance(time.Second)
	if !f.controller.Recover() {
		t.Fatal("Recover did not restart after the backoff")
	}
	if !f.controller.Visible() {
		t.Error("Recover changed visibility")
	}
	if f.relay.starts != 2 {
		t.Errorf("starts: got %d, want 2", f.relay.starts)
	}
	last := f.notifier.sent[len(f.notifier.sent)-1]
	if last.event != "show_browser" || last.name != "AnvilFramebufferServer1-1" {
		t.Errorf("announcement: got %+v, want show_browser for the new channel", last)
	}

	f.relay.peerDied()
	f.clock.Advance(500 * time.Millisecond)
	if f.controller.Recover() {
		t.Error("Recover restarted twice inside one backoff window")
	}
	f.clock.Advance(500 * time.Millisecond)
	if !f.controller.Recover() {
		t.Error("Recover did not restart after the second backoff")
	}
}

func TestRecoverIgnoresHiddenOverlay(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.clock.Advance(time.Hour)
	if f.controller.Recover() {
		t.Error("Recover started the relay while hidden")
	}
	if f.relay.starts != 0 {
		t.Errorf("starts: got %d, want 0", f.relay.starts)
	}
}

func TestRequestToggleServedOnce(t *testing.T) {
	t.Parallel()
	f := newFixture()

	f.controller.RequestToggle()
	f.controller.RequestToggle()
	if f.controller.Visible() {
		t.Fatal("RequestToggle toggled immediately")
	}
	f.controller.ServeRequests()
	if !f.controller.Visible() {
		t.Fatal("ServeRequests did not toggle")
	}
	f.controller.ServeRequests()
	if !f.controller.Visible() {
		t.Error("ServeRequests toggled again without a request")
	}
}

func TestHideIsNoOpWhenHidden(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.controller.Hide()
	if len(f.notifier.sent) != 0 || f.relay.stops != 0 {
		t.Error("Hide acted on a hidden overlay")
	}
	f.controller.Toggle()
	f.controller.Hide()
	if f.controller.Visible() {
		t.Error("Hide left the overlay visible")
	}
}
