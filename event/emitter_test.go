// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
)

type fakeSender struct {
	name string

	mutex    sync.Mutex
	messages []map[string]any
	closed   bool
	refuse   bool
}

func (s *fakeSender) Name() string { return s.name }

func (s *fakeSender) Write(payload []byte) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed || s.refuse {
		return false
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		panic(err)
	}
	s.messages = append(s.messages, decoded)
	return true
}

func (s *fakeSender) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSender) sent() []map[string]any {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]map[string]any(nil), s.messages...)
}

func newTestEmitter() (*Emitter, map[string]*fakeSender) {
	senders := make(map[string]*fakeSender)
	var mutex sync.Mutex
	emitter := NewEmitter(func(name string) (Sender, error) {
		if name == "broken" {
			return nil, errors.New("dial refused")
		}
		mutex.Lock()
		defer mutex.Unlock()
		sender := &fakeSender{name: name}
		senders[name] = sender
		return sender, nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return emitter, senders
}

func TestEmitterWireShapes(t *testing.T) {
	t.Parallel()
	emitter, senders := newTestEmitter()
	if err := emitter.Bind("AnvilEvents1"); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	emitter.MouseEvent(120, 48, 0x201)
	emitter.ShowBrowser("AnvilFramebufferServer7-1", 1920, 1080)
	emitter.HideBrowser()
	emitter.CreateBookmark()
	emitter.KeyEvent(KeyChar, 'a', false)

	want := []map[string]any{
		{"event": "mouse_event", "x": 120.0, "y": 48.0, "wParam": 513.0},
		{"event": "show_browser", "framebuffer_server": "AnvilFramebufferServer7-1", "width": 1920.0, "height": 1080.0},
		{"event": "hide_browser"},
		{"event": "create_bookmark"},
		{"event": "key_event", "type": "char", "keycode": 97.0, "system": false},
	}
	got := senders["AnvilEvents1"].sent()
	if len(got) != len(want) {
		t.Fatalf("messages: got %d, want %d", len(got), len(want))
	}
	for index := range want {
		if len(got[index]) != len(want[index]) {
			t.Errorf("message %d: got %v, want %v", index, got[index], want[index])
			continue
		}
		for key, value := range want[index] {
			if got[index][key] != value {
				t.Errorf("message %d field %q: got %v, want %v", index, key, got[index][key], value)
			}
		}
	}
}

func TestEmitterUnboundDrops(t *testing.T) {
	t.Parallel()
	emitter, _ := newTestEmitter()
	if emitter.CreateBookmark() {
		t.Error("CreateBookmark reported delivery with no channel bound")
	}
	if emitter.Bound() != "" {
		t.Errorf("Bound: got %q, want empty", emitter.Bound())
	}
}

func TestEmitterRebindClosesPrevious(t *testing.T) {
	t.Parallel()
	emitter, senders := newTestEmitter()
	if err := emitter.Bind("first"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := emitter.Bind("second"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !senders["first"].closed {
		t.Error("previous sender not closed on rebind")
	}
	emitter.HideBrowser()
	if len(senders["first"].sent()) != 0 || len(senders["second"].sent()) != 1 {
		t.Error("event went to the wrong channel after rebind")
	}
}

func TestEmitterFailedBindKeepsPrevious(t *testing.T) {
	t.Parallel()
	emitter, senders := newTestEmitter()
	if err := emitter.Bind("good"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := emitter.Bind("broken"); err == nil {
		t.Fatal("Bind(broken) succeeded")
	}
	if emitter.Bound() != "good" {
		t.Errorf("Bound: got %q, want good", emitter.Bound())
	}
	if !emitter.HideBrowser() || len(senders["good"].sent()) != 1 {
		t.Error("previous binding stopped working after a failed bind")
	}
}

func TestEmitterReportsRefusedWrite(t *testing.T) {
	t.Parallel()
	emitter, senders := newTestEmitter()
	if err := emitter.Bind("flaky"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	senders["flaky"].refuse = true
	if emitter.MouseEvent(1, 2, 0x200) {
		t.Error("MouseEvent reported delivery for a refused write")
	}
}
