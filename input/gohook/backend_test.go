// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gohook

import (
	"testing"

	hook "github.com/robotn/gohook"

	"github.com/bureau-foundation/anvil/input"
)

type call struct {
	method string
	mouse  input.MouseEvent
	key    input.KeyStroke
}

type recordingSink struct {
	calls []call
}

func (s *recordingSink) Button(event input.MouseEvent) input.Disposition {
	s.calls = append(s.calls, call{method: "button", mouse: event})
	return input.Consume
}

func (s *recordingSink) Move(event input.MouseEvent) input.Disposition {
	s.calls = append(s.calls, call{method: "move", mouse: event})
	return input.PassThrough
}

func (s *recordingSink) Wheel(event input.MouseEvent) input.Disposition {
	s.calls = append(s.calls, call{method: "wheel", mouse: event})
	return input.Consume
}

func (s *recordingSink) Key(stroke input.KeyStroke) input.Disposition {
	s.calls = append(s.calls, call{method: "key", key: stroke})
	return input.PassThrough
}

func TestDeliverMouseEvents(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		event      hook.Event
		wantMethod string
		wantCode   uint32
	}{
		{"left press", hook.Event{Kind: hook.MouseHold, Button: buttonLeft, Clicks: 1, X: 5, Y: 6}, "button", input.WMLButtonDown},
		{"left release", hook.Event{Kind: hook.MouseDown, Button: buttonLeft, X: 5, Y: 6}, "button", input.WMLButtonUp},
		{"left double", hook.Event{Kind: hook.MouseHold, Button: buttonLeft, Clicks: 2, X: 5, Y: 6}, "button", input.WMLButtonDblClk},
		{"right press", hook.Event{Kind: hook.MouseHold, Button: buttonRight, Clicks: 1, X: 5, Y: 6}, "button", input.WMRButtonDown},
		{"middle release", hook.Event{Kind: hook.MouseDown, Button: buttonMiddle, X: 5, Y: 6}, "button", input.WMMButtonUp},
		{"x2 press", hook.Event{Kind: hook.MouseHold, Button: buttonX2, Clicks: 1, X: 5, Y: 6}, "button", input.WMXButtonDown},
		{"move", hook.Event{Kind: hook.MouseMove, X: 5, Y: 6}, "move", input.WMMouseMove},
		{"drag", hook.Event{Kind: hook.MouseDrag, X: 5, Y: 6}, "move", input.WMMouseMove},
		{"wheel", hook.Event{Kind: hook.MouseWheel, Rotation: -1, Direction: 3, X: 5, Y: 6}, "wheel", input.WMMouseWheel},
		{"horizontal wheel", hook.Event{Kind: hook.MouseWheel, Rotation: 1, Direction: wheelHorizontal, X: 5, Y: 6}, "wheel", input.WMMouseHWheel},
	}
	for _, test := range tests {
		sink := &recordingSink{}
		Deliver(sink, test.event)
		if len(sink.calls) != 1 {
			t.Errorf("%s: got %d sink calls, want 1", test.name, len(sink.calls))
			continue
		}
		got := sink.calls[0]
		if got.method != test.wantMethod || got.mouse.Code != test.wantCode {
			t.Errorf("%s: got %s 0x%x, want %s 0x%x", test.name, got.method, got.mouse.Code, test.wantMethod, test.wantCode)
		}
		if got.mouse.X != 5 || got.mouse.Y != 6 {
			t.Errorf("%s: position got (%d, %d), want (5, 6)", test.name, got.mouse.X, got.mouse.Y)
		}
	}
}

func TestDeliverKeyEvents(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	Deliver(sink, hook.Event{Kind: hook.KeyHold, Rawcode: 0x78})
	Deliver(sink, hook.Event{Kind: hook.KeyUp, Rawcode: 0x78, Mask: maskLeftAlt})
	Deliver(sink, hook.Event{Kind: hook.KeyDown, Rawcode: 0x41, Keychar: 'a'}) // typed: no transition

	if len(sink.calls) != 2 {
		t.Fatalf("sink calls: got %d, want 2", len(sink.calls))
	}
	if got := sink.calls[0].key; got != (input.KeyStroke{Code: 0x78, Down: true}) {
		t.Errorf("press: got %+v", got)
	}
	if got := sink.calls[1].key; got != (input.KeyStroke{Code: 0x78, Down: false, System: true}) {
		t.Errorf("release: got %+v", got)
	}
}

func TestDeliverUnknownButtonPassesThrough(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	if got := Deliver(sink, hook.Event{Kind: hook.MouseHold, Button: 9}); got != input.PassThrough {
		t.Errorf("disposition: got %v, want pass_through", got)
	}
	if len(sink.calls) != 0 {
		t.Errorf("unknown button reached the sink: %+v", sink.calls)
	}
}
