// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"sync"

	"github.com/bureau-foundation/anvil/lib/hotkey"
)

// HotkeyKind distinguishes presses from releases.
type HotkeyKind int

const (
	HotkeyPress HotkeyKind = iota
	HotkeyRelease
)

func (k HotkeyKind) String() string {
	if k == HotkeyRelease {
		return "release"
	}
	return "press"
}

// HotkeyEvent is one recognised hotkey transition.
type HotkeyEvent struct {
	Slot hotkey.Slot
	Kind HotkeyKind
}

// HotkeyTracker turns key transitions into hotkey events by matching
// the held modifiers and the pressed key against the registry.
type HotkeyTracker struct {
	registry *hotkey.Registry

	mutex     sync.Mutex
	modifiers map[uint8]hotkey.Binding // held modifier keys
	pressed   map[uint8]hotkey.Slot    // keys whose press matched a slot
	queue     []HotkeyEvent
}

// NewHotkeyTracker returns a tracker matching against registry.
func NewHotkeyTracker(registry *hotkey.Registry) *HotkeyTracker {
	return &HotkeyTracker{
		registry:  registry,
		modifiers: make(map[uint8]hotkey.Binding),
		pressed:   make(map[uint8]hotkey.Slot),
	}
}

// modifierFlag returns the binding flag for a modifier key, or zero.
func modifierFlag(code uint8) hotkey.Binding {
	switch code {
	case VKShift, VKLShift, VKRShift:
		return hotkey.ModShift
	case VKControl, VKLControl, VKRControl:
		return hotkey.ModControl
	case VKMenu, VKLMenu, VKRMenu:
		return hotkey.ModAlt
	}
	return 0
}

// Observe records one key transition. It has the KeyObserver
// signature.
func (h *HotkeyTracker) Observe(code uint8, down bool) {
	if flag := modifierFlag(code); flag != 0 {
		h.mutex.Lock()
		if down {
			h.modifiers[code] = flag
		} else {
			delete(h.modifiers, code)
		}
		h.mutex.Unlock()
		return
	}

	if !down {
		h.mutex.Lock()
		if slot, ok := h.pressed[code]; ok {
			delete(h.pressed, code)
			h.queue = append(h.queue, HotkeyEvent{Slot: slot, Kind: HotkeyRelease})
		}
		h.mutex.Unlock()
		return
	}

	h.mutex.Lock()
	if _, repeat := h.pressed[code]; repeat {
		h.mutex.Unlock()
		return
	}
	binding := hotkey.Binding(code)
	for _, flag := range h.modifiers {
		binding |= flag
	}
	h.mutex.Unlock()

	// The registry lock is taken with the tracker unlocked.
	slot, ok := h.registry.Match(binding)
	if !ok {
		return
	}

	h.mutex.Lock()
	h.pressed[code] = slot
	h.queue = append(h.queue, HotkeyEvent{Slot: slot, Kind: HotkeyPress})
	h.mutex.Unlock()
}

// Drain removes and returns every queued hotkey event.
func (h *HotkeyTracker) Drain() []HotkeyEvent {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	drained := h.queue
	h.queue = nil
	return drained
}

// Reset forgets held keys and queued events.
func (h *HotkeyTracker) Reset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	clear(h.modifiers)
	clear(h.pressed)
	h.queue = nil
}

// Actions are the effects a hotkey press can trigger.
type Actions interface {
	ToggleOverlay()
	CreateBookmark()
}

// DispatchHotkeys runs the action for each press. Releases and the
// screenshot slot do nothing.
func DispatchHotkeys(events []HotkeyEvent, actions Actions) {
	for _, hotkeyEvent := range events {
		if hotkeyEvent.Kind != HotkeyPress {
			continue
		}
		switch hotkeyEvent.Slot {
		case hotkey.Overlay:
			actions.ToggleOverlay()
		case hotkey.Bookmark:
			actions.CreateBookmark()
		case hotkey.Screenshot:
		}
	}
}
