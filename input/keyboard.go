// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"sync"

	"github.com/bureau-foundation/anvil/event"
)

// keyDownBit marks a pressed key in keyboard snapshots.
const keyDownBit = 0x80

// KeyEvent is one queued keyboard event for the overlay.
type KeyEvent struct {
	Code   uint32
	Type   event.KeyType
	System bool
}

// KeyObserver is told about every key transition, visible or not.
type KeyObserver func(code uint8, down bool)

// Keyboard holds the previous-key table and the overlay key queue.
type Keyboard struct {
	visibility Visibility
	observer   KeyObserver

	stateMutex sync.Mutex
	previous   [256]bool

	queueMutex sync.Mutex
	queue      []KeyEvent
}

// NewKeyboard returns a keyboard with every key up. observer may be
// nil.
func NewKeyboard(visibility Visibility, observer KeyObserver) *Keyboard {
	return &Keyboard{visibility: visibility, observer: observer}
}

type keyTransition struct {
	code uint8
	down bool
}

// UpdateKeyboardState compares a full keyboard snapshot (one byte per
// virtual key, high bit set when down) against the previous one. While
// the overlay is visible, transitions are queued for the overlay and
// every byte of the snapshot is zeroed so the host sees no keys held.
func (k *Keyboard) UpdateKeyboardState(keys *[256]byte) {
	visible := k.visibility.Visible()

	var changes []keyTransition
	k.stateMutex.Lock()
	for code := range keys {
		down := keys[code]&keyDownBit != 0
		if down != k.previous[code] {
			changes = append(changes, keyTransition{code: uint8(code), down: down})
			k.previous[code] = down
		}
		if visible {
			keys[code] = 0
		}
	}
	k.stateMutex.Unlock()

	for _, change := range changes {
		k.publish(change.code, change.down, false, visible)
	}
}

// UpdateSingleKeyState records one polled key (an async key state
// word, sign bit set when down). It returns the state the host should
// see: unchanged while hidden, zero while the overlay is visible.
func (k *Keyboard) UpdateSingleKeyState(key uint8, state int16) int16 {
	visible := k.Transition(key, state < 0, false)
	if visible {
		return 0
	}
	return state
}

// UpdateWMKeyState records a keyboard window message. Key-down and
// key-up update the key table; characters are queued for the overlay
// while it is visible. The result reports whether the host should
// swallow the message, which is whenever the overlay is visible.
func (k *Keyboard) UpdateWMKeyState(key uint32, keyType event.KeyType, system bool) bool {
	switch keyType {
	case event.KeyDown, event.KeyUp:
		if key > 0xFF {
			return k.visibility.Visible()
		}
		return k.Transition(uint8(key), keyType == event.KeyDown, system)
	case event.KeyChar:
		visible := k.visibility.Visible()
		if visible {
			k.enqueue(KeyEvent{Code: key, Type: event.KeyChar, System: system})
		}
		return visible
	default:
		return k.visibility.Visible()
	}
}

// TranslateMessage maps a keyboard window message to its key type.
func TranslateMessage(message uint32) (keyType event.KeyType, system bool, ok bool) {
	switch message {
	case WMKeyDown:
		return event.KeyDown, false, true
	case WMKeyUp:
		return event.KeyUp, false, true
	case WMChar:
		return event.KeyChar, false, true
	case WMSysKeyDown:
		return event.KeyDown, true, true
	case WMSysKeyUp:
		return event.KeyUp, true, true
	case WMSysChar:
		return event.KeyChar, true, true
	}
	return "", false, false
}

// Transition records one key going down or up and reports whether the
// overlay is visible.
func (k *Keyboard) Transition(code uint8, down, system bool) bool {
	visible := k.visibility.Visible()

	k.stateMutex.Lock()
	changed := k.previous[code] != down
	k.previous[code] = down
	k.stateMutex.Unlock()

	if changed {
		k.publish(code, down, system, visible)
	}
	return visible
}

// Down reports whether the key table holds code as pressed.
func (k *Keyboard) Down(code uint8) bool {
	k.stateMutex.Lock()
	defer k.stateMutex.Unlock()
	return k.previous[code]
}

func (k *Keyboard) publish(code uint8, down, system, visible bool) {
	if k.observer != nil {
		k.observer(code, down)
	}
	if !visible {
		return
	}
	keyType := event.KeyUp
	if down {
		keyType = event.KeyDown
	}
	k.enqueue(KeyEvent{Code: uint32(code), Type: keyType, System: system})
}

func (k *Keyboard) enqueue(keyEvent KeyEvent) {
	k.queueMutex.Lock()
	k.queue = append(k.queue, keyEvent)
	k.queueMutex.Unlock()
}

// Drain removes and returns every queued key event.
func (k *Keyboard) Drain() []KeyEvent {
	k.queueMutex.Lock()
	defer k.queueMutex.Unlock()
	drained := k.queue
	k.queue = nil
	return drained
}

// Reset forgets every held key and queued event.
func (k *Keyboard) Reset() {
	k.stateMutex.Lock()
	k.previous = [256]bool{}
	k.stateMutex.Unlock()

	k.queueMutex.Lock()
	k.queue = nil
	k.queueMutex.Unlock()
}
