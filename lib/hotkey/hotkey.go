// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hotkey

import (
	"fmt"
	"strings"
	"sync"
)

// Slot identifies a configurable hotkey purpose.
type Slot int

const (
	Screenshot Slot = iota
	Bookmark
	Overlay

	// SlotCount is the number of slots; valid slots are 0..SlotCount-1.
	SlotCount
)

// String returns the slot's log name.
func (s Slot) String() string {
	switch s {
	case Screenshot:
		return "screenshot"
	case Bookmark:
		return "bookmark"
	case Overlay:
		return "overlay"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

// Valid reports whether s indexes a registry slot.
func (s Slot) Valid() bool {
	return s >= 0 && s < SlotCount
}

// Binding is a packed key binding: virtual key code in the low byte,
// modifier flags in the high byte. Zero means unbound.
type Binding uint16

// Modifier flags occupy the high byte of a Binding.
const (
	ModShift   Binding = 0x0100
	ModControl Binding = 0x0200
	ModAlt     Binding = 0x0400

	modifierMask Binding = ModShift | ModControl | ModAlt
)

// Pack builds a binding from a key code and modifier state.
func Pack(keyCode uint8, shift, control, alt bool) Binding {
	binding := Binding(keyCode)
	if shift {
		binding |= ModShift
	}
	if control {
		binding |= ModControl
	}
	if alt {
		binding |= ModAlt
	}
	return binding
}

// KeyCode returns the virtual key code of the binding.
func (b Binding) KeyCode() uint8 { return uint8(b & 0xff) }

// Modifiers returns only the modifier bits of the binding.
func (b Binding) Modifiers() Binding { return b & modifierMask }

// String renders the binding as e.g. "ctrl+shift+0x78".
func (b Binding) String() string {
	if b == 0 {
		return "none"
	}
	var parts []string
	if b&ModControl != 0 {
		parts = append(parts, "ctrl")
	}
	if b&ModAlt != 0 {
		parts = append(parts, "alt")
	}
	if b&ModShift != 0 {
		parts = append(parts, "shift")
	}
	parts = append(parts, fmt.Sprintf("0x%02x", b.KeyCode()))
	return strings.Join(parts, "+")
}

// Registry is the process-wide hotkey table. The zero value is ready
// to use with every slot unbound.
type Registry struct {
	mu       sync.Mutex
	bindings [SlotCount]Binding
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Set stores binding in slot. Out-of-range slots and zero bindings are
// ignored; Set reports whether the registry changed.
func (r *Registry) Set(slot Slot, binding Binding) bool {
	if !slot.Valid() || binding == 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[slot] = binding
	return true
}

// Get returns the binding for slot, or zero for an out-of-range slot.
func (r *Registry) Get(slot Slot) Binding {
	if !slot.Valid() {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bindings[slot]
}

// Snapshot returns a copy of every slot's binding.
func (r *Registry) Snapshot() [SlotCount]Binding {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bindings
}

// Update runs fn with the registry locked, so several slots change
// atomically with respect to readers. fn must not call back into the
// registry.
func (r *Registry) Update(fn func(tx *Tx)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&Tx{registry: r})
}

// Tx is the write handle passed to Update's callback. It is only valid
// for the duration of the callback.
type Tx struct {
	registry *Registry
}

// Set stores binding in slot under the enclosing Update's lock, with
// the same rules as Registry.Set.
func (tx *Tx) Set(slot Slot, binding Binding) bool {
	if !slot.Valid() || binding == 0 {
		return false
	}
	tx.registry.bindings[slot] = binding
	return true
}

// Match returns the slot bound to binding. Screenshot is checked last
// so a shared binding resolves to the overlay or bookmark action.
func (r *Registry) Match(binding Binding) (Slot, bool) {
	if binding == 0 {
		return 0, false
	}
	bindings := r.Snapshot()
	for _, slot := range []Slot{Overlay, Bookmark, Screenshot} {
		if bindings[slot] == binding {
			return slot, true
		}
	}
	return 0, false
}
