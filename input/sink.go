// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package input

// Disposition tells the hook backend what to do with an event after
// the sink has seen it.
type Disposition int

const (
	// PassThrough hands the event to the next hook and the host.
	PassThrough Disposition = iota

	// Consume stops the event. Backends that cannot suppress
	// events treat this as PassThrough.
	Consume
)

func (d Disposition) String() string {
	if d == Consume {
		return "consume"
	}
	return "pass_through"
}

// MouseEvent is one hooked mouse event in screen coordinates. Code is
// the window message (WMLButtonDown and friends).
type MouseEvent struct {
	Code  uint32
	X     int32
	Y     int32
	Delta int32 // wheel rotation; zero for other events
}

// KeyStroke is one hooked key transition.
type KeyStroke struct {
	Code   uint8
	Down   bool
	System bool // Alt held (WM_SYSKEYDOWN/WM_SYSKEYUP)
}

// Sink receives events from a hook backend, on the backend's thread.
// Methods must return quickly.
type Sink interface {
	Button(event MouseEvent) Disposition
	Move(event MouseEvent) Disposition
	Wheel(event MouseEvent) Disposition
	Key(stroke KeyStroke) Disposition
}

// Backend installs OS-level input hooks.
type Backend interface {
	// Install starts delivering events to sink. The returned Hook
	// stops delivery when released.
	Install(sink Sink) (Hook, error)
}

// Hook is the capability to remove an installed hook set. Release is
// safe to call more than once.
type Hook interface {
	Release()
}

// Visibility reports whether the overlay is currently shown.
// Implemented by *overlay.Controller.
type Visibility interface {
	Visible() bool
}
