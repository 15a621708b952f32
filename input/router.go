// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package input

import "log/slog"

// CoordinateMapper converts screen coordinates to the host window's
// client coordinates. ok is false when the window cannot map the
// point (for example, it was destroyed).
type CoordinateMapper interface {
	ScreenToClient(x, y int32) (clientX, clientY int32, ok bool)
}

// MouseForwarder sends pointer events to the renderer. Implemented by
// *event.Emitter.
type MouseForwarder interface {
	MouseEvent(x, y int32, code uint32) bool
}

// Router is the Sink the pipeline installs.
type Router struct {
	visibility Visibility
	mapper     CoordinateMapper
	forwarder  MouseForwarder
	keyboard   *Keyboard
	logger     *slog.Logger
}

// NewRouter returns a sink that diverts input to the overlay while
// visibility reports it shown.
func NewRouter(visibility Visibility, mapper CoordinateMapper, forwarder MouseForwarder, keyboard *Keyboard, logger *slog.Logger) *Router {
	return &Router{
		visibility: visibility,
		mapper:     mapper,
		forwarder:  forwarder,
		keyboard:   keyboard,
		logger:     logger,
	}
}

// Button handles button press, release, and double-click messages.
func (r *Router) Button(event MouseEvent) Disposition {
	return r.mouse(event)
}

// Move handles pointer motion.
func (r *Router) Move(event MouseEvent) Disposition {
	return r.mouse(event)
}

// Wheel handles wheel rotation.
func (r *Router) Wheel(event MouseEvent) Disposition {
	return r.mouse(event)
}

// mouse forwards every event while visible, when the point maps into
// the window, and consumes the codes Consumes names whether or not it
// mapped.
func (r *Router) mouse(event MouseEvent) Disposition {
	if !r.visibility.Visible() {
		return PassThrough
	}

	if x, y, ok := r.mapper.ScreenToClient(event.X, event.Y); ok {
		r.forwarder.MouseEvent(x, y, event.Code)
	} else {
		r.logger.Debug("mouse event outside mappable window", "code", event.Code, "x", event.X, "y", event.Y)
	}

	if Consumes(event.Code) {
		return Consume
	}
	return PassThrough
}

// Key feeds a hooked key transition into the keyboard state. Keys are
// consumed while the overlay is visible.
func (r *Router) Key(stroke KeyStroke) Disposition {
	if r.keyboard.Transition(stroke.Code, stroke.Down, stroke.System) {
		return Consume
	}
	return PassThrough
}
