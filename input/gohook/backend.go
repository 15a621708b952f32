// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gohook

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	hook "github.com/robotn/gohook"

	"github.com/bureau-foundation/anvil/input"
)

// libuiohook mouse buttons.
const (
	buttonLeft   = 1
	buttonRight  = 2
	buttonMiddle = 3
	buttonX1     = 4
	buttonX2     = 5
)

// wheelHorizontal is libuiohook's horizontal wheel direction.
const wheelHorizontal = 4

// ErrAlreadyInstalled is returned by Install while a hook is active.
var ErrAlreadyInstalled = errors.New("global input hook already installed")

// Backend installs the process-wide libuiohook hook.
type Backend struct {
	logger *slog.Logger

	mutex     sync.Mutex
	installed bool

	consumed atomic.Uint64
}

// NewBackend returns a backend with no hook installed.
func NewBackend(logger *slog.Logger) *Backend {
	return &Backend{logger: logger}
}

// Consumed returns how many events the sink asked to consume.
func (b *Backend) Consumed() uint64 {
	return b.consumed.Load()
}

// Install starts the global hook and a goroutine feeding its events to
// sink.
func (b *Backend) Install(sink input.Sink) (input.Hook, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.installed {
		return nil, ErrAlreadyInstalled
	}
	b.installed = true

	events := hook.Start()
	go func() {
		for hookEvent := range events {
			if Deliver(sink, hookEvent) == input.Consume {
				b.consumed.Add(1)
			}
		}
	}()
	return &installedHook{backend: b}, nil
}

type installedHook struct {
	backend *Backend
	once    sync.Once
}

// Release stops the global hook, which ends the delivery goroutine.
func (h *installedHook) Release() {
	h.once.Do(func() {
		hook.End()
		h.backend.mutex.Lock()
		h.backend.installed = false
		h.backend.mutex.Unlock()
		h.backend.logger.Debug("global input hook stopped")
	})
}

// Deliver translates one libuiohook event and hands it to sink.
// Events with no window-message equivalent pass through untouched.
func Deliver(sink input.Sink, hookEvent hook.Event) input.Disposition {
	switch hookEvent.Kind {
	case hook.KeyHold: // libuiohook "key pressed"
		return sink.Key(keyStroke(hookEvent, true))
	case hook.KeyUp: // "key released"
		return sink.Key(keyStroke(hookEvent, false))
	case hook.MouseHold: // "mouse pressed"
		code, ok := buttonCode(hookEvent.Button, hookEvent.Clicks, true)
		if !ok {
			return input.PassThrough
		}
		return sink.Button(mouseEvent(hookEvent, code))
	case hook.MouseDown: // "mouse released"
		code, ok := buttonCode(hookEvent.Button, hookEvent.Clicks, false)
		if !ok {
			return input.PassThrough
		}
		return sink.Button(mouseEvent(hookEvent, code))
	case hook.MouseMove, hook.MouseDrag:
		return sink.Move(mouseEvent(hookEvent, input.WMMouseMove))
	case hook.MouseWheel:
		code := input.WMMouseWheel
		if hookEvent.Direction == wheelHorizontal {
			code = input.WMMouseHWheel
		}
		wheel := mouseEvent(hookEvent, code)
		wheel.Delta = int32(hookEvent.Rotation)
		return sink.Wheel(wheel)
	}
	return input.PassThrough
}

func keyStroke(hookEvent hook.Event, down bool) input.KeyStroke {
	return input.KeyStroke{
		Code: uint8(hookEvent.Rawcode),
		Down: down,
		// libuiohook sets the alt bits of the mask while alt is held.
		System: hookEvent.Mask&(maskLeftAlt|maskRightAlt) != 0,
	}
}

// libuiohook modifier mask bits for alt.
const (
	maskLeftAlt  = 1 << 3
	maskRightAlt = 1 << 7
)

func mouseEvent(hookEvent hook.Event, code uint32) input.MouseEvent {
	return input.MouseEvent{Code: code, X: int32(hookEvent.X), Y: int32(hookEvent.Y)}
}

// buttonCode returns the window message for a button transition. A
// press with two or more clicks is a double click.
func buttonCode(button, clicks uint16, down bool) (uint32, bool) {
	var pressed, released, double uint32
	switch button {
	case buttonLeft:
		pressed, released, double = input.WMLButtonDown, input.WMLButtonUp, input.WMLButtonDblClk
	case buttonRight:
		pressed, released, double = input.WMRButtonDown, input.WMRButtonUp, input.WMRButtonDblClk
	case buttonMiddle:
		pressed, released, double = input.WMMButtonDown, input.WMMButtonUp, input.WMMButtonDblClk
	case buttonX1, buttonX2:
		pressed, released, double = input.WMXButtonDown, input.WMXButtonUp, input.WMXButtonDblClk
	default:
		return 0, false
	}
	switch {
	case !down:
		return released, true
	case clicks >= 2:
		return double, true
	default:
		return pressed, true
	}
}
