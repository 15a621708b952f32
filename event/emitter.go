// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Sender writes one message to the renderer and reports whether it
// was accepted. Implemented by *channel.Client.
type Sender interface {
	Name() string
	Write(payload []byte) bool
	Close() error
}

// Opener opens a sender for a channel name.
type Opener func(name string) (Sender, error)

// Emitter encodes notifications and writes them to the currently bound
// renderer channel. Safe for concurrent use from the input-hook,
// render, and command-delivery threads.
type Emitter struct {
	open   Opener
	logger *slog.Logger

	mutex  sync.Mutex
	sender Sender
}

// NewEmitter returns an unbound emitter.
func NewEmitter(open Opener, logger *slog.Logger) *Emitter {
	return &Emitter{open: open, logger: logger}
}

// Bind opens the outbound channel under name, replacing and closing
// any previously bound channel. On failure the previous binding is
// kept.
func (e *Emitter) Bind(name string) error {
	sender, err := e.open(name)
	if err != nil {
		return err
	}

	e.mutex.Lock()
	previous := e.sender
	e.sender = sender
	e.mutex.Unlock()

	if previous != nil {
		previous.Close()
	}
	e.logger.Info("event channel bound", "channel", name)
	return nil
}

// Bound returns the name of the bound channel, or "" if unbound.
func (e *Emitter) Bound() string {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.sender == nil {
		return ""
	}
	return e.sender.Name()
}

// Close closes the bound channel. Later sends are dropped until the
// next Bind.
func (e *Emitter) Close() {
	e.mutex.Lock()
	sender := e.sender
	e.sender = nil
	e.mutex.Unlock()
	if sender != nil {
		sender.Close()
	}
}

// MouseEvent forwards a pointer event.
func (e *Emitter) MouseEvent(x, y int32, code uint32) bool {
	return e.send(NameMouseEvent, MouseEvent{Event: NameMouseEvent, X: x, Y: y, WParam: code})
}

// ShowBrowser announces the framebuffer channel and frame size.
func (e *Emitter) ShowBrowser(framebufferServer string, width, height int) bool {
	return e.send(NameShowBrowser, ShowBrowser{
		Event:             NameShowBrowser,
		FramebufferServer: framebufferServer,
		Width:             width,
		Height:            height,
	})
}

// HideBrowser tells the renderer to stop streaming frames.
func (e *Emitter) HideBrowser() bool {
	return e.send(NameHideBrowser, Bare{Event: NameHideBrowser})
}

// CreateBookmark asks the controller to bookmark the current moment.
func (e *Emitter) CreateBookmark() bool {
	return e.send(NameCreateBookmark, Bare{Event: NameCreateBookmark})
}

// KeyEvent forwards one key transition or character.
func (e *Emitter) KeyEvent(keyType KeyType, keyCode uint32, system bool) bool {
	return e.send(NameKeyEvent, KeyEvent{Event: NameKeyEvent, Type: keyType, KeyCode: keyCode, System: system})
}

func (e *Emitter) send(name string, message any) bool {
	payload, err := json.Marshal(message)
	if err != nil {
		e.logger.Error("encoding event failed", "event", name, "error", err)
		return false
	}

	// The sender is used under the mutex so Bind cannot close it
	// mid-write. Client writes are bounded by their own timeout.
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.sender == nil {
		e.logger.Debug("event dropped, no channel bound", "event", name)
		return false
	}
	if !e.sender.Write(payload) {
		e.logger.Debug("event not delivered", "event", name, "channel", e.sender.Name())
		return false
	}
	return true
}
