// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package overlay

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/anvil/lib/clock"
)

// DefaultRestartBackoff is the minimum interval between relay restarts
// while the renderer keeps dying.
const DefaultRestartBackoff = time.Second

// Relay is the framebuffer relay lifecycle the controller drives.
// Implemented by *framebuffer.Relay.
type Relay interface {
	Start() (string, error)
	Stop()
	Died() bool
	Dimensions() (width, height int)
}

// Notifier sends visibility notifications to the renderer.
// Implemented by *event.Emitter.
type Notifier interface {
	ShowBrowser(framebufferServer string, width, height int) bool
	HideBrowser() bool
}

// Cursor swaps the host cursor while the overlay is shown.
type Cursor interface {
	// ShowArrow sets the arrow cursor and returns a function that
	// restores the cursor it replaced.
	ShowArrow() (restore func())
}

// Config holds the controller's collaborators.
type Config struct {
	Relay          Relay
	Notifier       Notifier
	Cursor         Cursor // NewSystemCursor() when nil
	Clock          clock.Clock
	RestartBackoff time.Duration // DefaultRestartBackoff when zero
	Logger         *slog.Logger
}

// Controller owns the overlay visibility flag.
type Controller struct {
	relay    Relay
	notifier Notifier
	cursor   Cursor
	clock    clock.Clock
	backoff  time.Duration
	logger   *slog.Logger

	visible         atomic.Bool
	toggleRequested atomic.Bool

	// mutex serializes transitions. It is never held while another
	// component's lock is taken by this package.
	mutex       sync.Mutex
	restore     func()
	lastRestart time.Time
	restarts    uint64
}

// NewController returns a hidden controller.
func NewController(config Config) *Controller {
	cursor := config.Cursor
	if cursor == nil {
		cursor = NewSystemCursor()
	}
	backoff := config.RestartBackoff
	if backoff <= 0 {
		backoff = DefaultRestartBackoff
	}
	return &Controller{
		relay:    config.Relay,
		notifier: config.Notifier,
		cursor:   cursor,
		clock:    config.Clock,
		backoff:  backoff,
		logger:   config.Logger,
	}
}

// Visible reports whether the overlay is shown.
func (c *Controller) Visible() bool {
	return c.visible.Load()
}

// Toggle shows a hidden overlay or hides a visible one.
func (c *Controller) Toggle() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.visible.Load() {
		c.hideLocked()
		return
	}
	c.showLocked()
}

func (c *Controller) showLocked() {
	name, err := c.relay.Start()
	if err != nil {
		c.logger.Error("overlay not shown, framebuffer relay failed", "error", err)
		return
	}
	width, height := c.relay.Dimensions()
	c.notifier.ShowBrowser(name, width, height)
	c.restore = c.cursor.ShowArrow()
	c.lastRestart = c.clock.Now()
	c.visible.Store(true)
	c.logger.Info("overlay shown", "framebuffer", name, "width", width, "height", height)
}

func (c *Controller) hideLocked() {
	c.notifier.HideBrowser()
	c.relay.Stop()
	if c.restore != nil {
		c.restore()
		c.restore = nil
	}
	c.visible.Store(false)
	c.logger.Info("overlay hidden")
}

// Hide hides the overlay if it is visible.
func (c *Controller) Hide() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.visible.Load() {
		c.hideLocked()
	}
}

// Recover restarts the relay when the overlay is visible but the
// renderer has disconnected. It reports whether a restart was
// attempted.
func (c *Controller) Recover() bool {
	if !c.visible.Load() || !c.relay.Died() {
		return false
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.visible.Load() || !c.relay.Died() {
		return false
	}
	now := c.clock.Now()
	if now.Sub(c.lastRestart) < c.backoff {
		return false
	}
	c.lastRestart = now
	c.restarts++

	name, err := c.relay.Start()
	if err != nil {
		c.logger.Warn("framebuffer relay restart failed", "error", err, "attempt", c.restarts)
		return true
	}
	width, height := c.relay.Dimensions()
	c.notifier.ShowBrowser(name, width, height)
	c.logger.Info("framebuffer relay restarted", "framebuffer", name, "attempt", c.restarts)
	return true
}

// RequestToggle queues a toggle for the next ServeRequests call.
// Safe from any goroutine.
func (c *Controller) RequestToggle() {
	c.toggleRequested.Store(true)
}

// ServeRequests performs a queued toggle, if any. Several requests
// between two calls collapse into one toggle.
func (c *Controller) ServeRequests() {
	if c.toggleRequested.Swap(false) {
		c.Toggle()
	}
}

// Restarts returns how many relay restarts Recover has attempted.
func (c *Controller) Restarts() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.restarts
}
