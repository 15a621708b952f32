// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package framebuffer

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/zeebo/blake3"
)

// BytesPerPixel is the frame pixel size (RGBA).
const BytesPerPixel = 4

// DefaultMinSizeHint is the smallest expected frame size passed to the
// channel as a size hint. Below it the window size is probably not
// known yet, and the channel is opened for any size.
const DefaultMinSizeHint = 1024

// Window reports the host window's client-area size. It is called
// from the delivery goroutine as well as the render thread, so
// implementations must be safe for concurrent use.
type Window interface {
	ClientSize() (width, height int)
}

// ListenFunc opens the named channel and delivers every message to
// handler, with nil on peer disconnect. Closing the returned server
// must wait for in-flight handler calls.
type ListenFunc func(name string, handler func(payload []byte), sizeHint int) (io.Closer, error)

// State is the relay's lifecycle state.
type State string

const (
	StateStopped State = "stopped"
	StateActive  State = "active"
	StateDied    State = "died"
)

// Stats is a point-in-time summary of the relay.
type Stats struct {
	Name       string `json:"name"`
	State      State  `json:"state"`
	Generation uint64 `json:"generation"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Accepted   uint64 `json:"accepted"`
	Rejected   uint64 `json:"rejected"`
}

// Config holds the relay's collaborators.
type Config struct {
	Listen      ListenFunc
	Window      Window
	ProcessID   int
	MinSizeHint int // DefaultMinSizeHint when zero
	Logger      *slog.Logger
}

// Relay owns the framebuffer channel and the frame double buffer.
type Relay struct {
	listen      ListenFunc
	window      Window
	processID   int
	minSizeHint int
	logger      *slog.Logger

	restarts atomic.Uint64

	// lifecycleMutex serializes Start and Stop and guards the fields
	// below it. Delivery never takes it.
	lifecycleMutex sync.Mutex
	server         io.Closer
	name           string
	width          int
	height         int

	// generation identifies the current incarnation. Deliveries
	// carrying an older generation are ignored.
	generation atomic.Uint64
	died       atomic.Bool
	newData    atomic.Bool
	delivering atomic.Bool

	// incoming is owned by whichever delivery holds the delivering
	// flag, or by Stop once the server has been closed.
	incoming []byte

	bufferMutex sync.Mutex
	shared      []byte

	// read is owned by the render thread.
	read []byte

	accepted atomic.Uint64
	rejected atomic.Uint64
}

// NewRelay returns a stopped relay.
func NewRelay(config Config) *Relay {
	minSizeHint := config.MinSizeHint
	if minSizeHint <= 0 {
		minSizeHint = DefaultMinSizeHint
	}
	relay := &Relay{
		listen:      config.Listen,
		window:      config.Window,
		processID:   config.ProcessID,
		minSizeHint: minSizeHint,
		logger:      config.Logger,
	}
	relay.died.Store(true)
	return relay
}

// expectedSize returns the frame size for the window's current
// client area.
func (r *Relay) expectedSize() (width, height, size int) {
	width, height = r.window.ClientSize()
	if width < 0 || height < 0 {
		return width, height, 0
	}
	return width, height, width * height * BytesPerPixel
}

// Start opens a fresh framebuffer channel, closing any previous one.
// It returns the channel name to announce to the renderer.
func (r *Relay) Start() (string, error) {
	r.lifecycleMutex.Lock()
	defer r.lifecycleMutex.Unlock()

	if r.server != nil {
		r.stopLocked()
	}

	name := fmt.Sprintf("AnvilFramebufferServer%d-%d", r.processID, r.restarts.Add(1)-1)
	width, height, expected := r.expectedSize()
	sizeHint := expected
	if expected <= r.minSizeHint {
		sizeHint = -1
	}

	generation := r.generation.Add(1)
	server, err := r.listen(name, func(payload []byte) {
		r.deliver(generation, payload)
	}, sizeHint)
	if err != nil {
		return "", fmt.Errorf("starting framebuffer relay %s: %w", name, err)
	}

	r.server = server
	r.name = name
	r.width = width
	r.height = height
	r.died.Store(false)
	r.logger.Info("framebuffer relay started",
		"channel", name,
		"width", width,
		"height", height,
		"size_hint", sizeHint,
	)
	return name, nil
}

// deliver is the channel handler for one incarnation.
func (r *Relay) deliver(generation uint64, payload []byte) {
	if generation != r.generation.Load() {
		return
	}
	if payload == nil {
		r.died.Store(true)
		r.logger.Warn("framebuffer peer disconnected", "generation", generation)
		return
	}

	_, _, expected := r.expectedSize()
	if len(payload) != expected {
		r.rejected.Add(1)
		r.logger.Warn("framebuffer size mismatch, frame dropped",
			"size", len(payload),
			"expected", expected,
		)
		return
	}

	if !r.delivering.CompareAndSwap(false, true) {
		r.rejected.Add(1)
		r.logger.Debug("framebuffer delivery already in progress, frame dropped")
		return
	}
	defer r.delivering.Store(false)

	if cap(r.incoming) < len(payload) {
		r.incoming = make([]byte, len(payload))
	}
	r.incoming = r.incoming[:len(payload)]
	copy(r.incoming, payload)

	if r.logger.Enabled(context.Background(), slog.LevelDebug) {
		digest := blake3.Sum256(r.incoming)
		r.logger.Debug("framebuffer frame accepted",
			"size", len(r.incoming),
			"blake3", hex.EncodeToString(digest[:8]),
		)
	}

	r.bufferMutex.Lock()
	r.incoming, r.shared = r.shared, r.incoming
	r.newData.Store(true)
	r.bufferMutex.Unlock()

	r.accepted.Add(1)
}

// ReadLatest returns the newest frame if one arrived since the last
// call. It never blocks on a delivery: when no frame is pending it
// returns without locking. The returned slice is valid until the next
// call. Only the render thread may call ReadLatest.
func (r *Relay) ReadLatest() ([]byte, bool) {
	if r.died.Load() || !r.newData.Load() {
		return nil, false
	}

	r.bufferMutex.Lock()
	r.shared, r.read = r.read, r.shared
	r.newData.Store(false)
	r.bufferMutex.Unlock()

	return r.read, true
}

// Stop closes the channel and discards pending frames. Safe to call
// when already stopped.
func (r *Relay) Stop() {
	r.lifecycleMutex.Lock()
	defer r.lifecycleMutex.Unlock()
	r.stopLocked()
}

// stopLocked closes the server, which waits for in-flight deliveries,
// then clears the buffers the render thread and delivery own. The
// shared buffer is left alone; died gates reads of it.
func (r *Relay) stopLocked() {
	r.died.Store(true)
	r.newData.Store(false)
	if r.server != nil {
		if err := r.server.Close(); err != nil {
			r.logger.Debug("closing framebuffer channel", "channel", r.name, "error", err)
		}
		r.server = nil
		r.logger.Info("framebuffer relay stopped", "channel", r.name)
	}
	r.incoming = r.incoming[:0]
	r.read = r.read[:0]
}

// Died reports whether the relay is not receiving frames, either
// because it was stopped or because the peer disconnected.
func (r *Relay) Died() bool {
	return r.died.Load()
}

// Active reports whether the relay has an open channel, whether or not
// the peer is still connected.
func (r *Relay) Active() bool {
	r.lifecycleMutex.Lock()
	defer r.lifecycleMutex.Unlock()
	return r.server != nil
}

// Name returns the current or most recent channel name.
func (r *Relay) Name() string {
	r.lifecycleMutex.Lock()
	defer r.lifecycleMutex.Unlock()
	return r.name
}

// Dimensions returns the frame size the relay was started for.
func (r *Relay) Dimensions() (width, height int) {
	r.lifecycleMutex.Lock()
	defer r.lifecycleMutex.Unlock()
	return r.width, r.height
}

// Stats summarizes the relay.
func (r *Relay) Stats() Stats {
	r.lifecycleMutex.Lock()
	stats := Stats{
		Name:       r.name,
		State:      StateStopped,
		Generation: r.generation.Load(),
		Width:      r.width,
		Height:     r.height,
	}
	if r.server != nil {
		stats.State = StateActive
		if r.died.Load() {
			stats.State = StateDied
		}
	}
	r.lifecycleMutex.Unlock()

	stats.Accepted = r.accepted.Load()
	stats.Rejected = r.rejected.Load()
	return stats
}
