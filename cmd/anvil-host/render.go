// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/anvil/host"
	"github.com/bureau-foundation/anvil/lib/clock"
	"github.com/bureau-foundation/anvil/lib/indicator"
)

// renderStats counts what the render loop has seen.
type renderStats struct {
	Ticks  uint64
	Frames uint64
}

// renderLoop stands in for the graphics hook's present callback: it
// runs the input tick, expires transient indicators, and consumes the
// latest browser frame while the overlay is visible.
type renderLoop struct {
	host   *host.Host
	clock  clock.Clock
	logger *slog.Logger

	mutex     sync.Mutex
	counters  renderStats
	indicator indicator.Event
	visible   bool
}

func newRenderLoop(h *host.Host, source clock.Clock, logger *slog.Logger) *renderLoop {
	return &renderLoop{host: h, clock: source, logger: logger, indicator: indicator.None}
}

func (r *renderLoop) run(ctx context.Context, interval time.Duration) {
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.frame(now)
		}
	}
}

// frame performs one present.
func (r *renderLoop) frame(now time.Time) {
	r.host.ProcessInputTick()

	indicators := r.host.Indicators()
	envelope := indicators.Envelope()
	if !envelope.Stop.IsZero() && !now.Before(envelope.Stop) {
		indicators.RevertToContinuous()
	}
	var current indicator.Event
	var alpha uint8
	r.host.ShowCurrentIndicator(func(event indicator.Event, opacity uint8) {
		current = event
		alpha = opacity
	})
	visible := r.host.OverlayVisible()

	var frame []byte
	var fresh bool
	if visible {
		frame, fresh = r.host.ReadLatestFramebuffer()
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.counters.Ticks++
	if current != r.indicator {
		r.logger.Info("indicator changed", "from", r.indicator.String(), "to", current.String(), "alpha", alpha)
		r.indicator = current
	}
	if visible != r.visible {
		r.logger.Info("overlay visibility changed", "visible", visible)
		r.visible = visible
	}
	if fresh {
		r.counters.Frames++
		width, height := r.host.FramebufferDimensions()
		r.logger.Debug("drew browser frame",
			"bytes", len(frame),
			"width", width,
			"height", height,
		)
	}
}

func (r *renderLoop) stats() renderStats {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.counters
}
