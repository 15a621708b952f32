// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package overlay switches the overlay between hidden and visible.
//
// Showing starts the framebuffer relay, announces its channel and the
// frame size to the renderer with show_browser, and swaps the cursor
// to the arrow. Hiding sends hide_browser, stops the relay, and puts
// the previous cursor back. The visible flag is a single atomic read
// by the input hook thread on every event.
//
// If the renderer dies while the overlay is visible, [Controller.Recover]
// (called on each input tick) restarts the relay under a new name and
// announces it again, at most once per restart backoff. Visibility is
// not touched, so the user never has to toggle the overlay to get it
// back.
//
// Toggle runs on the render thread. Other goroutines queue a toggle
// with [Controller.RequestToggle]; the next input tick serves it.
package overlay
