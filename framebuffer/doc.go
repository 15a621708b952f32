// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package framebuffer moves rendered overlay frames from the external
// renderer into the host's render loop.
//
// While the overlay is visible, a [Relay] listens on a dedicated
// channel named AnvilFramebufferServer<pid>-<n>, where n increases on
// every start so a restarted renderer can never reach a previous
// incarnation's endpoint. Each message is one full RGBA frame of the
// host window's current client size.
//
// Frames pass through three buffers. The delivery goroutine copies a
// message into its private incoming buffer, then swaps it with the
// shared buffer under a short lock and raises the new-data flag. The
// render thread checks that flag without locking; only when it is set
// does it lock, swap shared with its private read buffer, and clear
// the flag. The render thread therefore never waits on a delivery in
// progress and never sees a partially written frame, and steady-state
// delivery allocates nothing.
//
// A nil delivery (peer disconnect) marks the relay died. The overlay
// controller notices on its next input tick and restarts the relay
// under a fresh name.
package framebuffer
