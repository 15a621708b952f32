// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package input routes keyboard and mouse input between the host
// application and the overlay.
//
// OS hooks are installed through a [Backend], which delivers events to
// a [Sink] on the hook thread and returns a [Hook] capability whose
// Release removes them. The [Pipeline] installs at most one hook set
// and releases it on every shutdown path.
//
// The [Router] is the sink. While the overlay is visible it forwards
// pointer events to the renderer in window client coordinates and
// consumes button and wheel messages so the host never sees clicks
// meant for the overlay. While hidden, everything passes through.
//
// The [Keyboard] tracks a 256-entry key state table fed from polled
// snapshots, single-key polls, window messages, and hook events. Key
// transitions feed the [HotkeyTracker] (always) and the overlay's key
// queue (only while visible). While visible, snapshots handed back to
// the host report no keys pressed.
//
// Locks here are never nested: the key table, the key queue, and the
// hotkey tracker each have their own mutex, and callbacks to other
// components run after the local lock is released.
package input
