// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gohook is an input.Backend built on the libuiohook global
// hook (github.com/robotn/gohook).
//
// The global hook observes input system-wide but cannot suppress it,
// so Consume dispositions are recorded in the backend's counters and
// otherwise ignored: the host still sees clicks meant for the overlay.
// Hosts that need suppression install a thread-local window hook and
// drive input.Router directly.
//
// Key codes are the hook's raw codes. On Windows these are virtual key
// codes and hotkey bindings match as configured; other platforms
// report their native codes.
//
// libuiohook supports one hook per process, so a Backend refuses a
// second Install until the first hook is released.
package gohook
