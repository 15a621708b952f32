// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hotkey holds the overlay's key-binding configuration.
//
// A [Registry] stores one packed [Binding] per [Slot] (screenshot,
// bookmark, overlay toggle) behind a single mutex. The command
// dispatcher writes bindings when the controller sends
// update_settings; the input pipeline reads them on every key-down to
// decide whether a hotkey fired. Readers always receive copies, never a
// reference into the registry.
//
// A binding packs a virtual key code into the low byte and the
// modifier flags [ModShift], [ModControl], and [ModAlt] into the high
// byte, so a stored value is the OR of its modifiers and its key code.
package hotkey
