// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package command decodes control commands sent by the capture
// controller and applies them to the overlay's shared state.
//
// Commands arrive as JSON objects on the AnvilRenderer<pid> channel,
// optionally NUL-terminated:
//
//	{"command":"indicator","indicator":"streaming"}
//	{"command":"forge_info","anvil_event":"AnvilEvents4242"}
//	{"command":"update_settings","bookmark_key":{"keycode":120,"ctrl":true},"highlight_key":{"keycode":121}}
//
// [Decode] turns one message into a [Command] variant; the
// [Dispatcher] switches over the variant and mutates the indicator
// machine, the hotkey registry, or the event emitter's binding.
//
// Nothing here is fatal. A message that cannot be decoded or applied
// produces exactly one log line and leaves every piece of state as it
// was, with one exception: update_settings applies each valid hotkey
// slot even when a sibling slot is rejected.
package command
