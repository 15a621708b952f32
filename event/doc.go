// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package event sends notifications from the overlay to the external
// renderer.
//
// The renderer announces where it listens with a forge_info command;
// [Emitter.Bind] (re)opens the outbound channel under that name. Every
// notification is a small JSON object keyed by "event":
//
//	{"event":"mouse_event","x":120,"y":48,"wParam":513}
//	{"event":"show_browser","framebuffer_server":"AnvilFramebufferServer4242-1","width":1920,"height":1080}
//	{"event":"hide_browser"}
//	{"event":"create_bookmark"}
//	{"event":"key_event","type":"down","keycode":65,"system":false}
//
// Until a channel is bound, notifications are dropped with a debug
// log line. Sends never block on the renderer for longer than the
// channel's write timeout and never return errors to the caller.
package event
