// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package host assembles the overlay core inside a host process and
// exposes the calls the host's render thread and window procedure
// make.
//
// [Init] opens the command channel (AnvilRenderer<pid>) and, when
// configured, the status socket. The render thread then calls
// [Host.ProcessInputTick] once per frame, [Host.ReadLatestFramebuffer]
// when it draws the overlay, and [Host.CurrentIndicator] when it draws
// the indicator. Window procedures that see input directly feed it
// through [Host.Keyboard] and [Host.Sink]; hosts without such a hook
// point let the configured input backend install global hooks.
//
// Work requested from other goroutines (status socket toggles, hotkey
// presses seen on the hook thread) is queued and performed on the next
// ProcessInputTick, so every visibility transition happens on the
// render thread.
package host
