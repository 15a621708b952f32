// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package indicator tracks the status icon the overlay shows in the
// corner of the host's frame.
//
// Exactly one [Event] is current at a time. The command dispatcher
// overwrites it on every indicator command; the rendering collaborator
// reads it once per frame through [Machine.Show]. Alongside the current
// event the machine keeps an [Envelope]: the last continuous event
// (streaming, capturing, mic state) to return to after a transient
// notification such as a bookmark, the animation to apply, and the
// start/stop/last-update timestamps the renderer uses to compute fades
// and pulsing. The machine stores the envelope but never runs a timer;
// the renderer calls [Machine.RevertToContinuous] when a transient
// event's stop time passes.
package indicator
