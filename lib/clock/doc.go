// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Components that stamp state with wall-clock time (the indicator
// envelope, the framebuffer relay's restart backoff) or run periodic
// loops (the demo render loop, the renderer simulator) take a Clock
// instead of calling the time package directly. Production code uses
// Real(); tests use Fake() and move time with Advance, so envelope
// timestamps and backoff windows are asserted exactly.
package clock
