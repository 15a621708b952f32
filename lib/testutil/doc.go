// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for anvil packages.
//
// [SocketDir] creates a short temporary directory in /tmp for channel
// endpoints. Unix domain sockets have a 108-byte path limit, and
// t.TempDir() paths regularly exceed it.
//
// [RequireReceive], [RequireSend], and [RequireClosed] wrap the
// select-with-timeout pattern so tests waiting on goroutines never
// hang. They are the only place tests use the wall clock.
//
// [UniqueName] generates channel names that do not collide between
// parallel tests.
//
// [LogRecorder] is a slog.Handler that keeps every record, for tests
// that assert on the diagnostics a component emits.
//
// All helpers call t.Fatalf on failure.
package testutil
