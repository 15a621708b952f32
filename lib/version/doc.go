// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for anvil binaries and the
// host's status snapshot.
//
// The variables are injected at link time:
//
//	go build -ldflags "-X github.com/bureau-foundation/anvil/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Without injection they default to "unknown" and "0.1.0-dev".
package version
