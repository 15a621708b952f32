// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the entrypoint helpers shared by the anvil
// binaries. main() hands the error from run() to [Exit], which is the
// only place a binary writes to stderr without the structured logger.
package process
