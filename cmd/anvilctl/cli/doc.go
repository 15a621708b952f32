// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind anvilctl: a tree
// of [Command] values dispatched by name, pflag flag sets, typo
// suggestions, and shared output helpers for --json and styled text.
package cli
