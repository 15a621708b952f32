// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads process configuration for the anvil binaries
// and the in-process host.
//
// Configuration comes from a single YAML file named by the
// ANVIL_CONFIG environment variable or a --config flag. Unlike most
// services, an injected overlay cannot refuse to start: when no file
// is named, [Load] returns [Default] so the host keeps running with
// built-in settings. A named file that cannot be read or parsed is an
// error.
//
// String values may reference environment variables as ${VAR} or
// ${VAR:-default}. ${ANVIL_RUNTIME_DIR} expands to the configured
// runtime directory, so the status socket can live next to the
// channel sockets.
//
// Hotkeys are not configured here. They arrive from the capture
// controller at runtime and are never written back.
package config
