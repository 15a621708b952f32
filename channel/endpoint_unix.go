// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package channel

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

func endpointAddress(dir, name string) string {
	return filepath.Join(dir, name+".sock")
}

// listenEndpoint creates the runtime directory if needed and replaces
// any stale socket left by a crashed process with the same pid.
func listenEndpoint(dir, address string) (net.Listener, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating runtime directory %s: %w", dir, err)
	}
	if err := os.Remove(address); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("removing stale socket %s: %w", address, err)
	}
	return net.Listen("unix", address)
}

func dialEndpoint(address string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", address, timeout)
}
