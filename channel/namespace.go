// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// dialTimeout bounds a client connection attempt. Writes happen on
// input-hook and render threads, so a missing peer must fail fast.
const dialTimeout = 500 * time.Millisecond

// maxNameLength keeps socket paths under the 108-byte sun_path limit
// for reasonable runtime directories.
const maxNameLength = 64

// Namespace maps channel names to platform endpoints.
type Namespace struct {
	dir    string
	logger *slog.Logger
}

// NewNamespace returns a namespace rooted at dir. On Windows dir is
// unused: named pipes live in the global pipe namespace.
func NewNamespace(dir string, logger *slog.Logger) *Namespace {
	return &Namespace{dir: dir, logger: logger}
}

// Address returns the platform endpoint for name.
func (n *Namespace) Address(name string) string {
	return endpointAddress(n.dir, name)
}

// Listen starts a server for name. handler receives every message from
// every connection, and nil when a connection ends. sizeHint is the
// expected message size, or a non-positive value for "any size".
func (n *Namespace) Listen(name string, handler Handler, sizeHint int) (*Server, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	address := n.Address(name)
	listener, err := listenEndpoint(n.dir, address)
	if err != nil {
		return nil, fmt.Errorf("listening on channel %q: %w", name, err)
	}
	server := newServer(name, listener, handler, sizeHint, n.logger)
	server.start()
	return server, nil
}

// Open returns a client for name. The connection is dialled now if
// the peer is listening, otherwise on the first Write.
func (n *Namespace) Open(name string, compression Compression) (*Client, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	client := &Client{
		name:        name,
		address:     n.Address(name),
		compression: compression,
		logger:      n.logger,
	}
	client.mutex.Lock()
	client.connectLocked()
	client.mutex.Unlock()
	return client, nil
}

// ValidateName checks that name can be used as an endpoint name on
// every platform.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("channel name is empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("channel name %q exceeds %d bytes", name, maxNameLength)
	}
	if strings.ContainsAny(name, "/\\:\x00") {
		return fmt.Errorf("channel name %q contains a path separator or NUL", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("channel name %q is not a valid endpoint name", name)
	}
	return nil
}
