// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"log/slog"
	"net"
	"sync"
	"time"
)

// writeTimeout bounds a single message write so a stalled peer cannot
// block the caller's thread indefinitely.
const writeTimeout = 2 * time.Second

// Client writes messages to one named channel. It holds at most one
// connection; a failed write drops it and the next write redials.
// Safe for concurrent use: each message is written whole under a
// mutex.
type Client struct {
	name        string
	address     string
	compression Compression
	logger      *slog.Logger

	mutex      sync.Mutex
	connection net.Conn
	closed     bool
}

// Name returns the channel name the client writes to.
func (c *Client) Name() string {
	return c.name
}

// Write sends payload as one message. It reports whether the message
// was handed to the peer's connection.
func (c *Client) Write(payload []byte) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return false
	}
	if c.connection == nil && !c.connectLocked() {
		return false
	}

	c.connection.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := WriteMessage(c.connection, payload, c.compression); err != nil {
		c.logger.Warn("channel write failed", "channel", c.name, "error", err)
		c.connection.Close()
		c.connection = nil
		return false
	}
	return true
}

// connectLocked dials the peer. The caller holds c.mutex.
func (c *Client) connectLocked() bool {
	connection, err := dialEndpoint(c.address, dialTimeout)
	if err != nil {
		c.logger.Debug("channel dial failed", "channel", c.name, "error", err)
		return false
	}
	c.connection = connection
	return true
}

// Close drops the connection. Later writes fail.
func (c *Client) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.closed = true
	if c.connection == nil {
		return nil
	}
	err := c.connection.Close()
	c.connection = nil
	return err
}
