// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil classifies connection errors for the socket readers.
package netutil

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// IsExpectedCloseError reports whether err is a normal end of a
// connection: EOF, a closed connection, a broken pipe, or a reset.
// Peers of a channel or the status socket simply exit when they are
// done, so a reader sees any of these on the surviving side and should
// not log them as failures.
//
// A channel peer that closes the whole connection, rather than
// half-closing its write side, surfaces as ECONNRESET or EPIPE on the
// survivor instead of EOF, depending on whether the survivor was
// reading or writing at that moment. The dispatcher treats all four
// the same way: the peer is gone and a nil delivery follows. A frame
// cut off mid-payload (io.ErrUnexpectedEOF) is not expected; it means
// the peer crashed or the stream is corrupt, and is logged.
func IsExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.EPIPE || errno == syscall.ECONNRESET
	}
	return false
}
