// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package channel

import (
	"net"
	"time"

	"github.com/Microsoft/go-winio"
)

func endpointAddress(_, name string) string {
	return `\\.\pipe\` + name
}

func listenEndpoint(_, address string) (net.Listener, error) {
	return winio.ListenPipe(address, &winio.PipeConfig{
		MessageMode:      false,
		InputBufferSize:  1 << 20,
		OutputBufferSize: 1 << 16,
	})
}

func dialEndpoint(address string, timeout time.Duration) (net.Conn, error) {
	return winio.DialPipe(address, &timeout)
}
