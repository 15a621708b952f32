// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/bureau-foundation/anvil/lib/netutil"
)

// Handler receives one decoded message per call. The payload is only
// valid until the handler returns; handlers that keep data must copy
// it. A nil payload means a peer connection ended.
//
// Handlers run on the connection's reader goroutine and must return
// quickly. A handler must not call Close on its own server.
type Handler func(payload []byte)

// Server accepts connections on one channel name and feeds their
// messages to a handler.
type Server struct {
	name     string
	listener net.Listener
	handler  Handler
	sizeHint int
	logger   *slog.Logger

	mutex       sync.Mutex
	closed      bool
	connections map[net.Conn]struct{}

	// active counts the accept loop and every connection reader.
	// Close waits on it so no handler call outlives the server.
	active    sync.WaitGroup
	closeOnce sync.Once
}

func newServer(name string, listener net.Listener, handler Handler, sizeHint int, logger *slog.Logger) *Server {
	return &Server{
		name:        name,
		listener:    listener,
		handler:     handler,
		sizeHint:    sizeHint,
		logger:      logger,
		connections: make(map[net.Conn]struct{}),
	}
}

// Name returns the channel name the server listens on.
func (s *Server) Name() string {
	return s.name
}

func (s *Server) start() {
	s.active.Add(1)
	go func() {
		defer s.active.Done()
		s.acceptLoop()
	}()
}

func (s *Server) acceptLoop() {
	for {
		connection, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.isClosed() {
				return
			}
			s.logger.Error("channel accept failed", "channel", s.name, "error", err)
			return
		}

		s.mutex.Lock()
		if s.closed {
			s.mutex.Unlock()
			connection.Close()
			return
		}
		s.connections[connection] = struct{}{}
		s.active.Add(1)
		s.mutex.Unlock()

		go func() {
			defer s.active.Done()
			s.readLoop(connection)
		}()
	}
}

func (s *Server) readLoop(connection net.Conn) {
	defer func() {
		s.mutex.Lock()
		delete(s.connections, connection)
		s.mutex.Unlock()
		connection.Close()
	}()

	decoder := NewDecoder(connection, s.sizeHint)
	for {
		payload, err := decoder.Next()
		if err != nil {
			if s.isClosed() {
				return
			}
			if !netutil.IsExpectedCloseError(err) {
				s.logger.Warn("channel read failed", "channel", s.name, "error", err)
			}
			s.handler(nil)
			return
		}
		if payload == nil {
			payload = []byte{}
		}
		s.handler(payload)
	}
}

func (s *Server) isClosed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}

// Close stops accepting connections, disconnects every peer, and waits
// for in-flight handler calls to return. Connections ended by Close
// are not reported to the handler. Safe to call more than once.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mutex.Lock()
		s.closed = true
		err = s.listener.Close()
		for connection := range s.connections {
			connection.Close()
		}
		s.mutex.Unlock()

		s.active.Wait()
	})
	return err
}
