// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service implements the anvil status socket: a CBOR
// request-response protocol on a local stream socket.
//
// Each connection carries exactly one request and one response. The
// request is a CBOR map with an "action" field plus action-specific
// fields; the response is a [Response] envelope. [SocketServer] routes
// requests to registered [ActionFunc] handlers and [Client] issues
// calls.
//
// The host registers status, toggle, and inject actions on it. The
// socket is local-only and unauthenticated; filesystem permissions on
// the runtime directory control who can reach it.
package service
