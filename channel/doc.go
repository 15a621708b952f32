// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package channel implements the named message channels between the
// in-process overlay and the external renderer.
//
// A channel is identified by a short name (for example
// "AnvilRenderer4242"). A [Namespace] maps names to platform
// endpoints: Unix domain sockets under a runtime directory on Linux
// and macOS, named pipes on Windows. The side that receives calls
// [Namespace.Listen] and gets one handler call per message; the side
// that sends calls [Namespace.Open] and writes whole messages with
// [Client.Write].
//
// Messages are framed with a 5-byte header (1 byte kind + 4 byte
// big-endian payload length). The kind selects the payload encoding:
// plain bytes, or an LZ4 or zstd block prefixed with the 4-byte
// uncompressed length. Writers fall back to plain framing when a
// payload does not shrink, so readers must accept all three kinds
// regardless of what the writer was configured with.
//
// The end of a connection is reported to the handler as a nil
// payload. That is the only peer-death signal: there are no
// heartbeats and no retries beyond the client redialing on its next
// write.
package channel
