// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Frame kinds. These are wire constants shared with the renderer.
const (
	kindPlain byte = 0x01
	kindLZ4   byte = 0x02
	kindZstd  byte = 0x03
)

// headerLength is the fixed frame header size: 1 byte kind + 4 bytes
// payload length.
const headerLength = 5

// sizePrefixLength is the uncompressed-length prefix carried by
// compressed payloads.
const sizePrefixLength = 4

// MaxPayloadLength bounds a single message on the wire and after
// decompression. A 4K RGBA frame is a little under 32 MiB.
const MaxPayloadLength = 64 * 1024 * 1024

// WriteMessage frames payload with the requested compression and
// writes it to w with a single Write call. Compressed framing falls
// back to plain when the payload does not shrink.
func WriteMessage(w io.Writer, payload []byte, compression Compression) error {
	if len(payload) > MaxPayloadLength {
		return fmt.Errorf("payload length %d exceeds maximum %d", len(payload), MaxPayloadLength)
	}

	kind := kindPlain
	body := payload
	if compression != CompressionNone && len(payload) > 0 {
		compressed, err := compress(payload, compression)
		switch {
		case errors.Is(err, errIncompressible):
		case err != nil:
			return err
		default:
			kind = compression.kind()
			body = compressed
		}
	}

	frame := make([]byte, headerLength, headerLength+len(body))
	frame[0] = kind
	binary.BigEndian.PutUint32(frame[1:headerLength], uint32(len(body)))
	frame = append(frame, body...)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Decoder reads framed messages from a stream. Buffers are reused
// between calls: the slice returned by Next is only valid until the
// following call.
type Decoder struct {
	reader   io.Reader
	frame    []byte
	expanded []byte
}

// NewDecoder returns a decoder reading from r. A positive sizeHint
// preallocates buffers for messages of that size.
func NewDecoder(r io.Reader, sizeHint int) *Decoder {
	decoder := &Decoder{reader: r}
	if sizeHint > 0 && sizeHint <= MaxPayloadLength {
		decoder.frame = make([]byte, 0, sizeHint)
		decoder.expanded = make([]byte, 0, sizeHint)
	}
	return decoder
}

// Next reads one message and returns its decoded payload. io.EOF is
// returned unwrapped when the stream ends cleanly between messages.
func (d *Decoder) Next() ([]byte, error) {
	var header [headerLength]byte
	if _, err := io.ReadFull(d.reader, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read message header: %w", err)
	}
	kind := header[0]
	payloadLength := binary.BigEndian.Uint32(header[1:headerLength])
	if payloadLength > MaxPayloadLength {
		return nil, fmt.Errorf("payload length %d exceeds maximum %d", payloadLength, MaxPayloadLength)
	}

	d.frame = grow(d.frame, int(payloadLength))
	if _, err := io.ReadFull(d.reader, d.frame); err != nil {
		return nil, fmt.Errorf("read message payload: %w", err)
	}

	switch kind {
	case kindPlain:
		return d.frame, nil
	case kindLZ4, kindZstd:
		return d.decompress(kind)
	default:
		return nil, fmt.Errorf("unknown message kind 0x%02x", kind)
	}
}

func (d *Decoder) decompress(kind byte) ([]byte, error) {
	if len(d.frame) < sizePrefixLength {
		return nil, fmt.Errorf("compressed payload of %d bytes has no size prefix", len(d.frame))
	}
	uncompressedSize := binary.BigEndian.Uint32(d.frame[:sizePrefixLength])
	if uncompressedSize > MaxPayloadLength {
		return nil, fmt.Errorf("uncompressed length %d exceeds maximum %d", uncompressedSize, MaxPayloadLength)
	}
	d.expanded = grow(d.expanded, int(uncompressedSize))
	if err := decompress(d.frame[sizePrefixLength:], kind, d.expanded); err != nil {
		return nil, err
	}
	return d.expanded, nil
}

// grow returns buffer resliced to length, reallocating only when the
// capacity is too small.
func grow(buffer []byte, length int) []byte {
	if cap(buffer) < length {
		return make([]byte, length)
	}
	return buffer[:length]
}
