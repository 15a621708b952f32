// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how a client frames outgoing messages.
type Compression uint8

const (
	// CompressionNone sends payloads as-is. The right choice for
	// small JSON messages.
	CompressionNone Compression = iota

	// CompressionLZ4 compresses with LZ4 block mode. Cheap enough
	// to run per frame; flat overlay regions compress well.
	CompressionLZ4

	// CompressionZstd compresses with zstd at the default level.
	CompressionZstd
)

// String returns the configuration name of the compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a configuration name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

func (c Compression) kind() byte {
	switch c {
	case CompressionLZ4:
		return kindLZ4
	case CompressionZstd:
		return kindZstd
	default:
		return kindPlain
	}
}

// errIncompressible is returned when compression would not shrink the
// payload. WriteMessage falls back to plain framing.
var errIncompressible = errors.New("payload is incompressible")

// zstd encoders and decoders are safe for concurrent use and costly to
// create, so one of each is shared by the package.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("channel: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxPayloadLength))
	if err != nil {
		panic("channel: zstd decoder initialization failed: " + err.Error())
	}
}

// compress returns the size-prefixed compressed body for payload.
func compress(payload []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(payload))
		body := make([]byte, sizePrefixLength+bound)
		binary.BigEndian.PutUint32(body[:sizePrefixLength], uint32(len(payload)))
		written, err := lz4.CompressBlock(payload, body[sizePrefixLength:], nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		// CompressBlock reports 0 for data it cannot compress.
		if written == 0 || sizePrefixLength+written >= len(payload) {
			return nil, errIncompressible
		}
		return body[:sizePrefixLength+written], nil

	case CompressionZstd:
		body := make([]byte, sizePrefixLength, sizePrefixLength+len(payload)/2)
		binary.BigEndian.PutUint32(body, uint32(len(payload)))
		body = zstdEncoder.EncodeAll(payload, body)
		if len(body) >= len(payload) {
			return nil, errIncompressible
		}
		return body, nil

	default:
		return nil, fmt.Errorf("unsupported compression %d", compression)
	}
}

// decompress expands body into destination, whose length is the
// expected uncompressed size.
func decompress(body []byte, kind byte, destination []byte) error {
	switch kind {
	case kindLZ4:
		read, err := lz4.UncompressBlock(body, destination)
		if err != nil {
			return fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != len(destination) {
			return fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, len(destination))
		}
		return nil

	case kindZstd:
		result, err := zstdDecoder.DecodeAll(body, destination[:0])
		if err != nil {
			return fmt.Errorf("zstd decompress: %w", err)
		}
		if len(result) != len(destination) {
			return fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), len(destination))
		}
		// DecodeAll appends, so output that outgrew the destination's
		// capacity lives in a new array.
		if len(result) > 0 && &result[0] != &destination[0] {
			copy(destination, result)
		}
		return nil

	default:
		return fmt.Errorf("unsupported message kind 0x%02x", kind)
	}
}
