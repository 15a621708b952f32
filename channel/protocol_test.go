// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"
)

// framePayload returns a compressible payload resembling a mostly
// transparent overlay frame.
func framePayload(size int) []byte {
	payload := make([]byte, size)
	for index := 0; index < size; index += 4 {
		if (index/4)%64 == 0 {
			payload[index] = 0xFF
			payload[index+3] = 0xFF
		}
	}
	return payload
}

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		payload     []byte
		compression Compression
		wantKind    byte
	}{
		{"plain json", []byte(`{"event":"hide_browser"}`), CompressionNone, kindPlain},
		{"empty", []byte{}, CompressionLZ4, kindPlain},
		{"lz4 frame", framePayload(64 * 64 * 4), CompressionLZ4, kindLZ4},
		{"zstd frame", framePayload(64 * 64 * 4), CompressionZstd, kindZstd},
		{"lz4 tiny falls back", []byte("ab"), CompressionLZ4, kindPlain},
		{"zstd tiny falls back", []byte("ab"), CompressionZstd, kindPlain},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var buffer bytes.Buffer
			if err := WriteMessage(&buffer, test.payload, test.compression); err != nil {
				t.Fatalf("WriteMessage: %v", err)
			}
			if kind := buffer.Bytes()[0]; kind != test.wantKind {
				t.Errorf("kind: got 0x%02x, want 0x%02x", kind, test.wantKind)
			}

			decoder := NewDecoder(&buffer, 0)
			got, err := decoder.Next()
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if !bytes.Equal(got, test.payload) {
				t.Errorf("payload mismatch: got %d bytes, want %d", len(got), len(test.payload))
			}
			if _, err := decoder.Next(); err != io.EOF {
				t.Errorf("Next after last message: got %v, want io.EOF", err)
			}
		})
	}
}

func TestDecoderReusesBuffers(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	first := framePayload(1024)
	second := framePayload(1024)
	second[0] = 0x7F
	for _, payload := range [][]byte{first, second} {
		if err := WriteMessage(&buffer, payload, CompressionNone); err != nil {
			t.Fatalf("WriteMessage: %v", err)
		}
	}

	decoder := NewDecoder(&buffer, 1024)
	gotFirst, err := decoder.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	firstAddress := &gotFirst[0]
	gotSecond, err := decoder.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if &gotSecond[0] != firstAddress {
		t.Error("decoder allocated a new buffer for a same-sized message")
	}
	if gotSecond[0] != 0x7F {
		t.Errorf("second payload: got first byte 0x%02x, want 0x7f", gotSecond[0])
	}
}

func TestDecoderRejectsMalformed(t *testing.T) {
	t.Parallel()

	oversized := make([]byte, headerLength)
	oversized[0] = kindPlain
	binary.BigEndian.PutUint32(oversized[1:], MaxPayloadLength+1)

	unknownKind := []byte{0x7E, 0, 0, 0, 1, 'x'}

	truncated := []byte{kindPlain, 0, 0, 0, 10, 'a', 'b'}

	missingPrefix := []byte{kindLZ4, 0, 0, 0, 2, 1, 2}

	hugeExpansion := []byte{kindZstd, 0, 0, 0, 4, 0xFF, 0xFF, 0xFF, 0xFF}

	tests := []struct {
		name    string
		stream  []byte
		wantErr string
	}{
		{"oversized", oversized, "exceeds maximum"},
		{"unknown kind", unknownKind, "unknown message kind"},
		{"truncated payload", truncated, "read message payload"},
		{"truncated header", []byte{kindPlain, 0}, "read message header"},
		{"missing size prefix", missingPrefix, "no size prefix"},
		{"expansion too large", hugeExpansion, "exceeds maximum"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewDecoder(bytes.NewReader(test.stream), 0).Next()
			if err == nil {
				t.Fatal("Next succeeded on a malformed stream")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error: got %q, want it to contain %q", err, test.wantErr)
			}
		})
	}
}

func TestWriteMessageRejectsOversized(t *testing.T) {
	t.Parallel()
	payload := make([]byte, MaxPayloadLength+1)
	if err := WriteMessage(io.Discard, payload, CompressionNone); err == nil {
		t.Error("WriteMessage accepted an oversized payload")
	}
}

func TestParseCompression(t *testing.T) {
	t.Parallel()
	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		parsed, err := ParseCompression(compression.String())
		if err != nil || parsed != compression {
			t.Errorf("ParseCompression(%q): got (%v, %v)", compression.String(), parsed, err)
		}
	}
	if _, err := ParseCompression("brotli"); err == nil {
		t.Error("ParseCompression accepted brotli")
	}
}
