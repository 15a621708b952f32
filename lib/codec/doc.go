// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides anvil's CBOR encoding configuration.
//
// Anvil speaks two formats with a fixed boundary:
//
//   - JSON on the renderer channels (commands in, browser events out).
//     The renderer owns that format and anvil follows it byte for byte.
//   - CBOR on the local status socket that anvilctl and the test
//     harnesses use to inspect and drive a running host.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same status snapshot always produces the same bytes.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Status socket types carry `cbor` struct tags. Types that are also
// printed by anvilctl --json carry `json` tags only; fxamacker/cbor
// falls back to them when no `cbor` tag is present.
package codec
