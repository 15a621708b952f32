// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniqueName returns "prefixN" where N increases monotonically across
// the test binary. The result is a valid channel name for any prefix
// made of letters and digits.
//
//	name := testutil.UniqueName("AnvilRenderer") // "AnvilRenderer1", ...
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, uniqueCounter.Add(1))
}
