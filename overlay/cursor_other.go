// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package overlay

type systemCursor struct{}

// NewSystemCursor returns a Cursor that does nothing. Only Windows
// hosts have a process cursor to swap.
func NewSystemCursor() Cursor {
	return systemCursor{}
}

func (systemCursor) ShowArrow() func() {
	return func() {}
}
