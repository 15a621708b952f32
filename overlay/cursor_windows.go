// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package overlay

import "golang.org/x/sys/windows"

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procLoadCursorW = user32.NewProc("LoadCursorW")
	procSetCursor   = user32.NewProc("SetCursor")
)

// idcArrow is the IDC_ARROW resource ordinal.
const idcArrow = 32512

type systemCursor struct{}

// NewSystemCursor returns a Cursor that swaps the thread's cursor
// through user32.
func NewSystemCursor() Cursor {
	return systemCursor{}
}

func (systemCursor) ShowArrow() func() {
	arrow, _, _ := procLoadCursorW.Call(0, idcArrow)
	previous, _, _ := procSetCursor.Call(arrow)
	return func() {
		procSetCursor.Call(previous)
	}
}
