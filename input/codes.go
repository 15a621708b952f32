// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package input

// Window message codes carried by mouse events. They are forwarded to
// the renderer verbatim as the wParam field.
const (
	WMMouseMove     uint32 = 0x0200
	WMLButtonDown   uint32 = 0x0201
	WMLButtonUp     uint32 = 0x0202
	WMLButtonDblClk uint32 = 0x0203
	WMRButtonDown   uint32 = 0x0204
	WMRButtonUp     uint32 = 0x0205
	WMRButtonDblClk uint32 = 0x0206
	WMMButtonDown   uint32 = 0x0207
	WMMButtonUp     uint32 = 0x0208
	WMMButtonDblClk uint32 = 0x0209
	WMMouseWheel    uint32 = 0x020A
	WMXButtonDown   uint32 = 0x020B
	WMXButtonUp     uint32 = 0x020C
	WMXButtonDblClk uint32 = 0x020D
	WMMouseHWheel   uint32 = 0x020E
)

// Window message codes for keyboard input.
const (
	WMKeyDown    uint32 = 0x0100
	WMKeyUp      uint32 = 0x0101
	WMChar       uint32 = 0x0102
	WMSysKeyDown uint32 = 0x0104
	WMSysKeyUp   uint32 = 0x0105
	WMSysChar    uint32 = 0x0106
)

// Virtual key codes for modifiers. Generic and left/right variants
// both appear depending on the input source.
const (
	VKShift    uint8 = 0x10
	VKControl  uint8 = 0x11
	VKMenu     uint8 = 0x12
	VKLShift   uint8 = 0xA0
	VKRShift   uint8 = 0xA1
	VKLControl uint8 = 0xA2
	VKRControl uint8 = 0xA3
	VKLMenu    uint8 = 0xA4
	VKRMenu    uint8 = 0xA5
)

// Consumes reports whether a mouse message is withheld from the host
// while the overlay is visible. Moves and horizontal wheel pass
// through.
func Consumes(code uint32) bool {
	switch code {
	case WMLButtonDown, WMLButtonUp, WMLButtonDblClk,
		WMRButtonDown, WMRButtonUp, WMRButtonDblClk,
		WMMButtonDown, WMMButtonUp, WMMButtonDblClk,
		WMMouseWheel,
		WMXButtonDown, WMXButtonUp, WMXButtonDblClk:
		return true
	}
	return false
}
