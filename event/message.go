// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package event

// Event names carried in the "event" field.
const (
	NameMouseEvent     = "mouse_event"
	NameShowBrowser    = "show_browser"
	NameHideBrowser    = "hide_browser"
	NameCreateBookmark = "create_bookmark"
	NameKeyEvent       = "key_event"
)

// MouseEvent forwards a pointer event in client coordinates. WParam is
// the raw window-message code (WM_LBUTTONDOWN and friends).
type MouseEvent struct {
	Event  string `json:"event"`
	X      int32  `json:"x"`
	Y      int32  `json:"y"`
	WParam uint32 `json:"wParam"`
}

// ShowBrowser asks the renderer to start streaming frames of the given
// size to the named framebuffer channel.
type ShowBrowser struct {
	Event             string `json:"event"`
	FramebufferServer string `json:"framebuffer_server"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
}

// Bare is an event with no fields besides its name (hide_browser,
// create_bookmark).
type Bare struct {
	Event string `json:"event"`
}

// KeyType distinguishes key transitions from translated characters.
type KeyType string

const (
	KeyDown KeyType = "down"
	KeyUp   KeyType = "up"
	KeyChar KeyType = "char"
)

// KeyEvent forwards keyboard input captured while the overlay is
// visible. For KeyChar the keycode is the character code from the
// window message, otherwise it is the virtual key code. System marks
// keys pressed with Alt held (WM_SYSKEYDOWN and friends).
type KeyEvent struct {
	Event   string  `json:"event"`
	Type    KeyType `json:"type"`
	KeyCode uint32  `json:"keycode"`
	System  bool    `json:"system"`
}
