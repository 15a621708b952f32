// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

// window is a fixed-size window whose client area starts at the
// screen origin.
type window struct {
	width, height int
}

func newWindow(width, height int) *window {
	return &window{width: width, height: height}
}

func (w *window) ClientSize() (int, int) {
	return w.width, w.height
}

// ScreenToClient accepts only points inside the client area.
func (w *window) ScreenToClient(x, y int32) (int32, int32, bool) {
	if x < 0 || y < 0 || int(x) >= w.width || int(y) >= w.height {
		return 0, 0, false
	}
	return x, y, true
}
