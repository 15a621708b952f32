// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// WriteJSON writes value as indented JSON.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// HighlightJSON returns text with terminal syntax colouring, or text
// unchanged when colouring fails.
func HighlightJSON(text string) string {
	var buffer strings.Builder
	if err := quick.Highlight(&buffer, text, "json", "terminal256", "monokai"); err != nil {
		return text
	}
	return buffer.String()
}

// NewRenderer returns a lipgloss renderer for f that emits colour only
// when f is a terminal.
func NewRenderer(f *os.File) *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(f)
	if !IsTerminal(f) {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return renderer
}

// NewCommandLogger returns the CLI logger: text on a terminal, JSON
// when stderr is redirected.
func NewCommandLogger(level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if IsTerminal(os.Stderr) {
		return slog.New(slog.NewTextHandler(os.Stderr, options))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, options))
}
