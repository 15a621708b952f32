// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package indicator

import "fmt"

// Event is an indicator state. Values up to None index the indicator
// artwork, so the order is fixed.
type Event int32

const (
	Capturing       Event = iota // capture active
	Enabled                      // controller knows about us and is ready
	EnabledHotkey                // enabled, with the default-hotkey hint artwork
	Bookmark                     // bookmark set; transient
	MicIdle                      // mic ready but not mixed into the output
	MicActive                    // mic mixed into the output
	MicMuted                     // mic muted or failed
	CacheLimit                   // out of storage for recording
	ClipProcessing               // highlight clip being processed
	ClipProcessed                // highlight clip done; transient
	StreamStarted                // transient
	StreamStopped                // transient
	Streaming                    // stream output active
	StreamMicIdle                // streaming variant of MicIdle
	StreamMicActive              // streaming variant of MicActive
	StreamMicMuted               // streaming variant of MicMuted
	None                         // nothing drawn
)

// names maps wire names (the indicator field of an indicator command)
// to events.
var names = map[string]Event{
	"idle":              None,
	"capturing":         Capturing,
	"enabled":           Enabled,
	"enabled_hotkey":    EnabledHotkey,
	"bookmark":          Bookmark,
	"mic_idle":          MicIdle,
	"mic_active":        MicActive,
	"mic_muted":         MicMuted,
	"cache_limit":       CacheLimit,
	"clip_processing":   ClipProcessing,
	"clip_processed":    ClipProcessed,
	"stream_started":    StreamStarted,
	"stream_stopped":    StreamStopped,
	"streaming":         Streaming,
	"stream_mic_idle":   StreamMicIdle,
	"stream_mic_active": StreamMicActive,
	"stream_mic_muted":  StreamMicMuted,
}

// Lookup maps a wire name to its event.
func Lookup(name string) (Event, bool) {
	event, ok := names[name]
	return event, ok
}

// Names returns every recognised wire name and its event.
func Names() map[string]Event {
	result := make(map[string]Event, len(names))
	for name, event := range names {
		result[name] = event
	}
	return result
}

// String returns the event's wire name.
func (e Event) String() string {
	for name, event := range names {
		if event == e {
			return name
		}
	}
	return fmt.Sprintf("event(%d)", int32(e))
}

// Transient reports whether the event is a timed notification that
// should give way to the continuous event after it expires.
func (e Event) Transient() bool {
	switch e {
	case Bookmark, ClipProcessed, StreamStarted, StreamStopped:
		return true
	}
	return false
}

// Animation is the effect the renderer applies to the current event.
type Animation int

const (
	Hide        Animation = iota // nothing displayed
	FadeOut                      // fading out before hiding
	PulsateUp                    // pulsing, alpha rising
	PulsateDown                  // pulsing, alpha falling
	Show                         // constant alpha; fades out near the stop time
)

// String returns the animation's log name.
func (a Animation) String() string {
	switch a {
	case Hide:
		return "hide"
	case FadeOut:
		return "fade_out"
	case PulsateUp:
		return "pulsate_up"
	case PulsateDown:
		return "pulsate_down"
	case Show:
		return "show"
	default:
		return fmt.Sprintf("animation(%d)", int(a))
	}
}

// Artwork placement within the host frame, in pixels.
const (
	X      = 8
	Y      = 8
	Width  = 16
	Height = 16
)
