// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bureau-foundation/anvil/lib/hotkey"
)

// Command names on the wire.
const (
	NameIndicator      = "indicator"
	NameForgeInfo      = "forge_info"
	NameUpdateSettings = "update_settings"
)

var (
	// ErrEmptyPayload is returned for a zero-length message, or one
	// that is nothing but NUL terminators.
	ErrEmptyPayload = errors.New("empty command payload")

	// ErrEmptyCommand is returned when the command field is missing
	// or empty.
	ErrEmptyCommand = errors.New("missing command name")
)

// UnknownCommandError reports a well-formed message naming a command
// this overlay does not implement. NameLength is the byte length of
// the name, which makes truncated or padded names visible in logs.
type UnknownCommandError struct {
	Name       string
	NameLength int
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q (name %d bytes)", e.Name, e.NameLength)
}

// Command is one decoded control command.
type Command interface {
	// Name returns the command's wire name.
	Name() string
}

// IndicatorCommand selects the indicator shown in the host frame.
type IndicatorCommand struct {
	Indicator string
}

func (IndicatorCommand) Name() string { return NameIndicator }

// ForgeInfoCommand names the channel the renderer listens on for
// events from the overlay.
type ForgeInfoCommand struct {
	AnvilEvent string
}

func (ForgeInfoCommand) Name() string { return NameForgeInfo }

// KeySetting is one hotkey slot's configuration as sent by the
// controller. KeyCode is nil when the field was absent.
type KeySetting struct {
	KeyCode *int `json:"keycode"`
	Shift   bool `json:"shift"`
	Ctrl    bool `json:"ctrl"`
	Alt     bool `json:"alt"`
	Meta    bool `json:"meta"`
}

// SlotSetting pairs a hotkey slot with the setting received for it.
// Err is set when the slot's object could not be decoded; Setting is
// then zero and the slot is not applied.
type SlotSetting struct {
	Field   string
	Slot    hotkey.Slot
	Setting KeySetting
	Err     error
}

// UpdateSettingsCommand carries hotkey settings for the slots present
// in the message, in a fixed slot order.
type UpdateSettingsCommand struct {
	Keys []SlotSetting
}

func (UpdateSettingsCommand) Name() string { return NameUpdateSettings }

// settingFields maps update_settings fields to hotkey slots. The
// screenshot slot has no field.
var settingFields = []struct {
	field string
	slot  hotkey.Slot
}{
	{"bookmark_key", hotkey.Bookmark},
	{"highlight_key", hotkey.Overlay},
}

// Decode parses one command message. Trailing NUL terminators are
// ignored.
func Decode(data []byte) (Command, error) {
	data = bytes.TrimRight(data, "\x00")
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decoding command: %w", err)
	}

	var name string
	if raw, ok := fields["command"]; ok {
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, fmt.Errorf("decoding command field: %w", err)
		}
	}
	if name == "" {
		return nil, ErrEmptyCommand
	}

	switch name {
	case NameIndicator:
		var command IndicatorCommand
		if err := decodeField(fields, "indicator", &command.Indicator); err != nil {
			return nil, err
		}
		return command, nil

	case NameForgeInfo:
		var command ForgeInfoCommand
		if err := decodeField(fields, "anvil_event", &command.AnvilEvent); err != nil {
			return nil, err
		}
		return command, nil

	case NameUpdateSettings:
		var command UpdateSettingsCommand
		for _, entry := range settingFields {
			raw, ok := fields[entry.field]
			if !ok || string(raw) == "null" {
				continue
			}
			slot := SlotSetting{Field: entry.field, Slot: entry.slot}
			if err := json.Unmarshal(raw, &slot.Setting); err != nil {
				slot.Setting = KeySetting{}
				slot.Err = fmt.Errorf("decoding: %w", err)
			}
			command.Keys = append(command.Keys, slot)
		}
		return command, nil

	default:
		return nil, &UnknownCommandError{Name: name, NameLength: len(name)}
	}
}

// decodeField unmarshals fields[key] into target when present. An
// absent field leaves target at its zero value.
func decodeField(fields map[string]json.RawMessage, key string, target any) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}
