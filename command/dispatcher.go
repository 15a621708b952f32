// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/anvil/lib/hotkey"
	"github.com/bureau-foundation/anvil/lib/indicator"
)

// IndicatorSetter receives indicator changes. Implemented by
// *indicator.Machine.
type IndicatorSetter interface {
	SetCurrent(event indicator.Event)
}

// EventBinder rebinds the outbound event channel. Implemented by
// *event.Emitter.
type EventBinder interface {
	Bind(name string) error
}

// Dispatcher applies decoded commands to the overlay's state.
type Dispatcher struct {
	indicators IndicatorSetter
	hotkeys    *hotkey.Registry
	events     EventBinder
	logger     *slog.Logger
}

// NewDispatcher returns a dispatcher writing to the given state.
func NewDispatcher(indicators IndicatorSetter, hotkeys *hotkey.Registry, events EventBinder, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		indicators: indicators,
		hotkeys:    hotkeys,
		events:     events,
		logger:     logger,
	}
}

// HandleMessage is the command channel's delivery handler. A nil
// payload means the controller disconnected.
func (d *Dispatcher) HandleMessage(payload []byte) {
	if payload == nil {
		d.logger.Info("command channel peer disconnected")
		return
	}

	command, err := Decode(payload)
	if err != nil {
		var unknown *UnknownCommandError
		switch {
		case errors.As(err, &unknown):
			d.logger.Warn("unknown command", "command", unknown.Name, "name_length", unknown.NameLength)
		default:
			d.logger.Warn("malformed command", "length", len(payload), "error", err)
		}
		return
	}

	if err := d.Dispatch(command); err != nil {
		d.logger.Warn("command rejected", "command", command.Name(), "error", err)
	}
}

// Dispatch applies one command. The returned error describes anything
// that was not applied; state is untouched for everything the error
// covers.
func (d *Dispatcher) Dispatch(command Command) error {
	switch command := command.(type) {
	case IndicatorCommand:
		return d.setIndicator(command)
	case ForgeInfoCommand:
		return d.bindEvents(command)
	case UpdateSettingsCommand:
		return d.updateSettings(command)
	default:
		return fmt.Errorf("unhandled command type %T", command)
	}
}

func (d *Dispatcher) setIndicator(command IndicatorCommand) error {
	event, ok := indicator.Lookup(command.Indicator)
	if !ok {
		return fmt.Errorf("unknown indicator %q", command.Indicator)
	}
	d.indicators.SetCurrent(event)
	d.logger.Debug("indicator set", "indicator", command.Indicator)
	return nil
}

func (d *Dispatcher) bindEvents(command ForgeInfoCommand) error {
	if command.AnvilEvent == "" {
		return errors.New("anvil_event is empty")
	}
	if err := d.events.Bind(command.AnvilEvent); err != nil {
		return fmt.Errorf("binding event channel %q: %w", command.AnvilEvent, err)
	}
	return nil
}

// updateSettings validates every slot first, then stores the valid
// ones in a single registry transaction.
func (d *Dispatcher) updateSettings(command UpdateSettingsCommand) error {
	type pending struct {
		field   string
		slot    hotkey.Slot
		binding hotkey.Binding
	}
	var accepted []pending
	var errs []error

	for _, entry := range command.Keys {
		if entry.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Field, entry.Err))
			continue
		}
		binding, err := bindingFor(entry.Setting)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Field, err))
			continue
		}
		accepted = append(accepted, pending{field: entry.Field, slot: entry.Slot, binding: binding})
	}

	if len(accepted) > 0 {
		d.hotkeys.Update(func(tx *hotkey.Tx) {
			for _, entry := range accepted {
				tx.Set(entry.slot, entry.binding)
			}
		})
		for _, entry := range accepted {
			d.logger.Info("hotkey updated", "slot", entry.slot.String(), "binding", entry.binding.String())
		}
	}

	return errors.Join(errs...)
}

// bindingFor packs a slot setting, rejecting settings the registry
// cannot represent.
func bindingFor(setting KeySetting) (hotkey.Binding, error) {
	if setting.KeyCode == nil {
		return 0, errors.New("keycode missing")
	}
	if setting.Meta {
		return 0, errors.New("meta modifier is not supported")
	}
	keyCode := *setting.KeyCode
	if keyCode < 0 || keyCode > 0xFF {
		return 0, fmt.Errorf("keycode %d out of range 0-255", keyCode)
	}
	binding := hotkey.Pack(uint8(keyCode), setting.Shift, setting.Ctrl, setting.Alt)
	if binding == 0 {
		return 0, errors.New("binding has no key and no modifiers")
	}
	return binding, nil
}
