// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/anvil/command"
	"github.com/bureau-foundation/anvil/framebuffer"
	"github.com/bureau-foundation/anvil/lib/codec"
	"github.com/bureau-foundation/anvil/lib/hotkey"
	"github.com/bureau-foundation/anvil/lib/service"
	"github.com/bureau-foundation/anvil/lib/version"
)

// Status socket action names.
const (
	ActionStatus = "status"
	ActionToggle = "toggle"
	ActionInject = "inject"
)

// Status is the snapshot returned by the status action and printed by
// anvilctl.
type Status struct {
	Version        string            `json:"version"`
	ProcessID      int               `json:"pid"`
	CommandChannel string            `json:"command_channel"`
	EventChannel   string            `json:"event_channel"`
	Visible        bool              `json:"visible"`
	Indicator      string            `json:"indicator"`
	Continuous     string            `json:"continuous"`
	Animation      string            `json:"animation"`
	Hotkeys        map[string]string `json:"hotkeys"`
	HooksInstalled bool              `json:"hooks_installed"`
	RelayRestarts  uint64            `json:"relay_restarts"`
	Framebuffer    framebuffer.Stats `json:"framebuffer"`
}

// InjectRequest carries a JSON command for the inject action.
type InjectRequest struct {
	Command string `cbor:"command"`
}

// InjectResult names the command the inject action applied.
type InjectResult struct {
	Command string `json:"command"`
}

// Status returns a snapshot of the overlay state.
func (h *Host) Status() Status {
	envelope := h.indicators.Envelope()
	bindings := h.registry.Snapshot()
	hotkeys := make(map[string]string, len(bindings))
	for slot, binding := range bindings {
		hotkeys[hotkey.Slot(slot).String()] = binding.String()
	}
	return Status{
		Version:        version.Info(),
		ProcessID:      h.processID,
		CommandChannel: h.commandName,
		EventChannel:   h.emitter.Bound(),
		Visible:        h.controller.Visible(),
		Indicator:      h.indicators.Current().String(),
		Continuous:     envelope.Continuous.String(),
		Animation:      envelope.Animation.String(),
		Hotkeys:        hotkeys,
		HooksInstalled: h.pipeline.Installed(),
		RelayRestarts:  h.controller.Restarts(),
		Framebuffer:    h.relay.Stats(),
	}
}

func (h *Host) registerStatusActions(server *service.SocketServer) {
	server.Handle(ActionStatus, func(ctx context.Context, raw []byte) (any, error) {
		return h.Status(), nil
	})

	server.Handle(ActionToggle, func(ctx context.Context, raw []byte) (any, error) {
		h.RequestToggle()
		return nil, nil
	})

	server.Handle(ActionInject, func(ctx context.Context, raw []byte) (any, error) {
		var request InjectRequest
		if err := codec.Unmarshal(raw, &request); err != nil {
			return nil, fmt.Errorf("decoding inject request: %w", err)
		}
		if request.Command == "" {
			return nil, errors.New("missing required field: command")
		}
		decoded, err := command.Decode([]byte(request.Command))
		if err != nil {
			return nil, err
		}
		if err := h.Dispatch(decoded); err != nil {
			return nil, err
		}
		return InjectResult{Command: decoded.Name()}, nil
	})
}
