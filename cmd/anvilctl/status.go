// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/anvil/cmd/anvilctl/cli"
	"github.com/bureau-foundation/anvil/framebuffer"
	"github.com/bureau-foundation/anvil/host"
	"github.com/bureau-foundation/anvil/lib/codec"
)

func statusCommand() *cli.Command {
	var connection connectionFlags
	var outputJSON, raw bool
	return &cli.Command{
		Name:    "status",
		Summary: "Show the host's overlay state",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			connection.register(flagSet)
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			flagSet.BoolVar(&raw, "raw", false, "print the CBOR response in diagnostic notation")
			return flagSet
		},
		Run: func(args []string) error {
			client, err := connection.client()
			if err != nil {
				return err
			}
			if raw {
				ctx, cancel := contextWithTimeout()
				defer cancel()
				data, err := client.CallRaw(ctx, host.ActionStatus, nil)
				if err != nil {
					return err
				}
				text, err := codec.Diagnose(data)
				if err != nil {
					return fmt.Errorf("diagnosing response: %w", err)
				}
				fmt.Println(text)
				return nil
			}
			status, err := fetchStatus(client)
			if err != nil {
				return err
			}
			if outputJSON {
				return cli.WriteJSON(os.Stdout, status)
			}
			fmt.Print(newStatusView(cli.NewRenderer(os.Stdout)).render(status))
			return nil
		},
	}
}

// statusView renders a Status as a labelled block.
type statusView struct {
	label   lipgloss.Style
	value   lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	heading lipgloss.Style
}

func newStatusView(renderer *lipgloss.Renderer) statusView {
	return statusView{
		label:   renderer.NewStyle().Faint(true).Width(18),
		value:   renderer.NewStyle().Bold(true),
		good:    renderer.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		bad:     renderer.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		heading: renderer.NewStyle().Underline(true),
	}
}

func (v statusView) row(builder *strings.Builder, label, value string) {
	builder.WriteString(v.label.Render(label))
	builder.WriteString(value)
	builder.WriteByte('\n')
}

func (v statusView) render(status host.Status) string {
	var builder strings.Builder

	builder.WriteString(v.heading.Render(fmt.Sprintf("anvil host %d", status.ProcessID)))
	builder.WriteByte('\n')
	v.row(&builder, "version", status.Version)
	v.row(&builder, "command channel", v.value.Render(status.CommandChannel))
	eventChannel := status.EventChannel
	if eventChannel == "" {
		eventChannel = "(unbound)"
	}
	v.row(&builder, "event channel", v.value.Render(eventChannel))

	visibility := v.bad.Render("hidden")
	if status.Visible {
		visibility = v.good.Render("visible")
	}
	v.row(&builder, "overlay", visibility)
	v.row(&builder, "indicator", fmt.Sprintf("%s (%s, continuous %s)",
		v.value.Render(status.Indicator), status.Animation, status.Continuous))

	hooks := "not installed"
	if status.HooksInstalled {
		hooks = "installed"
	}
	v.row(&builder, "input hooks", hooks)

	fb := status.Framebuffer
	state := v.value.Render(string(fb.State))
	switch fb.State {
	case framebuffer.StateActive:
		state = v.good.Render(string(fb.State))
	case framebuffer.StateDied:
		state = v.bad.Render(string(fb.State))
	}
	v.row(&builder, "framebuffer", state)
	if fb.Name != "" {
		v.row(&builder, "  channel", fb.Name)
	}
	v.row(&builder, "  size", fmt.Sprintf("%dx%d", fb.Width, fb.Height))
	v.row(&builder, "  frames", fmt.Sprintf("%d accepted, %d rejected", fb.Accepted, fb.Rejected))
	v.row(&builder, "  restarts", fmt.Sprintf("%d", status.RelayRestarts))

	builder.WriteString(v.heading.Render("hotkeys"))
	builder.WriteByte('\n')
	slots := make([]string, 0, len(status.Hotkeys))
	for slot := range status.Hotkeys {
		slots = append(slots, slot)
	}
	slices.Sort(slots)
	for _, slot := range slots {
		v.row(&builder, "  "+slot, status.Hotkeys[slot])
	}
	return builder.String()
}
