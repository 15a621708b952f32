// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/anvil/channel"
	"github.com/bureau-foundation/anvil/cmd/anvilctl/cli"
	"github.com/bureau-foundation/anvil/host"
)

func listenCommand() *cli.Command {
	var connection connectionFlags
	var channelName, runtimeDir string
	var bindPID int
	var outputJSON bool
	return &cli.Command{
		Name:    "listen",
		Summary: "Receive the host's browser events",
		Description: "Listen on an event channel and print every event the host sends.\n" +
			"With --bind, first tell the host (by process ID) to send its events here.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("listen", pflag.ContinueOnError)
			connection.register(flagSet)
			flagSet.StringVar(&channelName, "channel", "AnvilEventsCtl", "event channel name to listen on")
			flagSet.StringVar(&runtimeDir, "runtime-dir", "", "channel directory (default: runtime_dir from config)")
			flagSet.IntVar(&bindPID, "bind", 0, "host process ID to bind with forge_info")
			flagSet.BoolVar(&outputJSON, "json", false, "print raw JSON lines without colour")
			return flagSet
		},
		Run: func(args []string) error {
			if runtimeDir == "" {
				loaded, err := connection.loadConfig()
				if err != nil {
					return err
				}
				runtimeDir = loaded.RuntimeDir
			}
			logger := cli.NewCommandLogger(slog.LevelWarn)
			namespace := channel.NewNamespace(runtimeDir, logger)

			printer := &eventPrinter{
				output:    os.Stdout,
				highlight: !outputJSON && cli.IsTerminal(os.Stdout),
			}
			server, err := namespace.Listen(channelName, printer.handle, 0)
			if err != nil {
				return err
			}
			defer server.Close()

			if bindPID != 0 {
				if err := bindEvents(namespace, bindPID, channelName); err != nil {
					return err
				}
			}
			fmt.Fprintf(os.Stderr, "listening on %s\n", namespace.Address(channelName))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}
}

// bindEvents sends forge_info to a host's command channel.
func bindEvents(namespace *channel.Namespace, processID int, eventChannel string) error {
	client, err := namespace.Open(host.CommandChannelName(processID), channel.CompressionNone)
	if err != nil {
		return err
	}
	defer client.Close()
	payload, err := json.Marshal(map[string]string{"command": "forge_info", "anvil_event": eventChannel})
	if err != nil {
		return err
	}
	if !client.Write(payload) {
		return errors.New("host command channel is not reachable")
	}
	return nil
}

// eventPrinter writes one event per line.
type eventPrinter struct {
	mutex     sync.Mutex
	output    io.Writer
	highlight bool
}

func (p *eventPrinter) handle(payload []byte) {
	if payload == nil {
		return
	}
	var line bytes.Buffer
	if err := json.Compact(&line, payload); err != nil {
		line.Reset()
		fmt.Fprintf(&line, "(not JSON, %d bytes) %q", len(payload), payload)
	}
	text := line.String()
	if p.highlight {
		text = cli.HighlightJSON(text)
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()
	fmt.Fprintln(p.output, text)
}
