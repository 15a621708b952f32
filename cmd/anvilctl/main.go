// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// anvilctl inspects and drives a running overlay host through its
// status socket, and plays the renderer's side of the event channel
// for debugging.
package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/anvil/cmd/anvilctl/cli"
	"github.com/bureau-foundation/anvil/lib/process"
	"github.com/bureau-foundation/anvil/lib/version"
)

func main() {
	process.Exit(run())
}

func run() error {
	return root().Execute(os.Args[1:])
}

func root() *cli.Command {
	return &cli.Command{
		Name:        "anvilctl",
		Description: "Inspect and drive a running overlay host.",
		Subcommands: []*cli.Command{
			statusCommand(),
			watchCommand(),
			toggleCommand(),
			indicatorCommand(),
			sendCommand(),
			listenCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Println(version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{Description: "Show the overlay state of the local host", Command: "anvilctl status"},
			{Description: "Show a capturing indicator", Command: "anvilctl indicator capturing"},
			{Description: "Replay a command script", Command: "anvilctl send commands.jsonc"},
		},
	}
}
