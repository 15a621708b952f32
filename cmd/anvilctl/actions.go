// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/anvil/cmd/anvilctl/cli"
)

func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), callTimeout)
}

func toggleCommand() *cli.Command {
	var connection connectionFlags
	return &cli.Command{
		Name:        "toggle",
		Summary:     "Show or hide the overlay",
		Description: "Queue an overlay toggle. The host performs it on its next input tick.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("toggle", pflag.ContinueOnError)
			connection.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			client, err := connection.client()
			if err != nil {
				return err
			}
			return requestToggle(client)
		},
	}
}

func indicatorCommand() *cli.Command {
	var connection connectionFlags
	return &cli.Command{
		Name:        "indicator",
		Summary:     "Set the status indicator",
		Description: "Set the status indicator. The name may be abbreviated; it is matched fuzzily against the indicator vocabulary.",
		Usage:       "anvilctl indicator <name> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("indicator", pflag.ContinueOnError)
			connection.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one indicator name")
			}
			name, err := resolveIndicator(args[0])
			if err != nil {
				return err
			}
			client, err := connection.client()
			if err != nil {
				return err
			}
			payload, err := json.Marshal(map[string]string{"command": "indicator", "indicator": name})
			if err != nil {
				return err
			}
			if _, err := inject(client, string(payload)); err != nil {
				return err
			}
			fmt.Println(name)
			return nil
		},
	}
}

func sendCommand() *cli.Command {
	var connection connectionFlags
	var stopOnError bool
	return &cli.Command{
		Name:    "send",
		Summary: "Apply commands from a JSONC script",
		Description: "Read one command object, or an array of them, from a file (or - for stdin)\n" +
			"and apply each in order as if it had arrived from the renderer.\n" +
			"Comments and trailing commas are allowed.",
		Usage: "anvilctl send <file|-> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("send", pflag.ContinueOnError)
			connection.register(flagSet)
			flagSet.BoolVar(&stopOnError, "stop-on-error", false, "stop at the first rejected command")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return errors.New("expected a script path or -")
			}
			data, err := readScript(args[0])
			if err != nil {
				return err
			}
			commands, err := parseScript(data)
			if err != nil {
				return err
			}
			client, err := connection.client()
			if err != nil {
				return err
			}

			failed := 0
			for index, command := range commands {
				result, err := inject(client, command)
				if err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "command %d: %v\n", index+1, err)
					if stopOnError {
						break
					}
					continue
				}
				fmt.Printf("command %d: %s applied\n", index+1, result.Command)
			}
			if failed > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func readScript(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return data, nil
}

// parseScript converts a JSONC script to a list of compact command
// objects.
func parseScript(data []byte) ([]string, error) {
	plain := jsonc.ToJSON(data)
	trimmed := strings.TrimSpace(string(plain))
	if trimmed == "" {
		return nil, errors.New("script is empty")
	}

	var raws []json.RawMessage
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(plain, &raws); err != nil {
			return nil, fmt.Errorf("parsing script: %w", err)
		}
	} else {
		var single json.RawMessage
		if err := json.Unmarshal(plain, &single); err != nil {
			return nil, fmt.Errorf("parsing script: %w", err)
		}
		raws = []json.RawMessage{single}
	}

	commands := make([]string, 0, len(raws))
	for index, raw := range raws {
		var object map[string]json.RawMessage
		if err := json.Unmarshal(raw, &object); err != nil {
			return nil, fmt.Errorf("command %d is not an object: %w", index+1, err)
		}
		compact, err := json.Marshal(object)
		if err != nil {
			return nil, err
		}
		commands = append(commands, string(compact))
	}
	return commands, nil
}
