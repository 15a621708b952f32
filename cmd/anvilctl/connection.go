// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/anvil/host"
	"github.com/bureau-foundation/anvil/lib/config"
	"github.com/bureau-foundation/anvil/lib/service"
)

const callTimeout = 5 * time.Second

// connectionFlags locate the host's status socket.
type connectionFlags struct {
	socket     string
	configPath string
}

func (f *connectionFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.socket, "socket", "", "status socket path (default: status_socket from config)")
	flagSet.StringVar(&f.configPath, "config", "", "config file (default: $ANVIL_CONFIG)")
}

func (f *connectionFlags) loadConfig() (*config.Config, error) {
	var loaded *config.Config
	var err error
	if f.configPath != "" {
		loaded, err = config.LoadFile(f.configPath)
	} else {
		loaded, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := loaded.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return loaded, nil
}

func (f *connectionFlags) client() (*service.Client, error) {
	if f.socket != "" {
		return service.NewClient(f.socket), nil
	}
	loaded, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	if loaded.StatusSocket == "" {
		return nil, errors.New("status socket disabled in config; pass --socket")
	}
	return service.NewClient(loaded.StatusSocket), nil
}

func fetchStatus(client *service.Client) (host.Status, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	var status host.Status
	err := client.Call(ctx, host.ActionStatus, nil, &status)
	return status, err
}

func inject(client *service.Client, commandJSON string) (host.InjectResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	var result host.InjectResult
	err := client.Call(ctx, host.ActionInject, map[string]any{"command": commandJSON}, &result)
	return result, err
}

func requestToggle(client *service.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return client.Call(ctx, host.ActionToggle, nil, nil)
}
