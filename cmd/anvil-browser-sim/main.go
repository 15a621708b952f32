// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// anvil-browser-sim stands in for the external browser renderer. It
// binds its event channel to a running anvil-host, pushes hotkey
// settings and an indicator, and streams synthetic frames whenever the
// host shows the overlay.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/anvil/channel"
	"github.com/bureau-foundation/anvil/event"
	"github.com/bureau-foundation/anvil/host"
	"github.com/bureau-foundation/anvil/lib/config"
	"github.com/bureau-foundation/anvil/lib/process"
	"github.com/bureau-foundation/anvil/lib/version"
)

func main() {
	process.Exit(run())
}

type options struct {
	configPath      string
	hostPID         int
	eventChannel    string
	fps             int
	indicator       string
	overlayKeyCode  int
	bookmarkKeyCode int
	showVersion     bool
}

func run() error {
	var opts options
	flagSet := pflag.NewFlagSet("anvil-browser-sim", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "config file (default: $ANVIL_CONFIG, else built-in defaults)")
	flagSet.IntVar(&opts.hostPID, "pid", 0, "process ID of the anvil-host to drive (required)")
	flagSet.StringVar(&opts.eventChannel, "event-channel", "", "event channel name (default: AnvilEvents<own pid>)")
	flagSet.IntVar(&opts.fps, "fps", 30, "frames per second while the overlay is visible")
	flagSet.StringVar(&opts.indicator, "indicator", "enabled_hotkey", "indicator to set after binding; empty to skip")
	flagSet.IntVar(&opts.overlayKeyCode, "overlay-keycode", 0x78, "virtual key bound with ctrl to toggle the overlay; 0 to skip")
	flagSet.IntVar(&opts.bookmarkKeyCode, "bookmark-keycode", 0x79, "virtual key bound with alt to create a bookmark; 0 to skip")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if opts.showVersion {
		fmt.Printf("anvil-browser-sim %s\n", version.Info())
		return nil
	}
	if opts.hostPID <= 0 {
		return fmt.Errorf("--pid is required")
	}
	if opts.fps <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", opts.fps)
	}
	if opts.eventChannel == "" {
		opts.eventChannel = fmt.Sprintf("AnvilEvents%d", os.Getpid())
	}

	loaded, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	compression, _ := channel.ParseCompression(loaded.Framebuffer.Compression)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: loaded.Level(),
	}))
	slog.SetDefault(logger)

	namespace := channel.NewNamespace(loaded.RuntimeDir, logger)
	sim := newSimulator(func(name string) (frameWriter, error) {
		client, err := namespace.Open(name, compression)
		if err != nil {
			return nil, err
		}
		return client, nil
	}, time.Second/time.Duration(opts.fps), logger)
	defer sim.Close()

	server, err := namespace.Listen(opts.eventChannel, sim.handle, 0)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", opts.eventChannel, err)
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands, err := openCommandChannel(namespace, opts.hostPID)
	if err != nil {
		return err
	}
	defer commands.Close()

	logger.Info("starting anvil-browser-sim",
		"version", version.Info(),
		"host_pid", opts.hostPID,
		"event_channel", opts.eventChannel,
		"compression", compression.String(),
	)
	if err := bind(ctx, commands, setupCommands(opts), logger); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("anvil-browser-sim stopping",
		"show_browser", sim.received(event.NameShowBrowser),
		"hide_browser", sim.received(event.NameHideBrowser),
	)
	return nil
}

func openCommandChannel(namespace *channel.Namespace, hostPID int) (*channel.Client, error) {
	name := host.CommandChannelName(hostPID)
	commands, err := namespace.Open(name, channel.CompressionNone)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return commands, nil
}

// setupCommands returns the commands sent once the host is reachable:
// forge_info first, then hotkeys and the indicator.
func setupCommands(opts options) [][]byte {
	var commands []map[string]any
	commands = append(commands, map[string]any{
		"command":     "forge_info",
		"anvil_event": opts.eventChannel,
	})

	settings := map[string]any{"command": "update_settings"}
	if opts.overlayKeyCode != 0 {
		settings["highlight_key"] = map[string]any{"keycode": opts.overlayKeyCode, "ctrl": true}
	}
	if opts.bookmarkKeyCode != 0 {
		settings["bookmark_key"] = map[string]any{"keycode": opts.bookmarkKeyCode, "alt": true}
	}
	if len(settings) > 1 {
		commands = append(commands, settings)
	}
	if opts.indicator != "" {
		commands = append(commands, map[string]any{"command": "indicator", "indicator": opts.indicator})
	}

	encoded := make([][]byte, 0, len(commands))
	for _, command := range commands {
		data, err := json.Marshal(command)
		if err != nil {
			panic(fmt.Sprintf("encoding setup command: %v", err))
		}
		encoded = append(encoded, data)
	}
	return encoded
}

// commandWriter is the command side of a channel client.
type commandWriter interface {
	Write(payload []byte) bool
}

// bind sends commands, retrying once a second until the host's command
// channel accepts the first one.
func bind(ctx context.Context, commands commandWriter, payloads [][]byte, logger *slog.Logger) error {
	if len(payloads) == 0 {
		return nil
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for attempt := 1; !commands.Write(payloads[0]); attempt++ {
		if attempt == 1 {
			logger.Info("waiting for host command channel")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	for _, payload := range payloads[1:] {
		if !commands.Write(payload) {
			return fmt.Errorf("host command channel closed during setup")
		}
	}
	logger.Info("bound to host")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	var loaded *config.Config
	var err error
	if path != "" {
		loaded, err = config.LoadFile(path)
	} else {
		loaded, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return loaded, nil
}
