// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// anvil-host runs the overlay core the way an injected host process
// would: it owns a simulated window, opens the command channel, and
// drives the render loop that reads the indicator and the latest
// browser frame once per tick.
//
// Pair it with anvil-browser-sim (the renderer side) and anvilctl
// (status socket) for an end-to-end session on one machine.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/anvil/channel"
	"github.com/bureau-foundation/anvil/host"
	"github.com/bureau-foundation/anvil/input"
	"github.com/bureau-foundation/anvil/input/gohook"
	"github.com/bureau-foundation/anvil/lib/clock"
	"github.com/bureau-foundation/anvil/lib/config"
	"github.com/bureau-foundation/anvil/lib/process"
	"github.com/bureau-foundation/anvil/lib/version"
	"github.com/bureau-foundation/anvil/overlay"
)

func main() {
	process.Exit(run())
}

func run() error {
	var configPath string
	var width, height, processID int
	var fps int
	var showVersion bool

	flagSet := pflag.NewFlagSet("anvil-host", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "config file (default: $ANVIL_CONFIG, else built-in defaults)")
	flagSet.IntVar(&width, "width", 1280, "simulated window client width")
	flagSet.IntVar(&height, "height", 720, "simulated window client height")
	flagSet.IntVar(&processID, "pid", 0, "process ID used in channel names (default: this process)")
	flagSet.IntVar(&fps, "fps", 60, "render loop frequency")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("anvil-host %s\n", version.Info())
		return nil
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", width, height)
	}
	if fps <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", fps)
	}

	loaded, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	backoff, _ := loaded.RestartBackoff()
	transient, _ := loaded.TransientDuration()
	compression, _ := channel.ParseCompression(loaded.Framebuffer.Compression)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: loaded.Level(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting anvil-host",
		"version", version.Info(),
		"runtime_dir", loaded.RuntimeDir,
		"window", fmt.Sprintf("%dx%d", width, height),
	)

	var backend input.Backend
	if loaded.Input.Hooks {
		backend = gohook.NewBackend(logger)
	}

	source := clock.Real()
	h, err := host.Init(logger, host.Config{
		Namespace:         channel.NewNamespace(loaded.RuntimeDir, logger),
		Window:            newWindow(width, height),
		ProcessID:         processID,
		Backend:           backend,
		Cursor:            overlay.NewSystemCursor(),
		Clock:             source,
		EventCompression:  compression,
		MinSizeHint:       loaded.Framebuffer.MinSizeHint,
		RestartBackoff:    backoff,
		TransientDuration: transient,
		StatusSocket:      loaded.StatusSocket,
	})
	if err != nil {
		return fmt.Errorf("initializing overlay host: %w", err)
	}
	defer h.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := newRenderLoop(h, source, logger)
	loop.run(ctx, time.Second/time.Duration(fps))

	stats := loop.stats()
	logger.Info("anvil-host stopping",
		"ticks", stats.Ticks,
		"frames", stats.Frames,
		"indicator", h.CurrentIndicator().String(),
	)
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
