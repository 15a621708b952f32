// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/anvil/channel"
	"github.com/bureau-foundation/anvil/command"
	"github.com/bureau-foundation/anvil/event"
	"github.com/bureau-foundation/anvil/framebuffer"
	"github.com/bureau-foundation/anvil/input"
	"github.com/bureau-foundation/anvil/lib/clock"
	"github.com/bureau-foundation/anvil/lib/hotkey"
	"github.com/bureau-foundation/anvil/lib/indicator"
	"github.com/bureau-foundation/anvil/lib/service"
	"github.com/bureau-foundation/anvil/overlay"
)

// CommandChannelName returns the command channel name for a process.
func CommandChannelName(processID int) string {
	return fmt.Sprintf("AnvilRenderer%d", processID)
}

// Window is the host window the overlay draws into.
type Window interface {
	ClientSize() (width, height int)
	ScreenToClient(x, y int32) (clientX, clientY int32, ok bool)
}

// Config holds the host's collaborators and tunables.
type Config struct {
	Namespace *channel.Namespace
	Window    Window

	// ProcessID names the channels; os.Getpid() when zero.
	ProcessID int

	// Backend installs global input hooks on the first tick. Nil
	// when the host feeds input through Keyboard and Sink.
	Backend input.Backend

	Cursor overlay.Cursor // system cursor when nil
	Clock  clock.Clock    // real clock when nil

	// EventCompression is applied to outbound browser events.
	EventCompression channel.Compression

	MinSizeHint       int
	RestartBackoff    time.Duration
	TransientDuration time.Duration

	// StatusSocket is the status socket path; empty disables it.
	StatusSocket string
}

type resetHook struct {
	name string
	fn   func()
}

// Host is the overlay core running inside a host process.
type Host struct {
	logger      *slog.Logger
	processID   int
	commandName string

	registry   *hotkey.Registry
	indicators *indicator.Machine
	emitter    *event.Emitter
	dispatcher *command.Dispatcher
	relay      *framebuffer.Relay
	controller *overlay.Controller
	keyboard   *input.Keyboard
	hotkeys    *input.HotkeyTracker
	router     *input.Router
	pipeline   *input.Pipeline

	commandServer *channel.Server

	statusCancel context.CancelFunc
	statusDone   chan struct{}

	hooksFailed atomic.Bool

	resetMutex sync.Mutex
	resets     []resetHook

	shutdownOnce sync.Once
}

// Init builds the overlay core and starts listening for commands.
func Init(logger *slog.Logger, config Config) (*Host, error) {
	if config.Namespace == nil {
		return nil, errors.New("host: namespace is required")
	}
	if config.Window == nil {
		return nil, errors.New("host: window is required")
	}
	processID := config.ProcessID
	if processID == 0 {
		processID = os.Getpid()
	}
	source := config.Clock
	if source == nil {
		source = clock.Real()
	}
	namespace := config.Namespace

	h := &Host{
		logger:      logger,
		processID:   processID,
		commandName: CommandChannelName(processID),
		registry:    hotkey.NewRegistry(),
		indicators:  indicator.NewMachine(source, config.TransientDuration),
	}

	h.emitter = event.NewEmitter(func(name string) (event.Sender, error) {
		client, err := namespace.Open(name, config.EventCompression)
		if err != nil {
			return nil, err
		}
		return client, nil
	}, logger)

	h.dispatcher = command.NewDispatcher(h.indicators, h.registry, h.emitter, logger)

	h.relay = framebuffer.NewRelay(framebuffer.Config{
		Listen: func(name string, handler func(payload []byte), sizeHint int) (io.Closer, error) {
			server, err := namespace.Listen(name, handler, sizeHint)
			if err != nil {
				return nil, err
			}
			return server, nil
		},
		Window:      config.Window,
		ProcessID:   processID,
		MinSizeHint: config.MinSizeHint,
		Logger:      logger,
	})

	h.controller = overlay.NewController(overlay.Config{
		Relay:          h.relay,
		Notifier:       h.emitter,
		Cursor:         config.Cursor,
		Clock:          source,
		RestartBackoff: config.RestartBackoff,
		Logger:         logger,
	})

	h.hotkeys = input.NewHotkeyTracker(h.registry)
	h.keyboard = input.NewKeyboard(h.controller, h.hotkeys.Observe)
	h.router = input.NewRouter(h.controller, config.Window, h.emitter, h.keyboard, logger)
	h.pipeline = input.NewPipeline(config.Backend, h.router, logger)

	server, err := namespace.Listen(h.commandName, h.dispatcher.HandleMessage, 0)
	if err != nil {
		return nil, fmt.Errorf("opening command channel: %w", err)
	}
	h.commandServer = server

	if config.StatusSocket != "" {
		if err := h.startStatusSocket(config.StatusSocket); err != nil {
			server.Close()
			return nil, err
		}
	}

	logger.Info("overlay host initialized",
		"pid", processID,
		"command_channel", h.commandName,
		"status_socket", config.StatusSocket,
	)
	return h, nil
}

func (h *Host) startStatusSocket(path string) error {
	server := service.NewSocketServer(path, h.logger)
	h.registerStatusActions(server)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	failed := make(chan error, 1)
	go func() {
		defer close(done)
		if err := server.Serve(ctx); err != nil {
			failed <- err
		}
	}()

	select {
	case <-server.Ready():
	case err := <-failed:
		cancel()
		<-done
		return fmt.Errorf("starting status socket: %w", err)
	}
	h.statusCancel = cancel
	h.statusDone = done
	return nil
}

// Shutdown hides the overlay and closes every channel. Later calls do
// nothing.
func (h *Host) Shutdown() {
	h.shutdownOnce.Do(func() {
		if h.statusCancel != nil {
			h.statusCancel()
			<-h.statusDone
		}
		h.pipeline.Uninstall()
		h.controller.Hide()
		h.relay.Stop()
		if err := h.commandServer.Close(); err != nil {
			h.logger.Debug("closing command channel", "error", err)
		}
		h.emitter.Close()
		h.logger.Info("overlay host shut down")
	})
}

// RegisterReset adds a function Reset calls, typically one per
// graphics API hook that owns device resources.
func (h *Host) RegisterReset(name string, fn func()) {
	h.resetMutex.Lock()
	defer h.resetMutex.Unlock()
	h.resets = append(h.resets, resetHook{name: name, fn: fn})
}

// Reset releases the input hooks and runs every registered reset
// function. The hooks are installed again on the next tick.
func (h *Host) Reset() {
	h.pipeline.Uninstall()
	h.hooksFailed.Store(false)
	h.keyboard.Reset()
	h.hotkeys.Reset()

	h.resetMutex.Lock()
	resets := slices.Clone(h.resets)
	h.resetMutex.Unlock()

	for _, reset := range resets {
		h.logger.Debug("running reset hook", "name", reset.name)
		reset.fn()
	}
}

// ProcessInputTick does the per-frame work on the render thread:
// installs hooks on first use, restarts a dead framebuffer relay,
// forwards queued keys to the renderer, and runs queued hotkeys and
// toggles.
func (h *Host) ProcessInputTick() {
	h.installHooks()
	h.controller.Recover()

	for _, key := range h.keyboard.Drain() {
		h.emitter.KeyEvent(key.Type, key.Code, key.System)
	}
	input.DispatchHotkeys(h.hotkeys.Drain(), h)
	h.controller.ServeRequests()
}

func (h *Host) installHooks() {
	if h.hooksFailed.Load() {
		return
	}
	if err := h.pipeline.Install(); err != nil {
		h.hooksFailed.Store(true)
		h.logger.Warn("input hooks unavailable", "error", err)
	}
}

// CurrentIndicator returns the indicator event to draw.
func (h *Host) CurrentIndicator() indicator.Event {
	return h.indicators.Current()
}

// ShowCurrentIndicator calls fn with the indicator event to draw and
// its alpha. Renderers that draw the indicator each frame use this
// form; fn runs on the caller's goroutine before it returns.
func (h *Host) ShowCurrentIndicator(fn func(event indicator.Event, alpha uint8)) {
	h.indicators.Show(fn)
}

// Indicators returns the indicator machine for the renderer's
// animation and revert timers.
func (h *Host) Indicators() *indicator.Machine {
	return h.indicators
}

// Hotkey returns the binding stored for slot.
func (h *Host) Hotkey(slot hotkey.Slot) hotkey.Binding {
	return h.registry.Get(slot)
}

// ReadLatestFramebuffer returns the newest complete frame, or false
// when there is none since the last call. The slice is valid until the
// next call.
func (h *Host) ReadLatestFramebuffer() ([]byte, bool) {
	return h.relay.ReadLatest()
}

// FramebufferDimensions returns the size frames are expected at.
func (h *Host) FramebufferDimensions() (width, height int) {
	return h.relay.Dimensions()
}

// ToggleOverlay shows or hides the overlay immediately. Call it from
// the render thread; other goroutines use RequestToggle.
func (h *Host) ToggleOverlay() {
	h.controller.Toggle()
}

// RequestToggle queues a toggle for the next ProcessInputTick.
func (h *Host) RequestToggle() {
	h.controller.RequestToggle()
}

// CreateBookmark asks the renderer to bookmark the current moment.
func (h *Host) CreateBookmark() {
	h.emitter.CreateBookmark()
}

// OverlayVisible reports whether the overlay is shown.
func (h *Host) OverlayVisible() bool {
	return h.controller.Visible()
}

// Keyboard returns the keyboard state for hosts that see key
// messages in their own window procedure.
func (h *Host) Keyboard() *input.Keyboard {
	return h.keyboard
}

// Sink returns the input sink for hosts that see mouse messages in
// their own window procedure.
func (h *Host) Sink() input.Sink {
	return h.router
}

// Dispatch applies a command in-process, as if it had arrived on the
// command channel.
func (h *Host) Dispatch(cmd command.Command) error {
	return h.dispatcher.Dispatch(cmd)
}

// CommandChannel returns the command channel name.
func (h *Host) CommandChannel() string {
	return h.commandName
}
