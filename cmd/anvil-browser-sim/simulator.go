// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/anvil/channel"
	"github.com/bureau-foundation/anvil/event"
)

// frameWriter is the framebuffer side of a channel client.
type frameWriter interface {
	Write(payload []byte) bool
	Close() error
}

// simulator plays the external renderer: it answers show_browser by
// streaming frames to the announced framebuffer channel and stops on
// hide_browser.
type simulator struct {
	open          func(name string) (frameWriter, error)
	frameInterval time.Duration
	logger        *slog.Logger

	mutex  sync.Mutex
	stream *frameStream
	counts map[string]int
}

type frameStream struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

func newSimulator(open func(name string) (frameWriter, error), frameInterval time.Duration, logger *slog.Logger) *simulator {
	return &simulator{
		open:          open,
		frameInterval: frameInterval,
		logger:        logger,
		counts:        make(map[string]int),
	}
}

// handle is the event channel handler.
func (s *simulator) handle(payload []byte) {
	if payload == nil {
		s.logger.Info("host disconnected from event channel")
		return
	}

	var header struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(payload, &header); err != nil {
		s.logger.Warn("discarding malformed event", "error", err, "length", len(payload))
		return
	}

	s.mutex.Lock()
	s.counts[header.Event]++
	s.mutex.Unlock()

	switch header.Event {
	case event.NameShowBrowser:
		var message event.ShowBrowser
		if err := json.Unmarshal(payload, &message); err != nil {
			s.logger.Warn("discarding malformed show_browser", "error", err)
			return
		}
		if err := s.show(message); err != nil {
			s.logger.Error("starting frame stream", "channel", message.FramebufferServer, "error", err)
		}

	case event.NameHideBrowser:
		s.hide()

	case event.NameCreateBookmark:
		s.logger.Info("bookmark requested")

	case event.NameKeyEvent:
		var message event.KeyEvent
		if err := json.Unmarshal(payload, &message); err == nil {
			s.logger.Debug("key event", "type", message.Type, "keycode", message.KeyCode, "system", message.System)
		}

	case event.NameMouseEvent:
		var message event.MouseEvent
		if err := json.Unmarshal(payload, &message); err == nil {
			s.logger.Debug("mouse event", "x", message.X, "y", message.Y, "wparam", fmt.Sprintf("0x%04x", message.WParam))
		}

	default:
		s.logger.Warn("unknown event", "event", header.Event)
	}
}

// show replaces any running stream with one feeding message's channel.
func (s *simulator) show(message event.ShowBrowser) error {
	if message.Width <= 0 || message.Height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", message.Width, message.Height)
	}
	if err := channel.ValidateName(message.FramebufferServer); err != nil {
		return err
	}
	writer, err := s.open(message.FramebufferServer)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	stream := &frameStream{name: message.FramebufferServer, cancel: cancel, done: make(chan struct{})}
	s.stream = stream
	go s.produce(ctx, stream, writer, message.Width, message.Height)

	s.logger.Info("streaming frames",
		"channel", message.FramebufferServer,
		"width", message.Width,
		"height", message.Height,
	)
	return nil
}

func (s *simulator) hide() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stream != nil {
		s.logger.Info("stopping frame stream", "channel", s.stream.name)
	}
	s.stopLocked()
}

func (s *simulator) stopLocked() {
	if s.stream == nil {
		return
	}
	s.stream.cancel()
	<-s.stream.done
	s.stream = nil
}

// Close stops any running stream.
func (s *simulator) Close() {
	s.hide()
}

// streaming returns the framebuffer channel currently fed, if any.
func (s *simulator) streaming() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stream == nil {
		return ""
	}
	return s.stream.name
}

func (s *simulator) received(name string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.counts[name]
}

func (s *simulator) produce(ctx context.Context, stream *frameStream, writer frameWriter, width, height int) {
	defer close(stream.done)
	defer writer.Close()

	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	frame := make([]byte, width*height*4)
	var sequence uint64
	var dropped int
	for {
		paintFrame(frame, width, height, sequence)
		if writer.Write(frame) {
			if s.logger.Enabled(ctx, slog.LevelDebug) {
				digest := blake3.Sum256(frame)
				s.logger.Debug("sent frame",
					"sequence", sequence,
					"blake3", hex.EncodeToString(digest[:8]),
				)
			}
			dropped = 0
		} else {
			dropped++
			if dropped == 1 {
				s.logger.Warn("framebuffer channel not accepting frames", "channel", stream.name)
			}
		}
		sequence++

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// paintFrame fills frame with a BGRA gradient that scrolls with
// sequence, so consecutive frames differ.
func paintFrame(frame []byte, width, height int, sequence uint64) {
	shift := int(sequence)
	for y := 0; y < height; y++ {
		row := frame[y*width*4 : (y+1)*width*4]
		for x := 0; x < width; x++ {
			pixel := row[x*4 : x*4+4]
			pixel[0] = byte(x + shift)
			pixel[1] = byte(y + shift)
			pixel[2] = byte((x + y) / 2)
			pixel[3] = 0xff
		}
	}
}
