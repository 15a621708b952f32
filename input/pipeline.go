// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package input

import (
	"fmt"
	"log/slog"
	"sync"
)

// Pipeline owns the installed hook set.
type Pipeline struct {
	backend Backend
	sink    Sink
	logger  *slog.Logger

	mutex sync.Mutex
	hook  Hook
}

// NewPipeline returns a pipeline that installs sink through backend.
// A nil backend disables hooking; Install then does nothing.
func NewPipeline(backend Backend, sink Sink, logger *slog.Logger) *Pipeline {
	return &Pipeline{backend: backend, sink: sink, logger: logger}
}

// Install installs the hooks unless they already are.
func (p *Pipeline) Install() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.hook != nil || p.backend == nil {
		return nil
	}
	hook, err := p.backend.Install(p.sink)
	if err != nil {
		return fmt.Errorf("installing input hooks: %w", err)
	}
	p.hook = hook
	p.logger.Info("input hooks installed")
	return nil
}

// Uninstall releases the hooks if installed.
func (p *Pipeline) Uninstall() {
	p.mutex.Lock()
	hook := p.hook
	p.hook = nil
	p.mutex.Unlock()

	if hook == nil {
		return
	}
	hook.Release()
	p.logger.Info("input hooks released")
}

// Installed reports whether hooks are installed.
func (p *Pipeline) Installed() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.hook != nil
}
