// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package indicator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/anvil/lib/clock"
)

// OpaqueAlpha is the alpha reported to Show callbacks. Fades and
// pulsing are computed by the renderer from the envelope.
const OpaqueAlpha uint8 = 255

// DefaultTransientDuration is how long a transient event is shown
// before the renderer is expected to revert to the continuous event.
const DefaultTransientDuration = 3 * time.Second

// Envelope is the state layered on top of the current event.
type Envelope struct {
	Event      Event
	Continuous Event
	Animation  Animation
	Start      time.Time
	Stop       time.Time // zero for continuous events
	LastUpdate time.Time
}

// Machine holds the current indicator event. The current event is a
// single atomic cell so the per-frame read never takes a lock; the
// envelope sits behind its own mutex.
type Machine struct {
	clock             clock.Clock
	transientDuration time.Duration

	current atomic.Int32

	mu       sync.Mutex
	envelope Envelope
}

// NewMachine returns a machine showing None. A non-positive
// transientDuration selects DefaultTransientDuration.
func NewMachine(source clock.Clock, transientDuration time.Duration) *Machine {
	if transientDuration <= 0 {
		transientDuration = DefaultTransientDuration
	}
	machine := &Machine{
		clock:             source,
		transientDuration: transientDuration,
		envelope: Envelope{
			Event:      None,
			Continuous: None,
			Animation:  Hide,
		},
	}
	machine.current.Store(int32(None))
	return machine
}

// SetCurrent makes event the current indicator and restarts the
// envelope. Continuous events also become the revert target.
func (m *Machine) SetCurrent(event Event) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(event, now)
}

// setLocked applies event to the envelope and the lock-free cell. The
// caller holds m.mu, so Current and Envelope().Event never disagree
// once the lock is released.
func (m *Machine) setLocked(event Event, now time.Time) {
	m.envelope.Event = event
	m.envelope.Start = now
	m.envelope.LastUpdate = now
	m.envelope.Stop = time.Time{}
	switch {
	case event == None:
		m.envelope.Animation = Hide
		m.envelope.Continuous = None
	case event.Transient():
		m.envelope.Animation = Show
		m.envelope.Stop = now.Add(m.transientDuration)
	default:
		m.envelope.Animation = Show
		m.envelope.Continuous = event
	}
	m.current.Store(int32(event))
}

// Current returns the current event.
func (m *Machine) Current() Event {
	return Event(m.current.Load())
}

// Show calls fn with the current event and full opacity. The renderer
// calls this once per frame.
func (m *Machine) Show(fn func(event Event, alpha uint8)) {
	fn(m.Current(), OpaqueAlpha)
}

// Envelope returns a copy of the current envelope.
func (m *Machine) Envelope() Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.envelope
}

// SetAnimation records the renderer's animation phase and stamps the
// last-update time.
func (m *Machine) SetAnimation(animation Animation) {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.envelope.Animation = animation
	m.envelope.LastUpdate = now
}

// RevertToContinuous replaces an expired transient event with the
// remembered continuous event. It returns the event now current; a
// continuous current event is left alone. The check and the revert
// share one critical section, so an event set concurrently by the
// command thread is never overwritten with a stale continuous event.
func (m *Machine) RevertToContinuous() Event {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.envelope.Event
	if !current.Transient() {
		return current
	}
	continuous := m.envelope.Continuous
	m.setLocked(continuous, now)
	return continuous
}
