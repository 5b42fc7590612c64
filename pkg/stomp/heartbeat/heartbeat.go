// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package heartbeat negotiates STOMP heart-beat intervals and runs the
// outgoing pinger and incoming watchdog for a connected session.
package heartbeat

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/absmach/stompws/pkg/stomp/frame"
	"github.com/absmach/stompws/pkg/ticker"
)

const (
	// DefaultGrace is the multiplier applied to the incoming interval
	// before a silent connection is declared dead.
	DefaultGrace = 2.5

	minGrace = 2.0
	maxGrace = 3.0
)

// Config holds one side's heart-beat proposal. Outgoing is the interval the
// side can send at, Incoming the interval it wants to receive at. Zero
// disables the direction.
type Config struct {
	Outgoing time.Duration
	Incoming time.Duration
}

// Disabled reports whether both directions are off.
func (c Config) Disabled() bool {
	return c.Outgoing == 0 && c.Incoming == 0
}

// String returns the heart-beat header value.
func (c Config) String() string {
	return frame.FormatHeartBeat(c.Outgoing, c.Incoming)
}

// Parse reads a heart-beat header value. An empty value means no heart-beats.
func Parse(value string) (Config, error) {
	if value == "" {
		return Config{}, nil
	}
	cx, cy, err := frame.ParseHeartBeat(value)
	if err != nil {
		return Config{}, err
	}
	return Config{Outgoing: cx, Incoming: cy}, nil
}

// Negotiate combines the local proposal with the one received in CONNECTED.
// A direction is enabled only when both sides accept it, and then runs at
// the slower of the two intervals.
func Negotiate(local, remote Config) Config {
	return Config{
		Outgoing: negotiate(local.Outgoing, remote.Incoming),
		Incoming: negotiate(local.Incoming, remote.Outgoing),
	}
}

func negotiate(a, b time.Duration) time.Duration {
	if a == 0 || b == 0 {
		return 0
	}
	if a > b {
		return a
	}
	return b
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithGrace sets the timeout multiplier, clamped to [2, 3].
func WithGrace(g float64) Option {
	return func(m *Monitor) {
		switch {
		case g < minGrace:
			g = minGrace
		case g > maxGrace:
			g = maxGrace
		}
		m.grace = g
	}
}

// WithTicker replaces the ticker factory.
func WithTicker(f ticker.Factory) Option {
	return func(m *Monitor) {
		m.newTicker = f
	}
}

// WithClock replaces the time source used by the watchdog.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// Monitor sends heart-beats and detects a silent peer for one session.
type Monitor struct {
	cfg       Config
	grace     float64
	newTicker ticker.Factory
	now       func() time.Time
	lastSeen  atomic.Int64
	done      chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
}

// NewMonitor creates a Monitor for the negotiated intervals.
func NewMonitor(cfg Config, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:       cfg,
		grace:     DefaultGrace,
		newTicker: ticker.NewTicker,
		now:       time.Now,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the negotiated intervals.
func (m *Monitor) Config() Config {
	return m.cfg
}

// Enabled reports whether any direction is active.
func (m *Monitor) Enabled() bool {
	return !m.cfg.Disabled()
}

// Timeout returns the silence after which the peer is considered dead.
func (m *Monitor) Timeout() time.Duration {
	return time.Duration(float64(m.cfg.Incoming) * m.grace)
}

// Start launches the pinger and the watchdog. ping is called every outgoing
// interval until it fails; timeout is called once when nothing was received
// for Timeout. Start does nothing for a disabled monitor and after the
// first call.
func (m *Monitor) Start(ping func() error, timeout func()) {
	m.startOnce.Do(func() {
		m.Received()
		if m.cfg.Outgoing > 0 {
			go m.pinger(m.newTicker(m.cfg.Outgoing), ping)
		}
		if m.cfg.Incoming > 0 {
			go m.watchdog(m.newTicker(m.cfg.Incoming), timeout)
		}
	})
}

// Received records that data arrived from the peer.
func (m *Monitor) Received() {
	m.lastSeen.Store(m.now().UnixNano())
}

// Stop signals both loops to exit. It does not wait for them.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
}

func (m *Monitor) pinger(t ticker.Ticker, ping func() error) {
	defer t.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-t.Tick():
			if err := ping(); err != nil {
				return
			}
		}
	}
}

func (m *Monitor) watchdog(t ticker.Ticker, timeout func()) {
	defer t.Stop()
	limit := m.Timeout()
	for {
		select {
		case <-m.done:
			return
		case <-t.Tick():
			last := time.Unix(0, m.lastSeen.Load())
			if m.now().Sub(last) > limit {
				select {
				case <-m.done:
				default:
					timeout()
				}
				return
			}
		}
	}
}
