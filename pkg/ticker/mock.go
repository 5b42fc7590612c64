// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package ticker

import (
	"sync"
	"time"
)

var _ Ticker = (*Mock)(nil)

// Mock is a ticker that only fires when Fire is called.
type Mock struct {
	Interval time.Duration
	c        chan time.Time
	mu       sync.Mutex
	stopped  bool
}

// NewMock returns a manual ticker for the interval d.
func NewMock(d time.Duration) *Mock {
	return &Mock{Interval: d, c: make(chan time.Time)}
}

func (m *Mock) Tick() <-chan time.Time {
	return m.c
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

// Stopped reports whether Stop was called.
func (m *Mock) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Fire delivers t and blocks until the consumer receives it.
func (m *Mock) Fire(t time.Time) {
	m.c <- t
}

// MockFactory records every ticker it creates, keyed by interval.
type MockFactory struct {
	mu      sync.Mutex
	tickers map[time.Duration]*Mock
}

// NewMockFactory returns an empty MockFactory.
func NewMockFactory() *MockFactory {
	return &MockFactory{tickers: make(map[time.Duration]*Mock)}
}

// New satisfies Factory.
func (f *MockFactory) New(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := NewMock(d)
	f.tickers[d] = m
	return m
}

// Get returns the ticker created for d, or nil.
func (f *MockFactory) Get(d time.Duration) *Mock {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[d]
}

// Len returns the number of tickers created.
func (f *MockFactory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}
