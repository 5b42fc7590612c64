// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package stomp

import (
	"sync"
	"time"
)

// EventType classifies lifecycle events.
type EventType uint8

const (
	// EventOpened is emitted when CONNECTED was received.
	EventOpened EventType = iota + 1
	// EventError carries the cause of a failed session.
	EventError
	// EventClosed is emitted once a session is closed.
	EventClosed
	// EventHeartbeatTimeout is emitted before the EventError caused by a
	// silent server.
	EventHeartbeatTimeout
)

var eventNames = map[EventType]string{
	EventOpened:           "opened",
	EventError:            "error",
	EventClosed:           "closed",
	EventHeartbeatTimeout: "heartbeat_timeout",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return "unknown"
}

// LifecycleEvent reports a session transition.
type LifecycleEvent struct {
	Type EventType
	Err  error
	Time time.Time
}

// eventBus fans every event out to all listeners in emission order.
type eventBus struct {
	mu        sync.Mutex
	listeners []*mailbox[LifecycleEvent]
	closed    bool
	now       func() time.Time
}

func newEventBus() *eventBus {
	return &eventBus{now: time.Now}
}

func (b *eventBus) subscribe() <-chan LifecycleEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := newMailbox[LifecycleEvent]()
	if b.closed {
		m.close()
		return m.out
	}
	b.listeners = append(b.listeners, m)
	return m.out
}

func (b *eventBus) emit(t EventType, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	ev := LifecycleEvent{Type: t, Err: err, Time: b.now()}
	for _, l := range b.listeners {
		l.put(ev)
	}
}

// close lets listeners drain pending events, then closes their channels.
func (b *eventBus) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, l := range b.listeners {
		l.closeAfterDrain()
	}
	b.listeners = nil
}
