// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package stomp

import "sync"

// mailbox is an unbounded FIFO drained into a channel by one goroutine, so
// producers never block on slow consumers.
type mailbox[T any] struct {
	mu     sync.Mutex
	queue  []T
	closed bool
	drain  bool
	notify chan struct{}
	done   chan struct{}
	exited chan struct{}
	out    chan T
}

func newMailbox[T any]() *mailbox[T] {
	m := &mailbox[T]{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		out:    make(chan T),
	}
	go m.pump()
	return m
}

// put enqueues v. It reports false once the mailbox is closed.
func (m *mailbox[T]) put(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, v)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return true
}

// close discards pending values, closes the output channel and waits for
// the pump to exit.
func (m *mailbox[T]) close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		<-m.exited
		return
	}
	m.closed = true
	m.queue = nil
	m.mu.Unlock()

	close(m.done)
	<-m.exited
}

// closeAfterDrain stops accepting values and closes the output channel
// once the queued values were received.
func (m *mailbox[T]) closeAfterDrain() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.drain = true

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox[T]) pump() {
	defer close(m.exited)
	defer close(m.out)

	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			drained := m.drain
			m.mu.Unlock()
			if drained {
				return
			}
			select {
			case <-m.notify:
				continue
			case <-m.done:
				return
			}
		}
		var zero T
		v := m.queue[0]
		m.queue[0] = zero
		m.queue = m.queue[1:]
		m.mu.Unlock()

		select {
		case m.out <- v:
		case <-m.done:
			return
		}
	}
}
