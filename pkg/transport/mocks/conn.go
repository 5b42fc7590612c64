// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/absmach/stompws/pkg/errors"
	"github.com/absmach/stompws/pkg/stomp/frame"
	"github.com/absmach/stompws/pkg/transport"
)

// CloseEvent is the entry Conn appends to its log when closed.
const CloseEvent = "<close>"

var (
	_ transport.Conn = (*Conn)(nil)

	errNoFrame = errors.New("no frame sent before deadline")
)

// Conn is an in-memory connection. The test plays the server: it pushes
// messages the client receives and reads back what the client sent.
type Conn struct {
	mu       sync.Mutex
	log      []string
	sendErr  error
	sent     chan string
	incoming chan string
	failures chan error
	closed   chan struct{}
	once     sync.Once
}

// NewConn returns an open Conn.
func NewConn() *Conn {
	return &Conn{
		sent:     make(chan string, 1024),
		incoming: make(chan string, 1024),
		failures: make(chan error, 1),
		closed:   make(chan struct{}),
	}
}

func (c *Conn) Send(ctx context.Context, text string) error {
	select {
	case <-c.closed:
		return transport.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.log = append(c.log, text)
	c.sent <- text

	return nil
}

func (c *Conn) Receive(ctx context.Context) (string, error) {
	select {
	case msg := <-c.incoming:
		return msg, nil
	case err := <-c.failures:
		return "", err
	case <-c.closed:
		return "", transport.ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Conn) Close() error {
	c.once.Do(func() {
		c.mu.Lock()
		c.log = append(c.log, CloseEvent)
		c.mu.Unlock()
		close(c.closed)
	})
	return nil
}

// Push delivers a raw message to the client.
func (c *Conn) Push(text string) {
	c.incoming <- text
}

// PushFrame delivers an encoded frame to the client.
func (c *Conn) PushFrame(f *frame.Frame) {
	c.Push(string(frame.Encode(f)))
}

// Fail makes the pending or next Receive return err.
func (c *Conn) Fail(err error) {
	c.failures <- err
}

// RemoteClose simulates a clean close initiated by the server.
func (c *Conn) RemoteClose() {
	c.Fail(transport.ErrClosed)
}

// SetSendError makes every following Send fail with err.
func (c *Conn) SetSendError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

// NextFrame waits for the next message the client sent and decodes it.
// Heartbeats decode to a nil frame.
func (c *Conn) NextFrame(timeout time.Duration) (*frame.Frame, error) {
	select {
	case text := <-c.sent:
		return frame.Decode([]byte(text))
	case <-time.After(timeout):
		return nil, errNoFrame
	}
}

// Pending returns the number of sent messages not consumed by NextFrame.
func (c *Conn) Pending() int {
	return len(c.sent)
}

// Log returns every sent message in order, with CloseEvent marking Close.
func (c *Conn) Log() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.log...)
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
