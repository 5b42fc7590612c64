// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package ws

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/absmach/stompws/pkg/transport"
	"github.com/gorilla/websocket"
)

const (
	closeGracePeriod = time.Second

	// DefaultWriteTimeout bounds writes when no positive timeout is set.
	DefaultWriteTimeout = 10 * time.Second
)

var _ transport.Conn = (*Client)(nil)

// Client wraps a websocket connection as a transport.Conn.
type Client struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
	closed       atomic.Bool
	once         sync.Once
}

// NewClient returns a new Client for an established connection.
// A non-positive writeTimeout is replaced by DefaultWriteTimeout, so every
// write has a deadline even under a context without one.
func NewClient(c *websocket.Conn, writeTimeout time.Duration) *Client {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Client{
		conn:         c,
		writeTimeout: writeTimeout,
	}
}

// Send writes text as a single websocket text message.
func (c *Client) Send(ctx context.Context, text string) error {
	if c.closed.Load() {
		return transport.ErrClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(c.deadline(ctx)); err != nil {
		return c.mapErr(err)
	}
	return c.mapErr(c.conn.WriteMessage(websocket.TextMessage, []byte(text)))
}

// Receive reads the next text or binary message. A deadline on ctx becomes
// the read deadline; cancellation without a deadline is served by Close.
func (c *Client) Receive(ctx context.Context) (string, error) {
	deadline, _ := ctx.Deadline()
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return "", c.mapErr(err)
	}
	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", c.mapErr(err)
		}
		if typ == websocket.TextMessage || typ == websocket.BinaryMessage {
			return string(data), nil
		}
	}
}

// Close sends a normal close message and closes the connection.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.closed.Store(true)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		err = c.conn.Close()
	})
	return err
}

func (c *Client) deadline(ctx context.Context) time.Time {
	deadline, ok := ctx.Deadline()
	timeout := time.Now().Add(c.writeTimeout)
	if !ok || timeout.Before(deadline) {
		return timeout
	}
	return deadline
}

func (c *Client) mapErr(err error) error {
	if err == nil {
		return nil
	}
	if c.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return transport.ErrClosed
	}
	return err
}
