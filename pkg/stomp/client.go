// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package stomp implements a STOMP client session over a text transport.
//
// A Client owns at most one live session. Connect opens the transport and
// sends CONNECT; the Opened lifecycle event reports CONNECTED. Every
// subscription registered while a session is live is re-sent, with the
// same id and in subscribe order, after each successful connect. Nothing is
// retried automatically: callers watch Lifecycle and decide when to
// reconnect.
package stomp

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/absmach/stompws"
	"github.com/absmach/stompws/pkg/errors"
	"github.com/absmach/stompws/pkg/stomp/frame"
	"github.com/absmach/stompws/pkg/stomp/heartbeat"
	"github.com/absmach/stompws/pkg/transport"
	"github.com/absmach/stompws/pkg/uuid"
)

const closeTimeout = 5 * time.Second

var (
	// ErrClientClosed indicates the client was closed with Close.
	ErrClientClosed = errors.New("client closed")

	// ErrReservedHeader indicates a subscribe header that the client owns.
	// Use WithID for a custom subscription id.
	ErrReservedHeader = errors.New("reserved subscribe header")
)

// Client is the public API of a STOMP session.
//
//go:generate mockery --name Client --output=./mocks --filename client.go --quiet --note "Copyright (c) Abstract Machines"
type Client interface {
	// Connect opens the transport and sends CONNECT. It fails with
	// ErrAlreadyConnected while a session is connecting or connected.
	Connect(ctx context.Context, uri string, opts ConnectOptions) error

	// Disconnect sends DISCONNECT, closes the transport and all
	// subscription channels. It is a no-op without a session.
	Disconnect(ctx context.Context) error

	// Subscribe registers destination. The SUBSCRIBE frame is sent now when
	// connected, or on CONNECTED when connecting.
	Subscribe(ctx context.Context, destination string, opts ...SubscribeOption) (*Subscription, error)

	// Unsubscribe removes the subscription and closes its channel.
	Unsubscribe(ctx context.Context, id string) error

	// Send writes a SEND frame. It returns once the transport accepted the
	// write, or once the receipt arrived when WithReceipt is used.
	Send(ctx context.Context, destination string, payload []byte, opts ...SendOption) error

	// Lifecycle returns a new channel receiving every following event.
	Lifecycle() <-chan LifecycleEvent

	// State returns the current session state.
	State() State

	// Close disconnects and closes all lifecycle channels.
	Close() error
}

var _ Client = (*client)(nil)

type client struct {
	mu       sync.Mutex
	state    State
	sess     *session
	closed   bool
	dialer   transport.Dialer
	ids      stompws.IDProvider
	hbOpts   []heartbeat.Option
	registry *Registry
	events   *eventBus
	logger   *slog.Logger
}

// New returns a Client dialing through dialer.
func New(dialer transport.Dialer, logger *slog.Logger, opts ...Option) Client {
	c := &client{
		state:    Disconnected,
		dialer:   dialer,
		ids:      uuid.New(),
		registry: NewRegistry(logger),
		events:   newEventBus(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) Connect(ctx context.Context, uri string, opts ConnectOptions) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	if c.state.Live() {
		c.mu.Unlock()
		return errors.ErrAlreadyConnected
	}
	s := newSession(uri, opts)
	c.sess = s
	c.state = Connecting
	c.mu.Unlock()

	conn, err := c.dialer.Dial(ctx, uri, opts.Handshake)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != s {
		if conn != nil {
			_ = conn.Close()
		}
		return errors.Wrap(errors.ErrNotConnected, fmt.Errorf("session to %s ended while dialing", uri))
	}
	if err != nil {
		err = errors.Wrap(errors.ErrTransport, err)
		c.failLocked(s, err)
		return err
	}
	s.conn = conn
	if err := c.writeLocked(ctx, s, connectFrame(uri, opts)); err != nil {
		err = errors.Wrap(errors.ErrTransport, err)
		c.failLocked(s, err)
		return err
	}
	s.reading = true
	go c.readLoop(s)
	c.logger.Info(fmt.Sprintf("sent CONNECT to %s", uri))

	return nil
}

func (c *client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case Disconnected, Closed:
		c.mu.Unlock()
		return nil
	case Failed:
		c.state = Closed
		c.registry.CloseAll()
		c.events.emit(EventClosed, nil)
		c.mu.Unlock()
		return nil
	}

	s := c.sess
	reading := s.reading
	if c.state == Connected {
		if err := c.writeLocked(ctx, s, frame.New(frame.DISCONNECT)); err != nil {
			c.logger.Warn(fmt.Sprintf("failed to send DISCONNECT to %s: %s", s.uri, err))
		}
	}
	c.sess = nil
	c.state = Closed
	s.shutdown(errors.ErrNotConnected)
	c.registry.CloseAll()
	c.events.emit(EventClosed, nil)
	c.mu.Unlock()

	c.logger.Info(fmt.Sprintf("disconnected from %s", s.uri))
	if !reading {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *client) Subscribe(ctx context.Context, destination string, opts ...SubscribeOption) (*Subscription, error) {
	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, h := range cfg.headers {
		if h.Key == frame.ID || h.Key == frame.Destination {
			return nil, errors.Wrap(ErrReservedHeader, fmt.Errorf("header %s", h.Key))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Live() {
		return nil, errors.ErrNotConnected
	}

	id := cfg.id
	if id == "" {
		var err error
		if id, err = c.ids.ID(); err != nil {
			return nil, err
		}
	}
	sub := newSubscription(id, destination, cfg)
	if err := c.registry.Add(sub); err != nil {
		sub.box.close()
		return nil, err
	}

	if c.state == Connected {
		s := c.sess
		if err := c.writeLocked(ctx, s, sub.frame()); err != nil {
			_ = c.registry.Remove(id)
			err = errors.Wrap(errors.ErrTransport, err)
			c.failLocked(s, err)
			return nil, err
		}
	}

	return sub, nil
}

func (c *client) Unsubscribe(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.registry.Get(id); !ok {
		return errors.Wrap(errors.ErrNotSubscribed, fmt.Errorf("id %s", id))
	}
	var werr error
	if c.state == Connected {
		s := c.sess
		if err := c.writeLocked(ctx, s, frame.New(frame.UNSUBSCRIBE, frame.ID, id)); err != nil {
			werr = errors.Wrap(errors.ErrTransport, err)
			c.failLocked(s, werr)
		}
	}
	if err := c.registry.Remove(id); err != nil {
		return err
	}

	return werr
}

func (c *client) Send(ctx context.Context, destination string, payload []byte, opts ...SendOption) error {
	var cfg sendConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	f := frame.New(frame.SEND, frame.Destination, destination)
	if cfg.contentType != "" {
		f.Headers.Set(frame.ContentType, cfg.contentType)
	}
	for _, h := range cfg.headers {
		f.Headers.Set(h.Key, h.Value)
	}
	f.Headers.Set(frame.ContentLength, strconv.Itoa(len(payload)))
	f.Body = payload

	c.mu.Lock()
	if c.state != Connected {
		c.mu.Unlock()
		return errors.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		c.mu.Unlock()
		return err
	}
	s := c.sess

	var wait chan error
	var receipt string
	if cfg.receipt {
		id, err := c.ids.ID()
		if err != nil {
			c.mu.Unlock()
			return err
		}
		receipt = id
		f.Headers.Set(frame.Receipt, receipt)
		wait = make(chan error, 1)
		s.receipts[receipt] = wait
	}

	err := c.writeLocked(ctx, s, f)
	c.mu.Unlock()

	if err != nil {
		err = errors.Wrap(errors.ErrTransport, err)
		c.fail(s, err)
		return err
	}
	if wait == nil {
		return nil
	}

	select {
	case err := <-wait:
		return err
	case <-ctx.Done():
		c.mu.Lock()
		delete(s.receipts, receipt)
		c.mu.Unlock()
		return errors.Wrap(errors.ErrReceiptTimeout, ctx.Err())
	}
}

func (c *client) Lifecycle() <-chan LifecycleEvent {
	return c.events.subscribe()
}

func (c *client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	err := c.Disconnect(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.events.close()

	return err
}

func connectFrame(uri string, opts ConnectOptions) *frame.Frame {
	host := opts.Host
	if host == "" {
		host = hostOf(uri)
	}
	f := frame.New(frame.CONNECT,
		frame.AcceptVersion, stompws.ProtocolVersions,
		frame.Host, host,
		frame.HeartBeat, opts.HeartBeat.String(),
	)
	for _, h := range opts.Headers {
		f.Headers.Set(h.Key, h.Value)
	}
	return f
}
