// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package stomp

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/absmach/stompws/pkg/errors"
	"github.com/absmach/stompws/pkg/stomp/frame"
	"github.com/absmach/stompws/pkg/stomp/heartbeat"
	"github.com/absmach/stompws/pkg/transport"
)

// session is one connection attempt. All fields except done are guarded by
// client.mu; monitor is written only by the read loop.
type session struct {
	uri      string
	opts     ConnectOptions
	conn     transport.Conn
	monitor  *heartbeat.Monitor
	receipts map[string]chan error
	reading  bool
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func newSession(uri string, opts ConnectOptions) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		uri:      uri,
		opts:     opts,
		receipts: make(map[string]chan error),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// shutdown releases the session resources and fails pending receipts.
func (s *session) shutdown(cause error) {
	if s.monitor != nil {
		s.monitor.Stop()
	}
	s.cancel()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	for id, ch := range s.receipts {
		ch <- errors.Wrap(errors.ErrReceiptTimeout, cause)
		delete(s.receipts, id)
	}
}

func (c *client) writeLocked(ctx context.Context, s *session, f *frame.Frame) error {
	return s.conn.Send(ctx, string(frame.Encode(f)))
}

func (c *client) readLoop(s *session) {
	defer close(s.done)

	for {
		text, err := s.conn.Receive(s.ctx)
		if err != nil {
			c.receiveFailed(s, err)
			return
		}
		if s.monitor != nil {
			s.monitor.Received()
		}

		f, err := frame.Decode([]byte(text))
		if err != nil {
			c.fail(s, errors.Wrap(errors.ErrProtocol, err))
			return
		}
		if f == nil {
			continue
		}
		if !c.handle(s, f) {
			return
		}
	}
}

// handle processes one inbound frame and reports whether reading goes on.
func (c *client) handle(s *session, f *frame.Frame) bool {
	switch f.Command {
	case frame.CONNECTED:
		return c.connected(s, f)
	case frame.MESSAGE:
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.sess != s {
			return false
		}
		if c.state != Connected {
			c.logger.Warn(fmt.Sprintf("dropped MESSAGE received while %s", c.state))
			return true
		}
		c.registry.Dispatch(f)
		return true
	case frame.RECEIPT:
		c.receipt(s, f.Get(frame.ReceiptID))
		return true
	case frame.ERROR:
		msg := f.Get(frame.Message)
		if len(f.Body) > 0 {
			msg = strings.TrimSpace(msg + " " + string(f.Body))
		}
		c.fail(s, errors.Wrap(errors.ErrProtocol, fmt.Errorf("server ERROR: %s", msg)))
		return false
	default:
		c.logger.Warn(fmt.Sprintf("dropped unexpected %s frame from %s", f.Command, s.uri))
		return true
	}
}

func (c *client) connected(s *session, f *frame.Frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess != s {
		return false
	}
	if c.state != Connecting {
		c.logger.Warn(fmt.Sprintf("dropped duplicate CONNECTED from %s", s.uri))
		return true
	}

	remote, err := heartbeat.Parse(f.Get(frame.HeartBeat))
	if err != nil {
		c.failLocked(s, errors.Wrap(errors.ErrProtocol, err))
		return false
	}
	hb := heartbeat.Negotiate(s.opts.HeartBeat, remote)
	s.monitor = heartbeat.NewMonitor(hb, c.hbOpts...)
	c.state = Connected

	for _, sub := range c.registry.Entries() {
		if err := c.writeLocked(s.ctx, s, sub.frame()); err != nil {
			c.failLocked(s, errors.Wrap(errors.ErrTransport, err))
			return false
		}
	}

	s.monitor.Start(func() error {
		return c.ping(s)
	}, func() {
		c.heartbeatTimeout(s)
	})
	c.events.emit(EventOpened, nil)
	c.logger.Info(fmt.Sprintf("connected to %s with version %s, heart-beat %s, %d subscriptions restored", s.uri, f.Get(frame.Version), hb, c.registry.Len()))

	return true
}

func (c *client) receipt(s *session, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := s.receipts[id]
	if !ok {
		c.logger.Debug(fmt.Sprintf("ignored RECEIPT %s without waiter", id))
		return
	}
	delete(s.receipts, id)
	ch <- nil
}

func (c *client) ping(s *session) error {
	c.mu.Lock()
	if c.sess != s {
		c.mu.Unlock()
		return errors.ErrNotConnected
	}
	err := s.conn.Send(s.ctx, frame.Heartbeat)
	c.mu.Unlock()

	if err != nil {
		c.fail(s, errors.Wrap(errors.ErrTransport, err))
	}
	return err
}

func (c *client) heartbeatTimeout(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess != s {
		return
	}
	c.logger.Warn(fmt.Sprintf("no heart-beat from %s within %s", s.uri, s.monitor.Timeout()))
	c.events.emit(EventHeartbeatTimeout, nil)
	c.failLocked(s, errors.Wrap(errors.ErrTransport, errors.ErrHeartbeatTimeout))
}

func (c *client) receiveFailed(s *session, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess != s {
		return
	}
	if c.state == Connected && errors.Contains(err, transport.ErrClosed) {
		c.sess = nil
		c.state = Closed
		s.shutdown(err)
		c.registry.CloseAll()
		c.events.emit(EventClosed, nil)
		c.logger.Info(fmt.Sprintf("connection to %s closed by server", s.uri))
		return
	}
	c.failLocked(s, errors.Wrap(errors.ErrTransport, err))
}

func (c *client) fail(s *session, cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failLocked(s, cause)
}

// failLocked moves a live session to Failed. Subscriptions are kept for the
// next connect.
func (c *client) failLocked(s *session, cause error) {
	if c.sess != s {
		return
	}
	c.sess = nil
	c.state = Failed
	s.shutdown(cause)
	c.events.emit(EventError, cause)
	c.logger.Error(fmt.Sprintf("session to %s failed: %s", s.uri, cause))
}

func hostOf(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
