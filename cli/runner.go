// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/absmach/stompws/pkg/codec"
	"github.com/absmach/stompws/pkg/errors"
	"github.com/absmach/stompws/pkg/stomp"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-kit/kit/metrics"
)

var (
	errReconnect   = errors.New("gave up reconnecting")
	errSessionDown = errors.New("session closed before CONNECTED")
)

// Runner keeps a session open until its context ends. It subscribes to
// Destinations, prints what arrives and reconnects with backoff after a
// failure or a remote close.
type Runner struct {
	Client       stomp.Client
	URI          string
	Options      stomp.ConnectOptions
	Destinations []string
	BackOff      backoff.BackOff
	Events       metrics.Counter
	Printer      *Printer
	Logger       *slog.Logger

	wg         sync.WaitGroup
	subscribed map[string]bool
}

// Run blocks until ctx is done or reconnecting is given up, then closes the
// client.
func (r *Runner) Run(ctx context.Context) error {
	events := r.Client.Lifecycle()
	defer func() {
		if err := r.Client.Close(); err != nil {
			r.Logger.Warn(fmt.Sprintf("failed to close client: %s", err))
		}
		r.wg.Wait()
	}()
	r.subscribed = make(map[string]bool)
	r.BackOff.Reset()

	if err := r.connect(ctx); err != nil {
		return err
	}

	var retry <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-retry:
			retry = nil
			if err := r.connect(ctx); err != nil {
				return err
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.Events.With("event", ev.Type.String()).Add(1)
			r.Printer.Status(ev)
			switch ev.Type {
			case stomp.EventOpened:
				r.BackOff.Reset()
				continue
			case stomp.EventHeartbeatTimeout:
				continue
			case stomp.EventClosed:
				r.subscribed = make(map[string]bool)
			}
			if ctx.Err() != nil {
				return nil
			}
			d := r.BackOff.NextBackOff()
			if d == backoff.Stop {
				return errors.Wrap(errReconnect, ev.Err)
			}
			r.Logger.Info(fmt.Sprintf("reconnecting to %s in %s", r.URI, d))
			retry = time.After(d)
		}
	}
}

// connect starts a connection attempt. Transport failures are reported as
// lifecycle events and retried from there.
func (r *Runner) connect(ctx context.Context) error {
	if err := r.Client.Connect(ctx, r.URI, r.Options); err != nil {
		if errors.Contains(err, errors.ErrTransport) {
			return nil
		}
		return err
	}

	for _, dest := range r.Destinations {
		if r.subscribed[dest] {
			continue
		}
		sub, err := r.Client.Subscribe(ctx, dest, stomp.WithEnvelope())
		switch {
		case errors.Contains(err, errors.ErrNotConnected), errors.Contains(err, errors.ErrTransport):
			return nil
		case err != nil:
			return err
		}
		r.subscribed[dest] = true
		r.wg.Add(1)
		go r.consume(sub)
	}

	return nil
}

func (r *Runner) consume(sub *stomp.Subscription) {
	defer r.wg.Done()
	for msg := range sub.C() {
		if msg.Err != nil {
			r.Printer.Error(errors.Wrap(fmt.Errorf("message on %s", msg.Destination), msg.Err))
			continue
		}
		r.Printer.Message(msg)
	}
}

// Publish connects, sends payload to destination with a receipt and
// disconnects.
func Publish(ctx context.Context, client stomp.Client, uri string, opts stomp.ConnectOptions, destination string, v any) error {
	c := codec.JSON()
	payload, err := c.Encode(v)
	if err != nil {
		return err
	}
	events := client.Lifecycle()
	defer client.Close()

	if err := client.Connect(ctx, uri, opts); err != nil {
		return err
	}
	if err := awaitOpened(ctx, events); err != nil {
		return err
	}
	if err := client.Send(ctx, destination, payload, stomp.WithContentType(c.ContentType()), stomp.WithReceipt()); err != nil {
		return err
	}

	return client.Disconnect(ctx)
}

func awaitOpened(ctx context.Context, events <-chan stomp.LifecycleEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return errSessionDown
			}
			switch ev.Type {
			case stomp.EventOpened:
				return nil
			case stomp.EventError:
				return ev.Err
			case stomp.EventClosed:
				return errSessionDown
			}
		}
	}
}

// SendLines sends every non-empty line of in as a chat message to
// destination. Lines typed while the session is down are reported and
// skipped. It returns at the end of in.
func SendLines(ctx context.Context, client stomp.Client, destination string, in io.Reader, p *Printer) error {
	c := codec.JSON()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if client.State() != stomp.Connected {
			p.Skipped(line)
			continue
		}
		payload, err := c.Encode(ChatMessageReq{Message: line})
		if err != nil {
			return err
		}
		if err := client.Send(ctx, destination, payload, stomp.WithContentType(c.ContentType())); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.Error(err)
		}
	}

	return scanner.Err()
}
