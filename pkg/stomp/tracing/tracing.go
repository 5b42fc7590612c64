// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package tracing provides tracing instrumentation for the STOMP session
// client.
package tracing

import (
	"context"

	"github.com/absmach/stompws/pkg/stomp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ stomp.Client = (*tracingMiddleware)(nil)

// Traced operations.
const (
	connectOP     = "connect_op"
	disconnectOP  = "disconnect_op"
	subscribeOP   = "subscribe_op"
	unsubscribeOP = "unsubscribe_op"
	sendOP        = "send_op"
)

type tracingMiddleware struct {
	tracer trace.Tracer
	client stomp.Client
}

// New returns a new STOMP client with tracing capabilities.
func New(tracer trace.Tracer, client stomp.Client) stomp.Client {
	return &tracingMiddleware{
		tracer: tracer,
		client: client,
	}
}

func (tm *tracingMiddleware) Connect(ctx context.Context, uri string, opts stomp.ConnectOptions) error {
	ctx, span := tm.tracer.Start(ctx, connectOP, trace.WithAttributes(
		attribute.String("uri", uri),
		attribute.String("heart_beat", opts.HeartBeat.String()),
	))
	defer span.End()

	return record(span, tm.client.Connect(ctx, uri, opts))
}

func (tm *tracingMiddleware) Disconnect(ctx context.Context) error {
	ctx, span := tm.tracer.Start(ctx, disconnectOP)
	defer span.End()

	return record(span, tm.client.Disconnect(ctx))
}

func (tm *tracingMiddleware) Subscribe(ctx context.Context, destination string, opts ...stomp.SubscribeOption) (*stomp.Subscription, error) {
	ctx, span := tm.tracer.Start(ctx, subscribeOP, trace.WithAttributes(
		attribute.String("destination", destination),
	))
	defer span.End()

	sub, err := tm.client.Subscribe(ctx, destination, opts...)
	if sub != nil {
		span.SetAttributes(attribute.String("subscription", sub.ID()))
	}
	return sub, record(span, err)
}

func (tm *tracingMiddleware) Unsubscribe(ctx context.Context, id string) error {
	ctx, span := tm.tracer.Start(ctx, unsubscribeOP, trace.WithAttributes(
		attribute.String("subscription", id),
	))
	defer span.End()

	return record(span, tm.client.Unsubscribe(ctx, id))
}

func (tm *tracingMiddleware) Send(ctx context.Context, destination string, payload []byte, opts ...stomp.SendOption) error {
	ctx, span := tm.tracer.Start(ctx, sendOP, trace.WithAttributes(
		attribute.String("destination", destination),
		attribute.Int("size", len(payload)),
	))
	defer span.End()

	return record(span, tm.client.Send(ctx, destination, payload, opts...))
}

func (tm *tracingMiddleware) Lifecycle() <-chan stomp.LifecycleEvent {
	return tm.client.Lifecycle()
}

func (tm *tracingMiddleware) State() stomp.State {
	return tm.client.State()
}

func (tm *tracingMiddleware) Close() error {
	return tm.client.Close()
}

func record(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
