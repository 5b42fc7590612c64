// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"time"

	"github.com/absmach/stompws/pkg/stomp"
	"github.com/go-kit/kit/metrics"
)

var _ stomp.Client = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	client  stomp.Client
}

// MetricsMiddleware instruments the STOMP client by tracking request count
// and latency.
func MetricsMiddleware(client stomp.Client, counter metrics.Counter, latency metrics.Histogram) stomp.Client {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		client:  client,
	}
}

func (mm *metricsMiddleware) Connect(ctx context.Context, uri string, opts stomp.ConnectOptions) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "connect").Add(1)
		mm.latency.With("method", "connect").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.client.Connect(ctx, uri, opts)
}

func (mm *metricsMiddleware) Disconnect(ctx context.Context) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "disconnect").Add(1)
		mm.latency.With("method", "disconnect").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.client.Disconnect(ctx)
}

func (mm *metricsMiddleware) Subscribe(ctx context.Context, destination string, opts ...stomp.SubscribeOption) (*stomp.Subscription, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "subscribe").Add(1)
		mm.latency.With("method", "subscribe").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.client.Subscribe(ctx, destination, opts...)
}

func (mm *metricsMiddleware) Unsubscribe(ctx context.Context, id string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "unsubscribe").Add(1)
		mm.latency.With("method", "unsubscribe").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.client.Unsubscribe(ctx, id)
}

func (mm *metricsMiddleware) Send(ctx context.Context, destination string, payload []byte, opts ...stomp.SendOption) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "send").Add(1)
		mm.latency.With("method", "send").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.client.Send(ctx, destination, payload, opts...)
}

func (mm *metricsMiddleware) Lifecycle() <-chan stomp.LifecycleEvent {
	return mm.client.Lifecycle()
}

func (mm *metricsMiddleware) State() stomp.State {
	return mm.client.State()
}

func (mm *metricsMiddleware) Close() error {
	return mm.client.Close()
}
