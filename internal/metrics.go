// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package internal

import (
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// MakeMetrics returns the request counter and latency histogram registered
// under namespace and subsystem, both labelled by method.
//
//	counter, latency := internal.MakeMetrics("stomp", "client")
func MakeMetrics(namespace, subsystem string) (*kitprometheus.Counter, *kitprometheus.Histogram) {
	counter := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_count",
		Help:      "Number of client requests.",
	}, []string{"method"})
	latency := kitprometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_latency_seconds",
		Help:      "Duration of client requests in seconds.",
		Buckets:   stdprometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"method"})

	return counter, latency
}

// MakeEventCounter returns a counter of session lifecycle events labelled by
// event type.
func MakeEventCounter(namespace, subsystem string) *kitprometheus.Counter {
	return kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "lifecycle_events_total",
		Help:      "Number of session lifecycle events.",
	}, []string{"event"})
}
