// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/absmach/stompws/pkg/stomp"
)

var _ stomp.Client = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	client stomp.Client
}

// LoggingMiddleware adds logging facilities to the STOMP client.
func LoggingMiddleware(client stomp.Client, logger *slog.Logger) stomp.Client {
	return &loggingMiddleware{logger, client}
}

// Connect logs the connect request. It logs the URI and the time it took to
// complete the request.
func (lm *loggingMiddleware) Connect(ctx context.Context, uri string, opts stomp.ConnectOptions) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("uri", uri),
			slog.String("heart_beat", opts.HeartBeat.String()),
		}
		if err != nil {
			args = append(args, slog.String("error", err.Error()))
			lm.logger.Warn("Connect failed", args...)
			return
		}
		lm.logger.Info("Connect completed successfully", args...)
	}(time.Now())

	return lm.client.Connect(ctx, uri, opts)
}

func (lm *loggingMiddleware) Disconnect(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
		}
		if err != nil {
			args = append(args, slog.String("error", err.Error()))
			lm.logger.Warn("Disconnect failed", args...)
			return
		}
		lm.logger.Info("Disconnect completed successfully", args...)
	}(time.Now())

	return lm.client.Disconnect(ctx)
}

// Subscribe logs the subscribe request. It logs the destination and the
// subscription id when the request succeeds.
func (lm *loggingMiddleware) Subscribe(ctx context.Context, destination string, opts ...stomp.SubscribeOption) (sub *stomp.Subscription, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("destination", destination),
		}
		if err != nil {
			args = append(args, slog.String("error", err.Error()))
			lm.logger.Warn("Subscribe failed", args...)
			return
		}
		if sub != nil {
			args = append(args, slog.String("id", sub.ID()))
		}
		lm.logger.Info("Subscribe completed successfully", args...)
	}(time.Now())

	return lm.client.Subscribe(ctx, destination, opts...)
}

func (lm *loggingMiddleware) Unsubscribe(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("id", id),
		}
		if err != nil {
			args = append(args, slog.String("error", err.Error()))
			lm.logger.Warn("Unsubscribe failed", args...)
			return
		}
		lm.logger.Info("Unsubscribe completed successfully", args...)
	}(time.Now())

	return lm.client.Unsubscribe(ctx, id)
}

func (lm *loggingMiddleware) Send(ctx context.Context, destination string, payload []byte, opts ...stomp.SendOption) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("destination", destination),
			slog.Int("size", len(payload)),
		}
		if err != nil {
			args = append(args, slog.String("error", err.Error()))
			lm.logger.Warn(fmt.Sprintf("Send to %s failed", destination), args...)
			return
		}
		lm.logger.Debug(fmt.Sprintf("Send to %s completed successfully", destination), args...)
	}(time.Now())

	return lm.client.Send(ctx, destination, payload, opts...)
}

func (lm *loggingMiddleware) Lifecycle() <-chan stomp.LifecycleEvent {
	return lm.client.Lifecycle()
}

func (lm *loggingMiddleware) State() stomp.State {
	return lm.client.State()
}

func (lm *loggingMiddleware) Close() (err error) {
	defer func() {
		if err != nil {
			lm.logger.Warn("Close failed", slog.String("error", err.Error()))
			return
		}
		lm.logger.Info("Client closed")
	}()

	return lm.client.Close()
}
