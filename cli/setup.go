// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"
	"sync"

	"github.com/absmach/stompws/internal"
	"github.com/absmach/stompws/internal/server"
	httpserver "github.com/absmach/stompws/internal/server/http"
	"github.com/absmach/stompws/logger"
	"github.com/absmach/stompws/pkg/stomp"
	"github.com/absmach/stompws/pkg/stomp/api"
	"github.com/absmach/stompws/pkg/stomp/tracing"
	"github.com/absmach/stompws/pkg/transport"
	"github.com/absmach/stompws/ws"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-kit/kit/metrics"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

const svcName = "stomp-cli"

var (
	dialer transport.Dialer

	metricsOnce sync.Once
	counter     metrics.Counter
	latency     metrics.Histogram
	events      metrics.Counter
)

// SetDialer sets the dialer used by the commands. The websocket dialer built
// from the configuration is used when none is set.
func SetDialer(d transport.Dialer) {
	dialer = d
}

type app struct {
	cfg    Config
	opts   stomp.ConnectOptions
	logger *slog.Logger
	client stomp.Client
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := LoadConfig(nil)
	if err != nil {
		return nil, err
	}
	applyOverrides(&cfg)

	log, err := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.ConnectOptions()
	if err != nil {
		return nil, err
	}
	ids, err := cfg.IDs()
	if err != nil {
		return nil, err
	}

	d := dialer
	if d == nil {
		d = ws.NewDialer(cfg.Dialer)
	}
	metricsOnce.Do(func() {
		counter, latency = internal.MakeMetrics("stomp", "client")
		events = internal.MakeEventCounter("stomp", "client")
	})

	client := stomp.New(d, log, stomp.WithIDProvider(ids))
	client = api.LoggingMiddleware(client, log)
	client = api.MetricsMiddleware(client, counter, latency)
	client = tracing.New(otel.Tracer(svcName), client)

	return &app{cfg: cfg, opts: opts, logger: log, client: client}, nil
}

func applyOverrides(cfg *Config) {
	if URI != "" {
		cfg.URI = URI
	}
	if Room != "" {
		cfg.Room = Room
	}
	if User != "" {
		cfg.User = User
	}
	if Token != "" {
		cfg.Token = Token
	}
}

func (a *app) runner(p *Printer) *Runner {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = a.cfg.ReconnectMax
	bo.MaxElapsedTime = 0

	return &Runner{
		Client:       a.client,
		URI:          a.cfg.URI,
		Options:      a.opts,
		Destinations: Destinations(a.cfg),
		BackOff:      bo,
		Events:       events,
		Printer:      p,
		Logger:       a.logger,
	}
}

// serve runs fn next to the metrics server, when a metrics port is
// configured, until fn returns or a stop signal arrives.
func (a *app) serve(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	var servers []server.Server
	if a.cfg.Metrics.Port != "" {
		hs := httpserver.New(ctx, cancel, svcName, a.cfg.Metrics, httpserver.MakeHandler(svcName), a.logger)
		servers = append(servers, hs)
		g.Go(hs.Start)
	}
	g.Go(func() error {
		defer cancel()
		return fn(ctx)
	})
	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, a.logger, svcName, servers...)
	})

	return g.Wait()
}
