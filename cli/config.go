// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"time"

	"github.com/absmach/stompws"
	"github.com/absmach/stompws/internal/env"
	"github.com/absmach/stompws/internal/server"
	"github.com/absmach/stompws/pkg/errors"
	"github.com/absmach/stompws/pkg/stomp"
	"github.com/absmach/stompws/pkg/stomp/frame"
	"github.com/absmach/stompws/pkg/stomp/heartbeat"
	"github.com/absmach/stompws/pkg/ulid"
	"github.com/absmach/stompws/pkg/uuid"
	"github.com/absmach/stompws/ws"
)

const envPrefix = "STOMP_"

var errUnknownIDProvider = errors.New("unknown id provider")

// Config is the CLI configuration, read from STOMP_ prefixed variables.
type Config struct {
	URI          string        `env:"URI"           envDefault:"ws://localhost:8080/ws"`
	Token        string        `env:"TOKEN"         envDefault:""`
	Host         string        `env:"VHOST"         envDefault:""`
	Room         string        `env:"ROOM"          envDefault:"20"`
	User         string        `env:"USER_ID"       envDefault:""`
	HeartBeat    string        `env:"HEARTBEAT"     envDefault:"10000,10000"`
	LogLevel     string        `env:"LOG_LEVEL"     envDefault:"info"`
	IDProvider   string        `env:"ID_PROVIDER"   envDefault:"uuid"`
	ReconnectMax time.Duration `env:"RECONNECT_MAX" envDefault:"30s"`
	Metrics      server.Config `envPrefix:"METRICS_"`
	Dialer       ws.Config     `envPrefix:"WS_"`
}

// LoadConfig reads Config from the environment. A nil environment means the
// process environment.
func LoadConfig(environment map[string]string) (Config, error) {
	return env.Load[Config](env.Options{Environment: environment, Prefix: envPrefix})
}

// ConnectOptions builds the CONNECT options: the Authorization header and
// the local heart-beat proposal.
func (c Config) ConnectOptions() (stomp.ConnectOptions, error) {
	hb, err := heartbeat.Parse(c.HeartBeat)
	if err != nil {
		return stomp.ConnectOptions{}, errors.Wrap(fmt.Errorf("invalid heart-beat %q", c.HeartBeat), err)
	}
	opts := stomp.ConnectOptions{
		HeartBeat: hb,
		Host:      c.Host,
	}
	if c.Token != "" {
		opts.Headers.Add(frame.Authorization, c.Token)
	}
	return opts, nil
}

// IDs returns the provider named by IDProvider.
func (c Config) IDs() (stompws.IDProvider, error) {
	switch c.IDProvider {
	case "", "uuid":
		return uuid.New(), nil
	case "ulid":
		return ulid.New(), nil
	default:
		return nil, errors.Wrap(errUnknownIDProvider, fmt.Errorf("%q", c.IDProvider))
	}
}
