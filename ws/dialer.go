// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package ws

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/absmach/stompws/pkg/errors"
	"github.com/absmach/stompws/pkg/transport"
	"github.com/gorilla/websocket"
)

// Subprotocols offered during the handshake, most recent first.
var Subprotocols = []string{"v12.stomp", "v11.stomp", "v10.stomp"}

// ErrHandshake indicates the server refused the websocket upgrade.
var ErrHandshake = errors.New("websocket handshake failed")

// Config tunes the websocket dialer.
type Config struct {
	HandshakeTimeout time.Duration `env:"HANDSHAKE_TIMEOUT" envDefault:"10s"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT"     envDefault:"10s"`
	ReadLimit        int64         `env:"READ_LIMIT"        envDefault:"1048576"`
	ReadBufferSize   int           `env:"READ_BUFFER_SIZE"  envDefault:"1024"`
	WriteBufferSize  int           `env:"WRITE_BUFFER_SIZE" envDefault:"1024"`
}

var _ transport.Dialer = (*Dialer)(nil)

// Dialer opens websocket connections.
type Dialer struct {
	cfg    Config
	dialer *websocket.Dialer
}

// NewDialer returns a Dialer for cfg.
func NewDialer(cfg Config) *Dialer {
	return &Dialer{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
			Subprotocols:     Subprotocols,
		},
	}
}

func (d *Dialer) Dial(ctx context.Context, uri string, header http.Header) (transport.Conn, error) {
	conn, res, err := d.dialer.DialContext(ctx, uri, header)
	if err != nil {
		if res != nil {
			return nil, errors.Wrap(ErrHandshake, fmt.Errorf("%s: %w", res.Status, err))
		}
		return nil, err
	}
	if d.cfg.ReadLimit > 0 {
		conn.SetReadLimit(d.cfg.ReadLimit)
	}

	return NewClient(conn, d.cfg.WriteTimeout), nil
}
