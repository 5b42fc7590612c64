// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package transport defines the text-message connection a STOMP session
// runs over.
package transport

import (
	"context"
	"net/http"

	"github.com/absmach/stompws/pkg/errors"
)

// ErrClosed is returned by Receive and Send once the connection was closed
// cleanly by either side.
var ErrClosed = errors.New("transport closed")

// Conn is a bidirectional text-message connection. Send may be called
// concurrently with Receive. Close unblocks a pending Receive.
type Conn interface {
	// Send writes one text message.
	Send(ctx context.Context, text string) error

	// Receive blocks until one message arrives, the connection closes
	// (ErrClosed) or fails.
	Receive(ctx context.Context) (string, error)

	// Close releases the connection.
	Close() error
}

// Dialer opens connections.
//
//go:generate mockery --name Dialer --output=./mocks --filename dialer.go --quiet --note "Copyright (c) Abstract Machines"
type Dialer interface {
	// Dial opens a connection to uri, sending header with the handshake.
	Dial(ctx context.Context, uri string, header http.Header) (Conn, error)
}
