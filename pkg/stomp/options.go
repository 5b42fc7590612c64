// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package stomp

import (
	"net/http"

	"github.com/absmach/stompws"
	"github.com/absmach/stompws/pkg/stomp/frame"
	"github.com/absmach/stompws/pkg/stomp/heartbeat"
)

// ConnectOptions configures one connection attempt.
type ConnectOptions struct {
	// Headers are added to the CONNECT frame, e.g. Authorization.
	Headers frame.Headers

	// Handshake headers are sent with the websocket upgrade request.
	Handshake http.Header

	// HeartBeat is the local heart-beat proposal.
	HeartBeat heartbeat.Config

	// Host is the virtual host; it defaults to the host of the URI.
	Host string
}

// Option configures a Client.
type Option func(*client)

// WithIDProvider sets the generator for subscription and receipt ids.
func WithIDProvider(p stompws.IDProvider) Option {
	return func(c *client) {
		c.ids = p
	}
}

// WithHeartbeatOptions passes options to every heart-beat monitor.
func WithHeartbeatOptions(opts ...heartbeat.Option) Option {
	return func(c *client) {
		c.hbOpts = append(c.hbOpts, opts...)
	}
}

type subscribeConfig struct {
	id       string
	envelope bool
	headers  frame.Headers
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscribeConfig)

// WithID sets a caller-chosen subscription id.
func WithID(id string) SubscribeOption {
	return func(c *subscribeConfig) {
		c.id = id
	}
}

// WithEnvelope makes the subscription open {success, message, data}
// envelopes and deliver only data.
func WithEnvelope() SubscribeOption {
	return func(c *subscribeConfig) {
		c.envelope = true
	}
}

// WithSubscribeHeader adds a header to the SUBSCRIBE frame. The id and
// destination headers are reserved and make Subscribe fail.
func WithSubscribeHeader(key, value string) SubscribeOption {
	return func(c *subscribeConfig) {
		c.headers.Add(key, value)
	}
}

type sendConfig struct {
	contentType string
	receipt     bool
	headers     frame.Headers
}

// SendOption configures a SEND frame.
type SendOption func(*sendConfig)

// WithContentType sets the content-type header.
func WithContentType(ct string) SendOption {
	return func(c *sendConfig) {
		c.contentType = ct
	}
}

// WithHeader adds a header to the SEND frame.
func WithHeader(key, value string) SendOption {
	return func(c *sendConfig) {
		c.headers.Add(key, value)
	}
}

// WithReceipt requests a RECEIPT and makes Send wait for it.
func WithReceipt() SendOption {
	return func(c *sendConfig) {
		c.receipt = true
	}
}
