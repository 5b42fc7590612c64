// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package ws provides the WebSocket transport for STOMP sessions.
//
// The Dialer opens connections with gorilla/websocket and hands back a
// Client that satisfies transport.Conn: one text message per STOMP frame,
// writes serialized and bounded by a write timeout, and a normal close
// from either side reported as transport.ErrClosed.
package ws
