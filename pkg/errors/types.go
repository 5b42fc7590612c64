// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package errors

var (
	// ErrTransport indicates the underlying connection was refused, reset or timed out.
	ErrTransport = New("transport failure")

	// ErrProtocol indicates a malformed frame, an ERROR frame or an unexpected command.
	ErrProtocol = New("protocol violation")

	// ErrHeartbeatTimeout indicates no data arrived within the negotiated incoming interval.
	ErrHeartbeatTimeout = New("heartbeat timeout")

	// ErrNotConnected indicates an operation that requires a connected session.
	ErrNotConnected = New("session not connected")

	// ErrAlreadyConnected indicates a connect attempt while a session is live.
	ErrAlreadyConnected = New("session already connecting or connected")

	// ErrPayloadDecode indicates a message body could not be decoded by the payload codec.
	ErrPayloadDecode = New("failed to decode payload")

	// ErrEnvelopeRejected indicates an envelope reporting success=false.
	ErrEnvelopeRejected = New("envelope reported failure")

	// ErrSubscriptionExists indicates a subscription id that is already registered.
	ErrSubscriptionExists = New("subscription already exists")

	// ErrNotSubscribed indicates an unknown subscription id.
	ErrNotSubscribed = New("not subscribed")

	// ErrReceiptTimeout indicates the session ended or the context expired before a receipt arrived.
	ErrReceiptTimeout = New("receipt not received")
)
