// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package frame implements the STOMP 1.2 text frame format used over
// WebSocket: a command line, header lines, a blank line, the body and a
// terminating NUL byte. A payload made only of end-of-line bytes is a
// heartbeat.
package frame

// Command identifies a STOMP frame. Commands use the upper-case
// protocol spelling, header names below use pascal-case.
type Command string

// Client and server commands.
const (
	CONNECT     Command = "CONNECT"
	CONNECTED   Command = "CONNECTED"
	SEND        Command = "SEND"
	SUBSCRIBE   Command = "SUBSCRIBE"
	UNSUBSCRIBE Command = "UNSUBSCRIBE"
	MESSAGE     Command = "MESSAGE"
	ACK         Command = "ACK"
	NACK        Command = "NACK"
	RECEIPT     Command = "RECEIPT"
	ERROR       Command = "ERROR"
	DISCONNECT  Command = "DISCONNECT"
)

var commands = map[Command]struct{}{
	CONNECT:     {},
	CONNECTED:   {},
	SEND:        {},
	SUBSCRIBE:   {},
	UNSUBSCRIBE: {},
	MESSAGE:     {},
	ACK:         {},
	NACK:        {},
	RECEIPT:     {},
	ERROR:       {},
	DISCONNECT:  {},
}

// Known reports whether c is one of the STOMP 1.2 commands.
func (c Command) Known() bool {
	_, ok := commands[c]
	return ok
}

func (c Command) String() string {
	return string(c)
}

// STOMP header names.
const (
	AcceptVersion = "accept-version"
	Ack           = "ack"
	Authorization = "Authorization"
	ContentLength = "content-length"
	ContentType   = "content-type"
	Destination   = "destination"
	HeartBeat     = "heart-beat"
	Host          = "host"
	ID            = "id"
	Message       = "message"
	MessageID     = "message-id"
	Receipt       = "receipt"
	ReceiptID     = "receipt-id"
	Server        = "server"
	Session       = "session"
	Subscription  = "subscription"
	Version       = "version"
)

// Frame is a single STOMP frame.
type Frame struct {
	Command Command
	Headers Headers
	Body    []byte
}

// New creates a frame with the given command and header key/value pairs.
// A trailing key without a value is ignored.
func New(cmd Command, kv ...string) *Frame {
	f := &Frame{Command: cmd}
	for i := 0; i+1 < len(kv); i += 2 {
		f.Headers.Add(kv[i], kv[i+1])
	}
	return f
}

// Get returns the first value of the header key.
func (f *Frame) Get(key string) string {
	v, _ := f.Headers.Get(key)
	return v
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{Command: f.Command}
	if f.Headers != nil {
		c.Headers = append(Headers(nil), f.Headers...)
	}
	if f.Body != nil {
		c.Body = append([]byte(nil), f.Body...)
	}
	return c
}

// escaped reports whether header names and values of the command are
// escaped on the wire. CONNECT and CONNECTED frames are sent verbatim.
func (c Command) escaped() bool {
	return c != CONNECT && c != CONNECTED
}
