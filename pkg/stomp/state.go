// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package stomp

// State is the state of the current session.
type State uint8

const (
	// Disconnected means no session was started.
	Disconnected State = iota
	// Connecting means CONNECT was sent and CONNECTED is awaited.
	Connecting
	// Connected means frames may be sent.
	Connected
	// Closed means the session ended by disconnect or clean remote close.
	Closed
	// Failed means the session ended by a transport or protocol failure.
	Failed
)

var stateNames = [...]string{
	Disconnected: "disconnected",
	Connecting:   "connecting",
	Connected:    "connected",
	Closed:       "closed",
	Failed:       "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Live reports whether a session is connecting or connected.
func (s State) Live() bool {
	return s == Connecting || s == Connected
}
