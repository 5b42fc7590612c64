// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package stompws

// IDProvider specifies an API for generating unique identifiers.
// Sessions use it for subscription and receipt ids.
type IDProvider interface {
	// ID generates the unique identifier.
	ID() (string, error)
}
