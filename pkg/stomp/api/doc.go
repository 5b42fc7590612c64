// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package api contains logging and metrics middlewares for the STOMP
// session client.
package api
