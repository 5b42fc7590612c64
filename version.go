// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package stompws

import (
	"encoding/json"
	"net/http"
)

// Version is the library and CLI version.
const Version = "0.1.0"

// ProtocolVersions are the STOMP versions offered in CONNECT.
const ProtocolVersions = "1.1,1.2"

// VersionInfo contains version endpoint response.
type VersionInfo struct {
	// Service contains service name.
	Service string `json:"service"`

	// Version contains service current version value.
	Version string `json:"version"`

	// Protocol lists the STOMP versions the client offers.
	Protocol string `json:"protocol"`
}

// Health exposes an HTTP handler reporting the service version.
func Health(service string) http.HandlerFunc {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		res := VersionInfo{
			Service:  service,
			Version:  Version,
			Protocol: ProtocolVersions,
		}

		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(rw).Encode(res)
	})
}
