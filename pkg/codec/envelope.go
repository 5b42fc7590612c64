// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/json"

	"github.com/absmach/stompws/pkg/errors"
)

// Envelope is the server response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OpenEnvelope returns the data carried by a successful envelope. It fails
// with ErrPayloadDecode when body is not an envelope and with
// ErrEnvelopeRejected, wrapping the server message, when success is false.
func OpenEnvelope(body []byte) ([]byte, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(errors.ErrPayloadDecode, err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "no message"
		}
		return nil, errors.Wrap(errors.ErrEnvelopeRejected, errors.New(msg))
	}
	return env.Data, nil
}

// Seal wraps data in a successful envelope.
func Seal(data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrPayloadDecode, err)
	}
	return json.Marshal(Envelope{Success: true, Data: raw})
}
