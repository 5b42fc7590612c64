// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package codec encodes and decodes message payloads and reads the
// {success, message, data} envelope some servers wrap them in.
package codec

import (
	"encoding/json"

	"github.com/absmach/stompws/pkg/errors"
)

// ContentTypeJSON is the content-type header value for JSON payloads.
const ContentTypeJSON = "application/json"

// Codec converts payload values to and from message bodies.
type Codec interface {
	// Encode returns the body for v.
	Encode(v any) ([]byte, error)

	// Decode fills v from data.
	Decode(data []byte, v any) error

	// ContentType returns the content-type header value for encoded bodies.
	ContentType() string
}

var _ Codec = (*jsonCodec)(nil)

type jsonCodec struct{}

// JSON returns the JSON codec.
func JSON() Codec {
	return jsonCodec{}
}

func (jsonCodec) Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.ErrPayloadDecode, err)
	}
	return data, nil
}

func (jsonCodec) Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrPayloadDecode, err)
	}
	return nil
}

func (jsonCodec) ContentType() string {
	return ContentTypeJSON
}

// Decode decodes data into a new T.
func Decode[T any](c Codec, data []byte) (T, error) {
	var v T
	if err := c.Decode(data, &v); err != nil {
		return v, err
	}
	return v, nil
}
