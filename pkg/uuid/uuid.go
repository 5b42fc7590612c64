// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package uuid provides a UUID identity provider.
package uuid

import (
	"github.com/absmach/stompws"
	"github.com/absmach/stompws/pkg/errors"
	"github.com/gofrs/uuid"
)

// ErrGeneratingID indicates error in generating UUID.
var ErrGeneratingID = errors.New("failed to generate uuid")

var _ stompws.IDProvider = (*uuidProvider)(nil)

type uuidProvider struct {
	prefix string
}

// New instantiates a UUID provider.
func New() stompws.IDProvider {
	return &uuidProvider{}
}

// NewPrefixed instantiates a UUID provider whose ids start with prefix,
// e.g. "sub-" for subscription ids.
func NewPrefixed(prefix string) stompws.IDProvider {
	return &uuidProvider{prefix: prefix}
}

func (up *uuidProvider) ID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(ErrGeneratingID, err)
	}

	return up.prefix + id.String(), nil
}
