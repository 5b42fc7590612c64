// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"net/http"

	"github.com/absmach/stompws/pkg/transport"
	"github.com/stretchr/testify/mock"
)

var _ transport.Dialer = (*Dialer)(nil)

type Dialer struct {
	mock.Mock
}

func (m *Dialer) Dial(ctx context.Context, uri string, header http.Header) (transport.Conn, error) {
	ret := m.Called(ctx, uri, header)

	conn, _ := ret.Get(0).(transport.Conn)

	return conn, ret.Error(1)
}
