// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"

	"github.com/absmach/stompws/pkg/stomp"
	"github.com/stretchr/testify/mock"
)

var _ stomp.Client = (*Client)(nil)

type Client struct {
	mock.Mock
}

func (m *Client) Connect(ctx context.Context, uri string, opts stomp.ConnectOptions) error {
	ret := m.Called(ctx, uri, opts)

	return ret.Error(0)
}

func (m *Client) Disconnect(ctx context.Context) error {
	ret := m.Called(ctx)

	return ret.Error(0)
}

func (m *Client) Subscribe(ctx context.Context, destination string, opts ...stomp.SubscribeOption) (*stomp.Subscription, error) {
	ret := m.Called(ctx, destination, opts)

	sub, _ := ret.Get(0).(*stomp.Subscription)

	return sub, ret.Error(1)
}

func (m *Client) Unsubscribe(ctx context.Context, id string) error {
	ret := m.Called(ctx, id)

	return ret.Error(0)
}

func (m *Client) Send(ctx context.Context, destination string, payload []byte, opts ...stomp.SendOption) error {
	ret := m.Called(ctx, destination, payload, opts)

	return ret.Error(0)
}

func (m *Client) Lifecycle() <-chan stomp.LifecycleEvent {
	ret := m.Called()

	events, _ := ret.Get(0).(<-chan stomp.LifecycleEvent)

	return events
}

func (m *Client) State() stomp.State {
	ret := m.Called()

	state, _ := ret.Get(0).(stomp.State)

	return state
}

func (m *Client) Close() error {
	ret := m.Called()

	return ret.Error(0)
}
