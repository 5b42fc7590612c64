// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package uuid

import (
	"fmt"
	"sync"

	"github.com/absmach/stompws"
)

// Prefix represents the prefix used to generate UUID mocks.
const Prefix = "123e4567-e89b-12d3-a456-"

var _ stompws.IDProvider = (*uuidProviderMock)(nil)

type uuidProviderMock struct {
	mu      sync.Mutex
	counter int
	err     error
}

func (up *uuidProviderMock) ID() (string, error) {
	up.mu.Lock()
	defer up.mu.Unlock()

	if up.err != nil {
		return "", up.err
	}
	up.counter++
	return fmt.Sprintf("%s%012d", Prefix, up.counter), nil
}

// NewMock creates a provider returning sequential ids: Prefix followed by
// 000000000001, 000000000002 and so on.
func NewMock() stompws.IDProvider {
	return &uuidProviderMock{}
}

// NewFailingMock creates a provider whose ID always fails with err.
func NewFailingMock(err error) stompws.IDProvider {
	return &uuidProviderMock{err: err}
}

// MockID returns the n-th id generated by a fresh mock.
func MockID(n int) string {
	return fmt.Sprintf("%s%012d", Prefix, n)
}
