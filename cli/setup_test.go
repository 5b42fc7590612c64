// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/absmach/stompws/cli"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func executeCommand(t *testing.T, root *cobra.Command, args ...string) string {
	buffer := new(bytes.Buffer)
	root.SetOut(buffer)
	root.SetErr(buffer)
	root.SetArgs(args)
	err := root.Execute()
	assert.NoError(t, err, "Error executing command")
	return buffer.String()
}

func setFlags(rootCmd *cobra.Command) *cobra.Command {
	rootCmd.PersistentFlags().BoolVarP(
		&cli.RawOutput,
		"raw",
		"r",
		cli.RawOutput,
		"Print payloads as received",
	)

	rootCmd.PersistentFlags().StringVarP(
		&cli.URI,
		"uri",
		"u",
		"",
		"STOMP websocket URI",
	)

	rootCmd.PersistentFlags().StringVarP(
		&cli.Room,
		"room",
		"R",
		"",
		"Chat room",
	)

	rootCmd.PersistentFlags().StringVarP(
		&cli.Token,
		"token",
		"t",
		"",
		"Authorization token",
	)

	return rootCmd
}

// syncBuffer is a bytes.Buffer safe for the printer and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
