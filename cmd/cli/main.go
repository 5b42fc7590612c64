// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package main contains the STOMP chat client.
package main

import (
	"log"

	"github.com/absmach/stompws/cli"
	"github.com/spf13/cobra"
)

func main() {
	// Root
	rootCmd := &cobra.Command{
		Use:   "stomp-cli",
		Short: "STOMP over WebSocket chat client",
		Long: "Chat over a STOMP broker reached through a WebSocket endpoint.\n" +
			"Configuration is read from STOMP_ environment variables; flags override them.",
	}

	// Root Commands
	rootCmd.AddCommand(cli.NewVersionCmd())
	rootCmd.AddCommand(cli.NewListenCmd())
	rootCmd.AddCommand(cli.NewChatCmd())
	rootCmd.AddCommand(cli.NewSendCmd())

	// Root Flags
	rootCmd.PersistentFlags().StringVarP(
		&cli.URI,
		"uri",
		"u",
		"",
		"STOMP websocket URI",
	)

	rootCmd.PersistentFlags().StringVarP(
		&cli.Token,
		"token",
		"t",
		"",
		"Authorization token sent with CONNECT",
	)

	rootCmd.PersistentFlags().StringVarP(
		&cli.Room,
		"room",
		"R",
		"",
		"Chat room",
	)

	rootCmd.PersistentFlags().StringVarP(
		&cli.User,
		"user",
		"U",
		"",
		"User id for the private queue",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&cli.RawOutput,
		"raw",
		"r",
		false,
		"Print payloads as received",
	)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
