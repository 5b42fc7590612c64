// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"strings"
	"time"

	"github.com/absmach/stompws"
	"github.com/spf13/cobra"
)

const sendTimeout = 10 * time.Second

// NewVersionCmd returns version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Client version",
		Long:  `Print the client version and the STOMP versions it offers`,
		Run: func(cmd *cobra.Command, args []string) {
			logJSONCmd(*cmd, stompws.VersionInfo{
				Service:  svcName,
				Version:  stompws.Version,
				Protocol: stompws.ProtocolVersions,
			})
		},
	}
}

// NewListenCmd returns the listen command.
func NewListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Listen to a room",
		Long: "Subscribe to the room and, when a user is set, to the user's private queue.\n" +
			"Messages are printed until interrupted; lost connections are re-established with backoff.",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := setup(cmd)
			if err != nil {
				logErrorCmd(*cmd, err)
				return
			}
			r := a.runner(NewPrinter(cmd.OutOrStdout(), RawOutput))
			if err := a.serve(cmd.Context(), r.Run); err != nil {
				logErrorCmd(*cmd, err)
			}
		},
	}
}

// NewChatCmd returns the chat command.
func NewChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat in a room",
		Long:  "Listen to the room like listen does and send every line read from stdin to it.",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := setup(cmd)
			if err != nil {
				logErrorCmd(*cmd, err)
				return
			}
			p := NewPrinter(cmd.OutOrStdout(), RawOutput)
			r := a.runner(p)
			in := cmd.InOrStdin()

			err = a.serve(cmd.Context(), func(ctx context.Context) error {
				ctx, cancel := context.WithCancel(ctx)
				defer cancel()
				errs := make(chan error, 1)
				go func() {
					defer cancel()
					errs <- SendLines(ctx, a.client, SendDestination(a.cfg.Room), in, p)
				}()
				if err := r.Run(ctx); err != nil {
					return err
				}
				select {
				case err := <-errs:
					return err
				default:
					return nil
				}
			})
			if err != nil {
				logErrorCmd(*cmd, err)
			}
		},
	}
}

// NewSendCmd returns the send command.
func NewSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message to a room",
		Long:  "Connect, send one chat message to the room, wait for the receipt and disconnect.",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a, err := setup(cmd)
			if err != nil {
				logErrorCmd(*cmd, err)
				return
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
			defer cancel()

			msg := ChatMessageReq{Message: strings.Join(args, " ")}
			if err := Publish(ctx, a.client, a.cfg.URI, a.opts, SendDestination(a.cfg.Room), msg); err != nil {
				logErrorCmd(*cmd, err)
				return
			}
			logOKCmd(*cmd)
		},
	}
}
