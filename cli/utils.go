// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/absmach/stompws/pkg/stomp"
	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/cobra"
)

var (
	// RawOutput prints message payloads as received instead of formatting
	// chat messages.
	RawOutput = false
	// URI overrides STOMP_URI.
	URI = ""
	// Room overrides STOMP_ROOM.
	Room = ""
	// User overrides STOMP_USER_ID.
	User = ""
	// Token overrides STOMP_TOKEN.
	Token = ""
)

func logJSONCmd(cmd cobra.Command, iList ...interface{}) {
	for _, i := range iList {
		m, err := json.Marshal(i)
		if err != nil {
			logErrorCmd(cmd, err)
			return
		}

		pj, err := prettyjson.Format(m)
		if err != nil {
			logErrorCmd(cmd, err)
			return
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", string(pj))
	}
}

func logErrorCmd(cmd cobra.Command, err error) {
	boldRed := color.New(color.FgRed, color.Bold)
	boldRed.Fprintf(cmd.ErrOrStderr(), "\nerror: ")

	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n\n", color.RedString(err.Error()))
}

func logOKCmd(cmd cobra.Command) {
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", color.BlueString("ok"))
}

// Printer writes session status and received messages. It is safe for
// concurrent use.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
	raw bool
}

// NewPrinter returns a Printer writing to out.
func NewPrinter(out io.Writer, raw bool) *Printer {
	return &Printer{out: out, raw: raw}
}

// Status prints a lifecycle event.
func (p *Printer) Status(ev stomp.LifecycleEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ts := ev.Time.Format("15:04:05")
	switch ev.Type {
	case stomp.EventOpened:
		color.New(color.FgGreen).Fprintf(p.out, "[%s] connection opened\n", ts)
	case stomp.EventClosed:
		color.New(color.FgYellow).Fprintf(p.out, "[%s] connection closed\n", ts)
	case stomp.EventHeartbeatTimeout:
		color.New(color.FgMagenta).Fprintf(p.out, "[%s] server heart-beat missed\n", ts)
	case stomp.EventError:
		color.New(color.FgRed).Fprintf(p.out, "[%s] connection error: %s\n", ts, ev.Err)
	}
}

// Message prints a chat message, or the pretty printed payload in raw mode
// or when the payload is not a chat message.
func (p *Printer) Message(msg stomp.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.raw {
		if res, err := decodeChat(msg); err == nil && res.Msg != "" {
			fmt.Fprintf(p.out, "%s %s\n", color.CyanString(msg.Destination), res)
			return
		}
	}
	body, err := prettyjson.Format(msg.Data)
	if err != nil {
		body = msg.Data
	}
	fmt.Fprintf(p.out, "%s\n%s\n", color.CyanString(msg.Destination), body)
}

// Skipped reports a message that was not sent.
func (p *Printer) Skipped(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	color.New(color.FgYellow).Fprintf(p.out, "not connected, skipped: %s\n", text)
}

// Error prints err in red.
func (p *Printer) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("error:"), color.RedString(err.Error()))
}
