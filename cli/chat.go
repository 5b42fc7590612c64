// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"strings"

	"github.com/absmach/stompws/pkg/codec"
	"github.com/absmach/stompws/pkg/stomp"
)

// ChatMessageReq is the payload sent to a room.
type ChatMessageReq struct {
	Message string `json:"message"`
}

// ChatMessageRes is the envelope data delivered for room and private
// messages.
type ChatMessageRes struct {
	FullName string `json:"fullName"`
	Msg      string `json:"msg"`
	TimeSend string `json:"timeSend"`
}

func (m ChatMessageRes) String() string {
	return fmt.Sprintf("%s - %s - %s", m.FullName, m.Msg, m.TimeSend)
}

// SendDestination is where messages for room are sent.
func SendDestination(room string) string {
	return fmt.Sprintf("/app/chat/%s/send", room)
}

// RoomDestination delivers the messages of room.
func RoomDestination(room string) string {
	return fmt.Sprintf("/chat/%s/messages", room)
}

// UserDestination delivers the private messages of user.
func UserDestination(user string) string {
	return fmt.Sprintf("/user/%s/queue/messages", user)
}

// Destinations lists the destinations to subscribe for cfg. The private
// queue is skipped without a user.
func Destinations(cfg Config) []string {
	dests := []string{RoomDestination(cfg.Room)}
	if strings.TrimSpace(cfg.User) != "" {
		dests = append(dests, UserDestination(cfg.User))
	}
	return dests
}

func decodeChat(msg stomp.Message) (ChatMessageRes, error) {
	var res ChatMessageRes
	err := msg.Decode(codec.JSON(), &res)
	return res, err
}
