// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/absmach/stompws/pkg/errors"
)

// ErrInvalidHeartBeat indicates a heart-beat header not in the form "cx,cy".
var ErrInvalidHeartBeat = errors.New("invalid heart-beat header")

var heartBeatRegexp = regexp.MustCompile(`^[0-9]{1,11},[0-9]{1,11}$`)

// ParseHeartBeat parses a heart-beat header value "cx,cy" given in
// milliseconds. cx is the smallest interval the sender can emit at, cy the
// interval it wants to receive at. Zero disables a direction.
func ParseHeartBeat(value string) (cx, cy time.Duration, err error) {
	if !heartBeatRegexp.MatchString(value) {
		return 0, 0, errors.Wrap(ErrInvalidHeartBeat, fmt.Errorf("%q", value))
	}
	parts := strings.Split(value, ",")
	x, _ := strconv.ParseInt(parts[0], 10, 64)
	y, _ := strconv.ParseInt(parts[1], 10, 64)
	return time.Duration(x) * time.Millisecond, time.Duration(y) * time.Millisecond, nil
}

// FormatHeartBeat returns the heart-beat header value for the intervals,
// truncated to whole milliseconds.
func FormatHeartBeat(cx, cy time.Duration) string {
	return strconv.FormatInt(cx.Milliseconds(), 10) + "," + strconv.FormatInt(cy.Milliseconds(), 10)
}
