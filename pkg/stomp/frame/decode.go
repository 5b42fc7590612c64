// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/absmach/stompws/pkg/errors"
)

var (
	// ErrMalformedCommand indicates a missing or invalid command line.
	ErrMalformedCommand = errors.New("malformed frame command")

	// ErrMalformedHeaderLine indicates a header line without a colon, with an
	// invalid escape sequence or with an invalid content-length.
	ErrMalformedHeaderLine = errors.New("malformed frame header line")

	// ErrMissingTerminator indicates a frame without the blank line closing the
	// headers or without the NUL byte closing the body.
	ErrMissingTerminator = errors.New("missing frame terminator")
)

// IsHeartbeat reports whether data consists only of end-of-line bytes.
func IsHeartbeat(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	for _, c := range data {
		if c != '\n' && c != '\r' {
			return false
		}
	}
	return true
}

// Decode parses one frame from data. It returns a nil frame and a nil error
// for a heartbeat. An empty body decodes as a nil Body. Decode errors wrap
// ErrMalformedCommand, ErrMalformedHeaderLine or ErrMissingTerminator.
func Decode(data []byte) (*Frame, error) {
	if IsHeartbeat(data) {
		return nil, nil
	}
	rest := bytes.TrimLeft(data, "\r\n")

	line, rest, ok := cutLine(rest)
	if !ok {
		return nil, errors.Wrap(ErrMalformedCommand, errors.New("command line is not terminated"))
	}
	cmd := Command(line)
	if !validCommand(line) {
		return nil, errors.Wrap(ErrMalformedCommand, fmt.Errorf("invalid command %q", line))
	}

	f := &Frame{Command: cmd}
	esc := cmd.escaped()
	for {
		line, rest, ok = cutLine(rest)
		if !ok {
			return nil, errors.Wrap(ErrMissingTerminator, errors.New("header section is not terminated"))
		}
		if line == "" {
			break
		}
		key, value, found := cutColon(line)
		if !found {
			return nil, errors.Wrap(ErrMalformedHeaderLine, fmt.Errorf("no colon in %q", line))
		}
		if esc {
			if key, ok = unescape(key); ok {
				value, ok = unescape(value)
			}
			if !ok {
				return nil, errors.Wrap(ErrMalformedHeaderLine, fmt.Errorf("invalid escape in %q", line))
			}
		}
		f.Headers.Add(key, value)
	}

	body, err := readBody(f.Headers, rest)
	if err != nil {
		return nil, err
	}
	if len(body) > 0 {
		f.Body = append([]byte(nil), body...)
	}

	return f, nil
}

func readBody(h Headers, rest []byte) ([]byte, error) {
	cl, ok := h.Get(ContentLength)
	if !ok {
		i := bytes.IndexByte(rest, 0)
		if i < 0 {
			return nil, errors.Wrap(ErrMissingTerminator, errors.New("body is not NUL terminated"))
		}
		return rest[:i], nil
	}
	n, err := strconv.Atoi(cl)
	if err != nil || n < 0 {
		return nil, errors.Wrap(ErrMalformedHeaderLine, fmt.Errorf("invalid content-length %q", cl))
	}
	if len(rest) < n+1 || rest[n] != 0 {
		return nil, errors.Wrap(ErrMissingTerminator, fmt.Errorf("body shorter than content-length %d", n))
	}
	return rest[:n], nil
}

// cutLine returns the text before the next LF, without a trailing CR.
func cutLine(data []byte) (string, []byte, bool) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return "", data, false
	}
	line := data[:i]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return string(line), data[i+1:], true
}

func cutColon(line string) (string, string, bool) {
	for i := 0; i < len(line); i++ {
		if line[i] == ':' {
			return line[:i], line[i+1:], true
		}
	}
	return "", "", false
}

func validCommand(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
