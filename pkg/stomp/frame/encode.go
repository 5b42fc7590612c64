// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"bytes"
	"strconv"
	"strings"
)

// Heartbeat is the wire form of an empty heartbeat frame.
const Heartbeat = "\n"

var escaper = strings.NewReplacer(
	"\\", "\\\\",
	"\r", "\\r",
	"\n", "\\n",
	":", "\\c",
)

// Encode returns the wire form of f. A nil frame encodes as a heartbeat.
// A content-length header is written when the body contains NUL and f has
// none; f itself is not modified.
func Encode(f *Frame) []byte {
	if f == nil {
		return []byte(Heartbeat)
	}
	var buf bytes.Buffer
	buf.Grow(len(f.Command) + len(f.Body) + 32*len(f.Headers) + 3)

	buf.WriteString(string(f.Command))
	buf.WriteByte('\n')
	esc := f.Command.escaped()
	for _, h := range f.Headers {
		if esc {
			buf.WriteString(escaper.Replace(h.Key))
			buf.WriteByte(':')
			buf.WriteString(escaper.Replace(h.Value))
		} else {
			buf.WriteString(h.Key)
			buf.WriteByte(':')
			buf.WriteString(h.Value)
		}
		buf.WriteByte('\n')
	}
	if bytes.IndexByte(f.Body, 0) >= 0 && !f.Headers.Contains(ContentLength) {
		buf.WriteString(ContentLength)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(len(f.Body)))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(f.Body)
	buf.WriteByte(0)

	return buf.Bytes()
}

// unescape reverses the STOMP 1.2 header escaping. Any escape sequence
// other than \\, \r, \n and \c is rejected.
func unescape(s string) (string, bool) {
	if strings.IndexByte(s, '\\') < 0 {
		return s, true
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			return "", false
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		case 'c':
			b.WriteByte(':')
		default:
			return "", false
		}
	}
	return b.String(), true
}
