// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package frame

// Header is a single header entry.
type Header struct {
	Key   string
	Value string
}

// Headers keeps header entries in wire order. Keys are case-sensitive and
// repeated keys are kept; lookups return the first occurrence.
type Headers []Header

// Get returns the value of the first entry with key.
func (h Headers) Get(key string) (string, bool) {
	for _, e := range h {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Contains reports whether key is present.
func (h Headers) Contains(key string) bool {
	_, ok := h.Get(key)
	return ok
}

// Add appends an entry, keeping any existing entries with the same key.
func (h *Headers) Add(key, value string) {
	*h = append(*h, Header{Key: key, Value: value})
}

// Set replaces the first entry with key and drops any later duplicates.
// The entry is appended when key is absent.
func (h *Headers) Set(key, value string) {
	found := false
	out := (*h)[:0]
	for _, e := range *h {
		if e.Key != key {
			out = append(out, e)
			continue
		}
		if found {
			continue
		}
		found = true
		out = append(out, Header{Key: key, Value: value})
	}
	if !found {
		out = append(out, Header{Key: key, Value: value})
	}
	*h = out
}

// Del removes every entry with key.
func (h *Headers) Del(key string) {
	out := (*h)[:0]
	for _, e := range *h {
		if e.Key != key {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		out = nil
	}
	*h = out
}
