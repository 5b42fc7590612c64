// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package stomp

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/absmach/stompws/pkg/codec"
	"github.com/absmach/stompws/pkg/errors"
	"github.com/absmach/stompws/pkg/stomp/frame"
)

const defAckMode = "auto"

// Message is one MESSAGE frame delivered to a subscription. Data holds the
// body, or the envelope data for subscriptions created WithEnvelope. Err is
// set when the envelope could not be opened; Data is then empty.
type Message struct {
	Subscription string
	Destination  string
	ID           string
	Headers      frame.Headers
	Body         []byte
	Data         []byte
	Err          error
}

// Decode decodes Data with c, returning Err first when set.
func (m Message) Decode(c codec.Codec, v any) error {
	if m.Err != nil {
		return m.Err
	}
	return c.Decode(m.Data, v)
}

// Subscription is a registered destination and its delivery channel.
type Subscription struct {
	id          string
	destination string
	headers     frame.Headers
	envelope    bool
	box         *mailbox[Message]
}

func newSubscription(id, destination string, cfg subscribeConfig) *Subscription {
	return &Subscription{
		id:          id,
		destination: destination,
		headers:     cfg.headers,
		envelope:    cfg.envelope,
		box:         newMailbox[Message](),
	}
}

// ID returns the subscription id, stable across reconnects.
func (s *Subscription) ID() string {
	return s.id
}

// Destination returns the subscribed destination.
func (s *Subscription) Destination() string {
	return s.destination
}

// C returns the delivery channel. It is closed when the subscription is
// removed or the session is closed.
func (s *Subscription) C() <-chan Message {
	return s.box.out
}

func (s *Subscription) frame() *frame.Frame {
	f := frame.New(frame.SUBSCRIBE, frame.ID, s.id, frame.Destination, s.destination, frame.Ack, defAckMode)
	for _, h := range s.headers {
		f.Headers.Set(h.Key, h.Value)
	}
	return f
}

func (s *Subscription) message(f *frame.Frame) Message {
	msg := Message{
		Subscription: s.id,
		Destination:  f.Get(frame.Destination),
		ID:           f.Get(frame.MessageID),
		Headers:      f.Headers,
		Body:         f.Body,
		Data:         f.Body,
	}
	if s.envelope {
		msg.Data, msg.Err = codec.OpenEnvelope(f.Body)
	}
	return msg
}

// Registry keeps subscriptions in subscribe order.
type Registry struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	order  []string
	logger *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		subs:   make(map[string]*Subscription),
		logger: logger,
	}
}

// Add registers sub.
func (r *Registry) Add(sub *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[sub.id]; ok {
		return errors.Wrap(errors.ErrSubscriptionExists, fmt.Errorf("id %s", sub.id))
	}
	r.subs[sub.id] = sub
	r.order = append(r.order, sub.id)

	return nil
}

// Get returns the subscription with id.
func (r *Registry) Get(id string) (*Subscription, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sub, ok := r.subs[id]
	return sub, ok
}

// Remove unregisters the subscription and closes its channel.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	sub, ok := r.subs[id]
	if !ok {
		r.mu.Unlock()
		return errors.Wrap(errors.ErrNotSubscribed, fmt.Errorf("id %s", id))
	}
	delete(r.subs, id)
	for i, sid := range r.order {
		if sid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	sub.box.close()
	return nil
}

// Entries returns the subscriptions in subscribe order.
func (r *Registry) Entries() []*Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := make([]*Subscription, 0, len(r.order))
	for _, id := range r.order {
		subs = append(subs, r.subs[id])
	}
	return subs
}

// Len returns the number of subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Dispatch routes a MESSAGE frame by its subscription header. Frames for
// unknown subscriptions are logged and dropped.
func (r *Registry) Dispatch(f *frame.Frame) bool {
	id := f.Get(frame.Subscription)

	r.mu.RLock()
	sub, ok := r.subs[id]
	r.mu.RUnlock()
	if !ok {
		r.logger.Warn(fmt.Sprintf("dropped MESSAGE %s for unknown subscription %q on %s", f.Get(frame.MessageID), id, f.Get(frame.Destination)))
		return false
	}

	msg := sub.message(f)
	if msg.Err != nil {
		r.logger.Warn(fmt.Sprintf("failed to open envelope of MESSAGE %s for subscription %s: %s", msg.ID, id, msg.Err))
	}
	return sub.box.put(msg)
}

// CloseAll closes every subscription channel and empties the registry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]*Subscription)
	r.order = nil
	r.mu.Unlock()

	for _, sub := range subs {
		sub.box.close()
	}
}
