// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package stomp_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/absmach/stompws/logger"
	"github.com/absmach/stompws/pkg/codec"
	"github.com/absmach/stompws/pkg/errors"
	"github.com/absmach/stompws/pkg/stomp"
	"github.com/absmach/stompws/pkg/stomp/frame"
	"github.com/absmach/stompws/pkg/stomp/heartbeat"
	"github.com/absmach/stompws/pkg/ticker"
	"github.com/absmach/stompws/pkg/transport/mocks"
	"github.com/absmach/stompws/pkg/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	uri     = "ws://localhost:8080/ws"
	token   = "Bearer 7f9c"
	waitFor = time.Second
	quiet   = 50 * time.Millisecond
)

var (
	connectOpts = stomp.ConnectOptions{
		Headers: frame.Headers{{Key: frame.Authorization, Value: token}},
	}
	errDial = errors.New("connection refused")
)

type chatMessage struct {
	Msg string `json:"msg"`
}

func newClient(opts ...stomp.Option) (stomp.Client, *mocks.Dialer) {
	dialer := new(mocks.Dialer)
	opts = append([]stomp.Option{stomp.WithIDProvider(uuid.NewMock())}, opts...)
	return stomp.New(dialer, logger.NewMock(), opts...), dialer
}

func expectFrame(t *testing.T, conn *mocks.Conn, cmd frame.Command) *frame.Frame {
	t.Helper()
	f, err := conn.NextFrame(waitFor)
	require.Nil(t, err, fmt.Sprintf("expected %s frame: %s", cmd, err))
	require.NotNil(t, f, fmt.Sprintf("expected %s frame, got heartbeat", cmd))
	require.Equal(t, cmd, f.Command)
	return f
}

func expectEvent(t *testing.T, events <-chan stomp.LifecycleEvent, typ stomp.EventType) stomp.LifecycleEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, fmt.Sprintf("lifecycle closed while waiting for %s", typ))
		require.Equal(t, typ, ev.Type, fmt.Sprintf("expected %s event got %s (%v)", typ, ev.Type, ev.Err))
		return ev
	case <-time.After(waitFor):
		t.Fatalf("timed out waiting for %s event", typ)
		return stomp.LifecycleEvent{}
	}
}

func expectNoEvent(t *testing.T, events <-chan stomp.LifecycleEvent) {
	t.Helper()
	select {
	case ev := <-events:
		t.Fatalf("unexpected %s event (%v)", ev.Type, ev.Err)
	case <-time.After(quiet):
	}
}

func receive(t *testing.T, sub *stomp.Subscription) (stomp.Message, bool) {
	t.Helper()
	select {
	case msg, ok := <-sub.C():
		return msg, ok
	case <-time.After(waitFor):
		t.Fatalf("timed out waiting on subscription %s", sub.ID())
		return stomp.Message{}, false
	}
}

func expectNoMessage(t *testing.T, sub *stomp.Subscription) {
	t.Helper()
	select {
	case msg, ok := <-sub.C():
		if ok {
			t.Fatalf("unexpected message on %s: %s", sub.ID(), msg.Body)
		}
	case <-time.After(quiet):
	}
}

// connect dials conn, answers CONNECT with CONNECTED and waits for Opened.
func connect(t *testing.T, c stomp.Client, dialer *mocks.Dialer, conn *mocks.Conn, events <-chan stomp.LifecycleEvent, opts stomp.ConnectOptions, serverHeartBeat string) *frame.Frame {
	t.Helper()
	dialer.On("Dial", mock.Anything, uri, mock.Anything).Return(conn, nil).Once()
	err := c.Connect(context.Background(), uri, opts)
	require.Nil(t, err, fmt.Sprintf("unexpected connect error %s", err))
	assert.Equal(t, stomp.Connecting, c.State())

	cf := expectFrame(t, conn, frame.CONNECT)
	conn.PushFrame(frame.New(frame.CONNECTED, frame.Version, "1.2", frame.HeartBeat, serverHeartBeat))
	expectEvent(t, events, stomp.EventOpened)
	assert.Equal(t, stomp.Connected, c.State())

	return cf
}

func message(sub, body string) *frame.Frame {
	f := frame.New(frame.MESSAGE, frame.Subscription, sub, frame.Destination, "/topic/a", frame.MessageID, "m-"+sub)
	f.Body = []byte(body)
	return f
}

func TestConnect(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()

	cf := connect(t, c, dialer, conn, events, connectOpts, "0,0")

	cases := []struct {
		header string
		value  string
	}{
		{header: frame.AcceptVersion, value: "1.1,1.2"},
		{header: frame.Host, value: "localhost"},
		{header: frame.HeartBeat, value: "0,0"},
		{header: frame.Authorization, value: token},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.value, cf.Get(tc.header), fmt.Sprintf("CONNECT header %s: expected %s got %s", tc.header, tc.value, cf.Get(tc.header)))
	}

	err := c.Connect(context.Background(), uri, connectOpts)
	assert.True(t, errors.Contains(err, errors.ErrAlreadyConnected), fmt.Sprintf("expected %s got %s", errors.ErrAlreadyConnected, err))
	dialer.AssertNumberOfCalls(t, "Dial", 1)
}

func TestConnectFailures(t *testing.T) {
	cases := []struct {
		desc    string
		dialErr error
		sendErr error
		err     error
	}{
		{
			desc:    "dial refused",
			dialErr: errDial,
			err:     errDial,
		},
		{
			desc:    "CONNECT write fails",
			sendErr: io.ErrClosedPipe,
			err:     io.ErrClosedPipe,
		},
	}

	for _, tc := range cases {
		c, dialer := newClient()
		events := c.Lifecycle()
		conn := mocks.NewConn()
		conn.SetSendError(tc.sendErr)
		if tc.dialErr != nil {
			dialer.On("Dial", mock.Anything, uri, mock.Anything).Return(nil, tc.dialErr).Once()
		} else {
			dialer.On("Dial", mock.Anything, uri, mock.Anything).Return(conn, nil).Once()
		}

		err := c.Connect(context.Background(), uri, connectOpts)
		assert.True(t, errors.Contains(err, errors.ErrTransport), fmt.Sprintf("%s: expected %s got %s\n", tc.desc, errors.ErrTransport, err))
		assert.True(t, errors.Contains(err, tc.err), fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.err, err))

		ev := expectEvent(t, events, stomp.EventError)
		assert.True(t, errors.Contains(ev.Err, tc.err), fmt.Sprintf("%s: expected event cause %s got %s\n", tc.desc, tc.err, ev.Err))
		assert.False(t, ev.Time.IsZero(), tc.desc)
		assert.Equal(t, stomp.Failed, c.State(), tc.desc)
		expectNoEvent(t, events)
		c.Close()
	}
}

func TestSendNotConnected(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()

	err := c.Send(context.Background(), "/app/chat/20/send", []byte(`{"message":"hi"}`))
	assert.True(t, errors.Contains(err, errors.ErrNotConnected), fmt.Sprintf("expected %s got %s", errors.ErrNotConnected, err))

	_, err = c.Subscribe(context.Background(), "/chat/20/messages")
	assert.True(t, errors.Contains(err, errors.ErrNotConnected), fmt.Sprintf("expected %s got %s", errors.ErrNotConnected, err))

	dialer.AssertNotCalled(t, "Dial", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, stomp.Disconnected, c.State())
}

func TestSend(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()
	connect(t, c, dialer, conn, events, connectOpts, "0,0")

	cases := []struct {
		desc    string
		payload []byte
		opts    []stomp.SendOption
		headers frame.Headers
	}{
		{
			desc:    "send json payload",
			payload: []byte(`{"message":"hi"}`),
			opts:    []stomp.SendOption{stomp.WithContentType(codec.ContentTypeJSON)},
			headers: frame.Headers{
				{Key: frame.Destination, Value: "/app/chat/20/send"},
				{Key: frame.ContentType, Value: codec.ContentTypeJSON},
				{Key: frame.ContentLength, Value: "16"},
			},
		},
		{
			desc:    "send binary payload with custom header",
			payload: []byte{0x00, 0x01, 0x00},
			opts:    []stomp.SendOption{stomp.WithHeader("priority", "9")},
			headers: frame.Headers{
				{Key: frame.Destination, Value: "/app/chat/20/send"},
				{Key: "priority", Value: "9"},
				{Key: frame.ContentLength, Value: "3"},
			},
		},
		{
			desc:    "send empty payload",
			payload: nil,
			headers: frame.Headers{
				{Key: frame.Destination, Value: "/app/chat/20/send"},
				{Key: frame.ContentLength, Value: "0"},
			},
		},
	}

	for _, tc := range cases {
		err := c.Send(context.Background(), "/app/chat/20/send", tc.payload, tc.opts...)
		require.Nil(t, err, fmt.Sprintf("%s: unexpected error %s", tc.desc, err))

		f := expectFrame(t, conn, frame.SEND)
		assert.Equal(t, tc.headers, f.Headers, tc.desc)
		if len(tc.payload) == 0 {
			assert.Nil(t, f.Body, tc.desc)
			continue
		}
		assert.Equal(t, tc.payload, f.Body, tc.desc)
	}
}

func TestSendWithReceipt(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()
	connect(t, c, dialer, conn, events, connectOpts, "0,0")

	errs := make(chan error, 1)
	go func() {
		errs <- c.Send(context.Background(), "/app/chat/20/send", []byte("hi"), stomp.WithReceipt())
	}()

	f := expectFrame(t, conn, frame.SEND)
	receipt := f.Get(frame.Receipt)
	assert.Equal(t, uuid.MockID(1), receipt)

	conn.PushFrame(frame.New(frame.RECEIPT, frame.ReceiptID, "unrelated"))
	conn.PushFrame(frame.New(frame.RECEIPT, frame.ReceiptID, receipt))
	select {
	case err := <-errs:
		assert.Nil(t, err, fmt.Sprintf("unexpected error %s", err))
	case <-time.After(waitFor):
		t.Fatal("send did not return after receipt")
	}

	go func() {
		errs <- c.Send(context.Background(), "/app/chat/20/send", []byte("bye"), stomp.WithReceipt())
	}()
	expectFrame(t, conn, frame.SEND)
	require.Nil(t, c.Disconnect(context.Background()))
	select {
	case err := <-errs:
		assert.True(t, errors.Contains(err, errors.ErrReceiptTimeout), fmt.Sprintf("expected %s got %s", errors.ErrReceiptTimeout, err))
	case <-time.After(waitFor):
		t.Fatal("send did not return after disconnect")
	}

	expectEvent(t, events, stomp.EventClosed)

	conn2 := mocks.NewConn()
	connect(t, c, dialer, conn2, events, connectOpts, "0,0")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.Send(ctx, "/app/chat/20/send", []byte("slow"), stomp.WithReceipt())
	assert.True(t, errors.Contains(err, errors.ErrReceiptTimeout), fmt.Sprintf("expected %s got %s", errors.ErrReceiptTimeout, err))
}

func TestSubscribeEnvelopeEndToEnd(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()
	connect(t, c, dialer, conn, events, connectOpts, "0,0")

	sub, err := c.Subscribe(context.Background(), "/topic/a", stomp.WithEnvelope())
	require.Nil(t, err, fmt.Sprintf("unexpected error %s", err))
	assert.Equal(t, uuid.MockID(1), sub.ID())
	assert.Equal(t, "/topic/a", sub.Destination())

	sf := expectFrame(t, conn, frame.SUBSCRIBE)
	assert.Equal(t, sub.ID(), sf.Get(frame.ID))
	assert.Equal(t, "/topic/a", sf.Get(frame.Destination))
	assert.Equal(t, "auto", sf.Get(frame.Ack))

	conn.PushFrame(message(sub.ID(), `{"success":true,"data":{"msg":"hi"}}`))

	msg, ok := receive(t, sub)
	require.True(t, ok)
	var data chatMessage
	require.Nil(t, msg.Decode(codec.JSON(), &data))
	assert.Equal(t, chatMessage{Msg: "hi"}, data)
	expectNoMessage(t, sub)
}

func TestSubscribeRawAndRejected(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()
	connect(t, c, dialer, conn, events, connectOpts, "0,0")

	raw, err := c.Subscribe(context.Background(), "/user/10/queue/messages", stomp.WithID("private"), stomp.WithSubscribeHeader("selector", "type = 'chat'"))
	require.Nil(t, err)
	sf := expectFrame(t, conn, frame.SUBSCRIBE)
	assert.Equal(t, "private", sf.Get(frame.ID))
	assert.Equal(t, "type = 'chat'", sf.Get("selector"))

	env, err := c.Subscribe(context.Background(), "/chat/20/messages", stomp.WithEnvelope())
	require.Nil(t, err)
	expectFrame(t, conn, frame.SUBSCRIBE)

	_, err = c.Subscribe(context.Background(), "/chat/20/messages", stomp.WithID("private"))
	assert.True(t, errors.Contains(err, errors.ErrSubscriptionExists), fmt.Sprintf("expected %s got %s", errors.ErrSubscriptionExists, err))

	conn.PushFrame(message("private", "plain text"))
	conn.PushFrame(message(env.ID(), `{"success":false,"message":"room closed"}`))

	msg, ok := receive(t, raw)
	require.True(t, ok)
	assert.Equal(t, "plain text", string(msg.Data))
	assert.Nil(t, msg.Err)

	msg, ok = receive(t, env)
	require.True(t, ok)
	assert.True(t, errors.Contains(msg.Err, errors.ErrEnvelopeRejected), fmt.Sprintf("expected %s got %s", errors.ErrEnvelopeRejected, msg.Err))
	assert.Empty(t, msg.Data)
	assert.Equal(t, stomp.Connected, c.State(), "payload errors never affect the session")
	expectNoEvent(t, events)
}

func TestSubscribeReservedHeaders(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()
	connect(t, c, dialer, conn, events, connectOpts, "0,0")

	cases := []struct {
		desc   string
		header string
	}{
		{desc: "override subscription id", header: frame.ID},
		{desc: "override destination", header: frame.Destination},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			sub, err := c.Subscribe(context.Background(), "/topic/a", stomp.WithSubscribeHeader(tc.header, "wire-id"))
			assert.True(t, errors.Contains(err, stomp.ErrReservedHeader), fmt.Sprintf("expected %s got %s", stomp.ErrReservedHeader, err))
			assert.Nil(t, sub)
		})
	}

	sub, err := c.Subscribe(context.Background(), "/topic/a", stomp.WithID("wire-id"))
	require.Nil(t, err)
	sf := expectFrame(t, conn, frame.SUBSCRIBE)
	assert.Equal(t, "wire-id", sf.Get(frame.ID))
	assert.Equal(t, "/topic/a", sf.Get(frame.Destination))

	conn.PushFrame(message("wire-id", "routed"))
	msg, ok := receive(t, sub)
	require.True(t, ok)
	assert.Equal(t, "routed", string(msg.Body))
	assert.Equal(t, "wire-id", msg.Subscription)
	assert.Equal(t, stomp.Connected, c.State())
}

func TestOrphanMessage(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()
	connect(t, c, dialer, conn, events, connectOpts, "0,0")

	sub, err := c.Subscribe(context.Background(), "/topic/a")
	require.Nil(t, err)
	expectFrame(t, conn, frame.SUBSCRIBE)

	conn.PushFrame(message("unknown", "lost"))
	conn.PushFrame(message(sub.ID(), "kept"))

	msg, ok := receive(t, sub)
	require.True(t, ok)
	assert.Equal(t, "kept", string(msg.Body))
	expectNoMessage(t, sub)
	expectNoEvent(t, events)
	assert.Equal(t, stomp.Connected, c.State())
}

func TestSubscribeWhileConnecting(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()
	dialer.On("Dial", mock.Anything, uri, mock.Anything).Return(conn, nil).Once()

	require.Nil(t, c.Connect(context.Background(), uri, connectOpts))
	expectFrame(t, conn, frame.CONNECT)

	sub, err := c.Subscribe(context.Background(), "/chat/20/messages")
	require.Nil(t, err)
	assert.Equal(t, 0, conn.Pending(), "SUBSCRIBE must wait for CONNECTED")

	conn.PushFrame(frame.New(frame.CONNECTED, frame.Version, "1.2"))
	sf := expectFrame(t, conn, frame.SUBSCRIBE)
	assert.Equal(t, sub.ID(), sf.Get(frame.ID))
	expectEvent(t, events, stomp.EventOpened)
}

func TestResubscribeAfterFailure(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()
	events := c.Lifecycle()
	first := mocks.NewConn()
	connect(t, c, dialer, first, events, connectOpts, "0,0")

	destinations := []string{"/chat/20/messages", "/user/10/queue/messages", "/topic/a"}
	var subs []*stomp.Subscription
	for _, dest := range destinations {
		sub, err := c.Subscribe(context.Background(), dest)
		require.Nil(t, err)
		expectFrame(t, first, frame.SUBSCRIBE)
		subs = append(subs, sub)
	}
	require.Nil(t, c.Unsubscribe(context.Background(), subs[2].ID()))
	uf := expectFrame(t, first, frame.UNSUBSCRIBE)
	assert.Equal(t, subs[2].ID(), uf.Get(frame.ID))
	_, ok := receive(t, subs[2])
	assert.False(t, ok, "unsubscribed channel must be closed")

	first.Fail(io.ErrUnexpectedEOF)
	ev := expectEvent(t, events, stomp.EventError)
	assert.True(t, errors.Contains(ev.Err, errors.ErrTransport), fmt.Sprintf("expected %s got %s", errors.ErrTransport, ev.Err))
	assert.Equal(t, stomp.Failed, c.State())
	assert.Eventually(t, first.Closed, waitFor, time.Millisecond)

	second := mocks.NewConn()
	dialer.On("Dial", mock.Anything, uri, mock.Anything).Return(second, nil).Once()
	require.Nil(t, c.Connect(context.Background(), uri, connectOpts))
	expectFrame(t, second, frame.CONNECT)
	second.PushFrame(frame.New(frame.CONNECTED, frame.Version, "1.2", frame.HeartBeat, "0,0"))

	for i, sub := range subs[:2] {
		sf := expectFrame(t, second, frame.SUBSCRIBE)
		assert.Equal(t, sub.ID(), sf.Get(frame.ID), fmt.Sprintf("resubscription %d keeps the original id", i))
		assert.Equal(t, destinations[i], sf.Get(frame.Destination))
	}
	expectEvent(t, events, stomp.EventOpened)

	second.PushFrame(message(subs[0].ID(), "after reconnect"))
	msg, ok := receive(t, subs[0])
	require.True(t, ok, "channels survive a failed session")
	assert.Equal(t, "after reconnect", string(msg.Body))
}

func TestProtocolFailures(t *testing.T) {
	cases := []struct {
		desc    string
		inbound string
		err     error
	}{
		{
			desc:    "server ERROR frame",
			inbound: string(frame.Encode(frame.New(frame.ERROR, frame.Message, "malformed destination"))),
			err:     errors.ErrProtocol,
		},
		{
			desc:    "malformed command",
			inbound: "garbage",
			err:     frame.ErrMalformedCommand,
		},
		{
			desc:    "header without colon",
			inbound: "MESSAGE\nbroken\n\n\x00",
			err:     frame.ErrMalformedHeaderLine,
		},
		{
			desc:    "missing NUL",
			inbound: "MESSAGE\nsubscription:x\n\nbody",
			err:     frame.ErrMissingTerminator,
		},
	}

	for _, tc := range cases {
		c, dialer := newClient()
		events := c.Lifecycle()
		conn := mocks.NewConn()
		connect(t, c, dialer, conn, events, connectOpts, "0,0")
		sub, err := c.Subscribe(context.Background(), "/topic/a")
		require.Nil(t, err, tc.desc)
		expectFrame(t, conn, frame.SUBSCRIBE)

		conn.Push(tc.inbound)
		ev := expectEvent(t, events, stomp.EventError)
		assert.True(t, errors.Contains(ev.Err, errors.ErrProtocol), fmt.Sprintf("%s: expected %s got %s\n", tc.desc, errors.ErrProtocol, ev.Err))
		assert.True(t, errors.Contains(ev.Err, tc.err), fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.err, ev.Err))
		assert.Equal(t, stomp.Failed, c.State(), tc.desc)
		expectNoEvent(t, events)

		require.Nil(t, c.Disconnect(context.Background()), tc.desc)
		expectEvent(t, events, stomp.EventClosed)
		_, ok := receive(t, sub)
		assert.False(t, ok, fmt.Sprintf("%s: disconnect after failure closes subscriptions", tc.desc))
		c.Close()
	}
}

func TestUnknownCommandIsDropped(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()
	connect(t, c, dialer, conn, events, connectOpts, "0,0")

	conn.Push("PING\n\n\x00")
	conn.PushFrame(frame.New(frame.CONNECTED))
	conn.Push("\n")
	expectNoEvent(t, events)
	assert.Equal(t, stomp.Connected, c.State())
}

func TestDisconnect(t *testing.T) {
	c, dialer := newClient()
	events := c.Lifecycle()
	conn := mocks.NewConn()
	connect(t, c, dialer, conn, events, connectOpts, "0,0")

	sub, err := c.Subscribe(context.Background(), "/topic/a")
	require.Nil(t, err)
	expectFrame(t, conn, frame.SUBSCRIBE)

	require.Nil(t, c.Disconnect(context.Background()))
	assert.Equal(t, stomp.Closed, c.State())

	log := conn.Log()
	require.GreaterOrEqual(t, len(log), 2)
	last, err := frame.Decode([]byte(log[len(log)-2]))
	require.Nil(t, err)
	assert.Equal(t, frame.DISCONNECT, last.Command, "DISCONNECT is sent before the transport closes")
	assert.Equal(t, mocks.CloseEvent, log[len(log)-1])

	_, ok := receive(t, sub)
	assert.False(t, ok, "subscription channel closed")

	require.Nil(t, c.Disconnect(context.Background()), "disconnect is idempotent")
	err = c.Send(context.Background(), "/app/chat/20/send", []byte("late"))
	assert.True(t, errors.Contains(err, errors.ErrNotConnected), fmt.Sprintf("expected %s got %s", errors.ErrNotConnected, err))

	require.Nil(t, c.Close())
	var got []stomp.EventType
	for ev := range events {
		got = append(got, ev.Type)
	}
	assert.Equal(t, []stomp.EventType{stomp.EventClosed}, got, "Closed fires exactly once")
}

func TestDisconnectWithoutSession(t *testing.T) {
	c, _ := newClient()
	events := c.Lifecycle()

	require.Nil(t, c.Disconnect(context.Background()))
	require.Nil(t, c.Close())

	_, ok := <-events
	assert.False(t, ok, "no events without a session")
	assert.True(t, errors.Contains(c.Connect(context.Background(), uri, connectOpts), stomp.ErrClientClosed))
}

func TestRemoteClose(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()
	connect(t, c, dialer, conn, events, connectOpts, "0,0")

	sub, err := c.Subscribe(context.Background(), "/topic/a")
	require.Nil(t, err)
	expectFrame(t, conn, frame.SUBSCRIBE)

	conn.RemoteClose()
	expectEvent(t, events, stomp.EventClosed)
	assert.Equal(t, stomp.Closed, c.State())
	_, ok := receive(t, sub)
	assert.False(t, ok)
	expectNoEvent(t, events)
}

func TestHeartbeat(t *testing.T) {
	factory := ticker.NewMockFactory()
	clk := &clock{now: time.Unix(1700000000, 0)}
	c, dialer := newClient(stomp.WithHeartbeatOptions(heartbeat.WithTicker(factory.New), heartbeat.WithClock(clk.Now), heartbeat.WithGrace(2)))
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()

	opts := connectOpts
	opts.HeartBeat = heartbeat.Config{Outgoing: time.Second, Incoming: 2 * time.Second}
	cf := connect(t, c, dialer, conn, events, opts, "3000,500")
	assert.Equal(t, "1000,2000", cf.Get(frame.HeartBeat))

	out := factory.Get(time.Second)
	require.NotNil(t, out, "outgoing interval is max(1000, 500)")
	in := factory.Get(3 * time.Second)
	require.NotNil(t, in, "incoming interval is max(2000, 3000)")

	out.Fire(clk.Now())
	f, err := conn.NextFrame(waitFor)
	require.Nil(t, err)
	assert.Nil(t, f, "expected heartbeat")

	in.Fire(clk.Advance(5 * time.Second))
	expectNoEvent(t, events)

	in.Fire(clk.Advance(2 * time.Second))
	expectEvent(t, events, stomp.EventHeartbeatTimeout)
	ev := expectEvent(t, events, stomp.EventError)
	assert.True(t, errors.Contains(ev.Err, errors.ErrHeartbeatTimeout), fmt.Sprintf("expected %s got %s", errors.ErrHeartbeatTimeout, ev.Err))
	assert.Equal(t, stomp.Failed, c.State())
	assert.Eventually(t, out.Stopped, waitFor, time.Millisecond)
}

func TestDisabledHeartbeat(t *testing.T) {
	factory := ticker.NewMockFactory()
	c, dialer := newClient(stomp.WithHeartbeatOptions(heartbeat.WithTicker(factory.New)))
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()

	opts := connectOpts
	opts.HeartBeat = heartbeat.Config{Outgoing: 10 * time.Second, Incoming: 10 * time.Second}
	connect(t, c, dialer, conn, events, opts, "0,0")

	assert.Equal(t, 0, factory.Len(), "0,0 from the server disables both directions")
	expectNoEvent(t, events)
	assert.Equal(t, 0, conn.Pending())
}

func TestConcurrentSendAndDisconnect(t *testing.T) {
	c, dialer := newClient()
	defer c.Close()
	events := c.Lifecycle()
	conn := mocks.NewConn()
	connect(t, c, dialer, conn, events, connectOpts, "0,0")

	const senders = 50
	results := make([]error, senders)
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Send(context.Background(), "/app/chat/20/send", []byte(fmt.Sprintf("%d", i)))
		}(i)
	}
	require.Nil(t, c.Disconnect(context.Background()))
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Contains(err, errors.ErrNotConnected), fmt.Sprintf("expected %s got %s", errors.ErrNotConnected, err))
	}

	sent := 0
	closed := false
	for _, entry := range conn.Log() {
		if entry == mocks.CloseEvent {
			closed = true
			continue
		}
		f, err := frame.Decode([]byte(entry))
		require.Nil(t, err)
		assert.False(t, closed, "no frame after close")
		if f.Command == frame.SEND {
			sent++
		}
	}
	assert.Equal(t, succeeded, sent, "every successful send reached the transport")
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
