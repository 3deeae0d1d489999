package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"glade/protocol"

	"nhooyr.io/websocket"
)

type sent struct {
	event   string
	payload interface{}
}

type fakeSender struct {
	connected bool
	sent      []sent
}

func (s *fakeSender) Send(event string, payload interface{}) {
	s.sent = append(s.sent, sent{event: event, payload: payload})
}

func (s *fakeSender) Connected() bool {
	return s.connected
}

func (s *fakeSender) events() []string {
	var events []string
	for _, m := range s.sent {
		events = append(events, m.event)
	}
	return events
}

type fakeUI struct {
	opened   []string
	open     map[string]bool
	accepted []protocol.NicknameSuccess
	rejected []string
	feed     []protocol.GuestbookPost
	posts    []protocol.GuestbookPost
}

func (u *fakeUI) OpenSurface(name string) {
	if u.open == nil {
		u.open = make(map[string]bool)
	}
	u.open[name] = true
	u.opened = append(u.opened, name)
}

func (u *fakeUI) SurfaceOpen(name string) bool {
	return u.open[name]
}

func (u *fakeUI) NicknameAccepted(s protocol.NicknameSuccess) {
	u.accepted = append(u.accepted, s)
}

func (u *fakeUI) NicknameRejected(message string) {
	u.rejected = append(u.rejected, message)
}

func (u *fakeUI) GuestbookFeed(posts []protocol.GuestbookPost) {
	u.feed = posts
}

func (u *fakeUI) GuestbookPost(post protocol.GuestbookPost) {
	u.posts = append(u.posts, post)
}

var errConnClosed = errors.New("connection closed")

type frame struct {
	typ websocket.MessageType
	b   []byte
}

// fakeConn is one end of an in-memory websocket. Tests play the server by
// writing to in and reading from out.
type fakeConn struct {
	in     chan frame
	out    chan frame
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan frame, 16),
		out:    make(chan frame, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	select {
	case f := <-c.in:
		return f.typ, f.b, nil
	case <-c.closed:
		return 0, nil, errConnClosed
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (c *fakeConn) Write(ctx context.Context, typ websocket.MessageType, b []byte) error {
	select {
	case c.out <- frame{typ: typ, b: b}:
		return nil
	case <-c.closed:
		return errConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *fakeConn) Close(websocket.StatusCode, string) error {
	c.once.Do(func() {
		close(c.closed)
	})
	return nil
}

// serve encodes an event and queues it for the client to read.
func (c *fakeConn) serve(t *testing.T, event string, payload interface{}) {
	t.Helper()
	m, err := protocol.NewMessage(event, payload)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	typ, b, err := protocol.JSONCodec{}.Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	c.in <- frame{typ: typ, b: b}
}

// next returns the next message the client wrote.
func (c *fakeConn) next(t *testing.T) protocol.Message {
	t.Helper()
	select {
	case f := <-c.out:
		m, err := protocol.JSONCodec{}.Decode(f.typ, f.b)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an outbound message")
	}
	return protocol.Message{}
}

func dialTo(conn Conn) DialFunc {
	return func(context.Context, string) (Conn, error) {
		return conn, nil
	}
}

// waitFor calls tick until cond holds, as the game loop would.
func waitFor(t *testing.T, tick func(), cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		tick()
		time.Sleep(time.Millisecond)
	}
}
