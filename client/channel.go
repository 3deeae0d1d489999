package client

import (
	"context"
	"errors"
	"sync/atomic"

	"glade/protocol"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

var ErrNotConnected = errors.New("channel not connected")

// Conn is the part of a websocket connection the channel needs.
type Conn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

type DialFunc func(ctx context.Context, url string) (Conn, error)

const readLimit = 1 << 20

// DialWebsocket opens a websocket connection to url.
func DialWebsocket(ctx context.Context, url string) (Conn, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c.SetReadLimit(readLimit)
	return c, nil
}

type Handler func(protocol.Message)

// session is one connect attempt. Its goroutines never touch channel state;
// they only exchange messages through the queues.
type session struct {
	outbox    chan protocol.Message
	cancel    context.CancelFunc
	connected atomic.Bool
	closed    atomic.Bool
}

type inbound struct {
	session *session
	message protocol.Message
}

// Channel owns the server connection. Reads and writes happen on
// background goroutines, but handlers only ever run from Drain on the game
// tick.
type Channel struct {
	url        string
	codec      protocol.Codec
	dial       DialFunc
	log        *zap.Logger
	handlers   map[string][]Handler
	inbox      chan inbound
	outboxSize int

	session *session
	id      string
}

type ChannelOption func(*Channel)

func WithDialer(dial DialFunc) ChannelOption {
	return func(c *Channel) {
		c.dial = dial
	}
}

func WithQueueSizes(inbox, outbox int) ChannelOption {
	return func(c *Channel) {
		c.inbox = make(chan inbound, inbox)
		c.outboxSize = outbox
	}
}

func NewChannel(url string, codec protocol.Codec, log *zap.Logger, opts ...ChannelOption) *Channel {
	c := &Channel{
		url:        url,
		codec:      codec,
		dial:       DialWebsocket,
		log:        log,
		handlers:   make(map[string][]Handler),
		inbox:      make(chan inbound, 1024),
		outboxSize: 256,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// On registers a handler for event. Register everything before Connect so
// no early event is missed.
func (c *Channel) On(event string, handler Handler) {
	c.handlers[event] = append(c.handlers[event], handler)
}

// Connect starts a single connection attempt in the background. It never
// retries; a failed attempt surfaces as a disconnect event on a later
// Drain.
func (c *Channel) Connect(ctx context.Context) {
	c.Close()

	sctx, cancel := context.WithCancel(ctx)
	s := &session{
		outbox: make(chan protocol.Message, c.outboxSize),
		cancel: cancel,
	}
	c.session = s
	c.id = ""
	go c.run(ctx, sctx, s)
}

// Close ends the current session, if any.
func (c *Channel) Close() {
	if c.session == nil {
		return
	}
	c.session.connected.Store(false)
	c.session.closed.Store(true)
	c.session.cancel()
	c.session = nil
}

func (c *Channel) Connected() bool {
	return c.session != nil && c.session.connected.Load()
}

// ID is the session id the server assigned, empty until connected.
func (c *Channel) ID() string {
	return c.id
}

// Send queues an event for the server. It is dropped with a warning when
// the channel is not open or the queue is full.
func (c *Channel) Send(event string, payload interface{}) {
	if err := c.send(event, payload); err != nil {
		c.log.Warn("dropping outbound message", zap.String("event", event), zap.Error(err))
	}
}

func (c *Channel) send(event string, payload interface{}) error {
	if !c.Connected() {
		return ErrNotConnected
	}
	m, err := protocol.NewMessage(event, payload)
	if err != nil {
		return err
	}
	select {
	case c.session.outbox <- m:
		return nil
	default:
		return errors.New("outbound queue full")
	}
}

// Drain dispatches every queued inbound message. It is called once per
// tick and never blocks.
func (c *Channel) Drain() {
	for len(c.inbox) > 0 {
		select {
		case in := <-c.inbox:
			c.handle(in)
		default:
			return
		}
	}
}

func (c *Channel) handle(in inbound) {
	if in.session != c.session {
		// Left over from a session that has since been replaced.
		return
	}

	m := in.message
	switch m.Event {
	case protocol.EventSession:
		var s protocol.Session
		if err := m.Decode(&s); err != nil {
			c.log.Warn("bad session handshake", zap.Error(err))
			return
		}
		c.id = s.SID
		in.session.connected.Store(true)
		c.log.Info("connected", zap.String("sid", s.SID))
		m = protocol.Message{Event: protocol.EventConnect, Data: m.Data}

	case protocol.EventDisconnect:
		in.session.connected.Store(false)
		c.log.Warn("disconnected", zap.ByteString("reason", m.Data))
	}

	c.dispatch(m)
}

func (c *Channel) dispatch(m protocol.Message) {
	handlers, ok := c.handlers[m.Event]
	if !ok {
		c.log.Debug("no handler", zap.String("event", m.Event))
		return
	}
	for _, h := range handlers {
		h(m)
	}
}

// run dials and pumps one session. ctx is the application's context and
// sctx the session's; a disconnect is still reported after the session
// fails, but not after Close.
func (c *Channel) run(ctx, sctx context.Context, s *session) {
	conn, err := c.dial(sctx, c.url)
	if err != nil {
		c.disconnected(ctx, s, err)
		return
	}
	go func() {
		<-sctx.Done()
		conn.Close(websocket.StatusNormalClosure, "")
	}()
	go c.writeMessages(sctx, s, conn)
	c.readMessages(ctx, sctx, s, conn)
}

// readMessages decodes server frames until the connection fails.
func (c *Channel) readMessages(ctx, sctx context.Context, s *session, conn Conn) {
	for {
		typ, b, err := conn.Read(sctx)
		if err != nil {
			c.disconnected(ctx, s, err)
			return
		}
		if len(b) == 0 {
			continue
		}
		m, err := c.codec.Decode(typ, b)
		if err != nil {
			c.log.Warn("dropping undecodable frame", zap.Error(err))
			continue
		}
		c.push(sctx, s, m)
	}
}

// writeMessages sends queued events until the session ends. A failed write
// closes the connection, which the reader then reports.
func (c *Channel) writeMessages(sctx context.Context, s *session, conn Conn) {
	for {
		select {
		case m := <-s.outbox:
			typ, b, err := c.codec.Encode(m)
			if err != nil {
				c.log.Warn("dropping unencodable message", zap.String("event", m.Event), zap.Error(err))
				continue
			}
			if err := conn.Write(sctx, typ, b); err != nil {
				c.log.Warn("write failed", zap.String("event", m.Event), zap.Error(err))
				conn.Close(websocket.StatusInternalError, "write failed")
				return
			}
		case <-sctx.Done():
			return
		}
	}
}

func (c *Channel) disconnected(ctx context.Context, s *session, err error) {
	s.connected.Store(false)
	if s.closed.Load() {
		return
	}
	m, _ := protocol.NewMessage(protocol.EventDisconnect, err.Error())
	c.push(ctx, s, m)
}

func (c *Channel) push(ctx context.Context, s *session, m protocol.Message) {
	select {
	case c.inbox <- inbound{session: s, message: m}:
	case <-ctx.Done():
	}
}
