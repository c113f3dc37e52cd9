package ws

import (
	"codeclash/internal/logging"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 256
)

var (
	// ErrNotConnected is returned by Emit before Connect or after the link dropped
	ErrNotConnected = errors.New("realtime channel not connected")
	// ErrSendBufferFull is returned when the writer cannot keep up
	ErrSendBufferFull = errors.New("realtime send buffer full")
)

// Handler receives the raw payload of one inbound event
type Handler func(payload json.RawMessage)

// Subscription identifies one On registration
type Subscription struct {
	Type MessageType
	ID   string
}

// Realtime is the event channel surface screens depend on
type Realtime interface {
	Connect(ctx context.Context) error
	Emit(t MessageType, payload any) error
	On(t MessageType, h Handler) Subscription
	Off(sub Subscription)
}

// TokenSource supplies the bearer token sent when dialing
type TokenSource interface {
	Token() string
}

type subscriber struct {
	id string
	fn Handler
}

// Channel is the single shared realtime connection. Every screen reuses it;
// inbound events are dispatched in arrival order on the reader goroutine.
type Channel struct {
	url    string
	tokens TokenSource
	dialer *websocket.Dialer
	log    *zap.Logger

	mu    sync.Mutex
	conn  *websocket.Conn
	send  chan []byte
	done  chan struct{}
	dials int

	hmu      sync.RWMutex
	handlers map[MessageType][]subscriber
}

// NewChannel creates an unconnected channel for the given ws:// or wss:// URL
func NewChannel(rawURL string, tokens TokenSource, log *zap.Logger) *Channel {
	return &Channel{
		url:    rawURL,
		tokens: tokens,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
		log:      logging.OrNop(log).Named("ws"),
		handlers: make(map[MessageType][]subscriber),
	}
}

func (c *Channel) dialURL() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", fmt.Errorf("parse socket url: %w", err)
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			q := u.Query()
			q.Set("token", tok)
			u.RawQuery = q.Encode()
		}
	}
	return u.String(), nil
}

// Connect opens the transport unless it is already open. Concurrent callers
// share one dial.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	target, err := c.dialURL()
	if err != nil {
		return err
	}
	conn, _, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		c.log.Warn("dial failed", zap.String("url", c.url), zap.Error(err))
		return fmt.Errorf("dial realtime channel: %w", err)
	}

	c.conn = conn
	c.send = make(chan []byte, sendBuffer)
	c.done = make(chan struct{})
	c.dials++

	go c.writePump(conn, c.send, c.done)
	go c.readPump(conn)

	c.log.Info("connected", zap.String("url", c.url), zap.Int("dials", c.dials))
	return nil
}

// Connected reports whether the transport is open
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Emit queues a fire-and-forget event
func (c *Channel) Emit(t MessageType, payload any) error {
	data, err := Encode(t, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	select {
	case c.send <- data:
		c.log.Debug("emit", zap.String("type", string(t)))
		return nil
	default:
		c.log.Warn("send buffer full, dropping", zap.String("type", string(t)))
		return ErrSendBufferFull
	}
}

// On registers h for events of type t
func (c *Channel) On(t MessageType, h Handler) Subscription {
	sub := Subscription{Type: t, ID: uuid.NewString()}
	c.hmu.Lock()
	c.handlers[t] = append(c.handlers[t], subscriber{id: sub.ID, fn: h})
	c.hmu.Unlock()
	return sub
}

// Off removes a registration. Unknown subscriptions are ignored.
func (c *Channel) Off(sub Subscription) {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	subs := c.handlers[sub.Type]
	for i, s := range subs {
		if s.id == sub.ID {
			c.handlers[sub.Type] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(c.handlers[sub.Type]) == 0 {
		delete(c.handlers, sub.Type)
	}
}

// Handlers counts the live registrations for t
func (c *Channel) Handlers(t MessageType) int {
	c.hmu.RLock()
	defer c.hmu.RUnlock()
	return len(c.handlers[t])
}

// Close shuts the transport down. Subscriptions survive so a later Connect
// resumes delivery.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn = nil
	close(c.done)
	c.log.Info("closed")
	return nil
}

// dropped clears conn if it is still the live connection
func (c *Channel) dropped(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return
	}
	c.conn = nil
	close(c.done)
	c.log.Warn("connection lost")
}

func (c *Channel) dispatch(msg *Message) {
	c.hmu.RLock()
	subs := append([]subscriber(nil), c.handlers[msg.Type]...)
	c.hmu.RUnlock()

	if len(subs) == 0 {
		c.log.Debug("unhandled event", zap.String("type", string(msg.Type)))
		return
	}
	for _, s := range subs {
		s.fn(msg.Payload)
	}
}

func (c *Channel) readPump(conn *websocket.Conn) {
	defer func() {
		c.dropped(conn)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read error", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			c.log.Warn("dropping malformed frame", zap.Int("bytes", len(data)))
			continue
		}
		c.dispatch(&msg)
	}
}

func (c *Channel) writePump(conn *websocket.Conn, send <-chan []byte, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			if !drain(conn, send) {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// drain writes whatever was queued before a close. It reports false when a
// write failed.
func drain(conn *websocket.Conn, send <-chan []byte) bool {
	for {
		select {
		case message := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return false
			}
		default:
			return true
		}
	}
}
