// Package transport owns the websocket lifecycle: dialing, the fixed-delay
// reconnect loop, frame decoding, and the per-tag handler registry.
package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dgarridoc/arcanum-client/internal/engine"
	"github.com/dgarridoc/arcanum-client/internal/protocol"
)

// DefaultRedialDelay matches the service's reference client: one reconnect
// attempt every 3 seconds, forever, no backoff.
const DefaultRedialDelay = 3 * time.Second

const writeTimeout = 3 * time.Second

// Handler receives one decoded event for the tag it was registered under.
type Handler func(ev engine.Event)

// StatusFunc observes the connected flag.
type StatusFunc func(connected bool)

type Option func(*Client)

// WithRedialDelay overrides the reconnect delay. Tests use this to keep
// reconnection fast.
func WithRedialDelay(d time.Duration) Option {
	return func(c *Client) { c.redial = d }
}

// Client is a reconnecting websocket client. Exactly one handler is active
// per event tag; the latest registration wins. Frames that fail to decode
// or carry an unregistered tag are dropped.
type Client struct {
	url    string
	log    *zap.Logger
	redial time.Duration

	mu       sync.Mutex
	handlers map[string]Handler
	status   StatusFunc
	conn     *websocket.Conn
	running  bool
	stop     chan struct{}
}

func NewClient(url string, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		url:      url,
		log:      log,
		redial:   DefaultRedialDelay,
		handlers: make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnEvent registers the handler for tag, replacing any previous one, and
// returns an unregister func.
func (c *Client) OnEvent(tag string, h Handler) func() {
	c.mu.Lock()
	c.handlers[tag] = h
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.handlers, tag)
		c.mu.Unlock()
	}
}

// OnStatus registers the status observer. The latest registration wins.
func (c *Client) OnStatus(fn StatusFunc) {
	c.mu.Lock()
	c.status = fn
	c.mu.Unlock()
}

// Connect starts the dial/read/redial loop. Calling it while already
// running is a no-op.
func (c *Client) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	stop := c.stop
	c.mu.Unlock()

	go c.run(ctx, stop)
}

// Disconnect stops the loop and closes any open connection. No reconnect
// is attempted afterwards; Connect may be called again.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stop)
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}
}

// Send serializes cmd and writes it on the open connection. While
// disconnected the command is dropped silently; the command surface is
// responsible for not issuing commands that matter in that window.
func (c *Client) Send(ctx context.Context, cmd any) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		c.log.Debug("send while disconnected, dropping command")
		return
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		c.log.Warn("marshal command failed", zap.Error(err))
		return
	}

	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := conn.Write(wctx, websocket.MessageText, payload); err != nil {
		c.log.Debug("write failed", zap.Error(err))
	}
}

func (c *Client) run(ctx context.Context, stop <-chan struct{}) {
	for {
		attempt := uuid.NewString()[:8]
		conn, _, err := websocket.Dial(ctx, c.url, nil)
		if err != nil {
			c.log.Debug("dial failed",
				zap.String("attempt", attempt), zap.Error(err))
		} else {
			c.mu.Lock()
			if !c.running {
				c.mu.Unlock()
				_ = conn.Close(websocket.StatusNormalClosure, "bye")
				return
			}
			c.conn = conn
			c.mu.Unlock()

			c.log.Info("connected", zap.String("attempt", attempt))
			c.notify(true)
			c.readLoop(ctx, conn)
			c.mu.Lock()
			c.conn = nil
			c.mu.Unlock()
			c.notify(false)
			c.log.Info("connection lost", zap.String("attempt", attempt))
		}

		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-time.After(c.redial):
		}
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		tag, ev, ok := protocol.Decode(data)
		if !ok {
			// Malformed or unknown frames never surface as errors.
			c.log.Debug("dropping frame", zap.String("tag", tag))
			continue
		}

		c.mu.Lock()
		h := c.handlers[tag]
		c.mu.Unlock()
		if h != nil {
			h(ev)
		}
	}
}

func (c *Client) notify(connected bool) {
	c.mu.Lock()
	fn := c.status
	c.mu.Unlock()
	if fn != nil {
		fn(connected)
	}
}
