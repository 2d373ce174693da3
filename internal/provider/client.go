package provider

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quantfeed/tradecast/internal/broker"
)

// ErrClosed is returned by Send after the connection has been closed.
var ErrClosed = errors.New("connection closed")

// Config holds outbound connection settings.
type Config struct {
	HandshakeTimeout time.Duration // Dial deadline
	WriteTimeout     time.Duration // Write deadline for sends and pings
	PingInterval     time.Duration // Keepalive ping cadence
	MessageBuffer    int           // Inbound message channel capacity
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		PingInterval:     15 * time.Second,
		MessageBuffer:    1000,
	}
}

// Dialer opens WebSocket connections to provider hosts.
type Dialer struct {
	cfg    Config
	logger *slog.Logger
}

// NewDialer creates a Dialer.
func NewDialer(cfg Config, logger *slog.Logger) *Dialer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dialer{cfg: cfg, logger: logger}
}

// Dial connects to host, which must be a WebSocket URL. The returned
// connection is already pumping inbound messages.
func (d *Dialer) Dial(ctx context.Context, host string) (broker.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.cfg.HandshakeTimeout,
	}

	ws, _, err := dialer.DialContext(ctx, host, nil)
	if err != nil {
		return nil, err
	}

	c := &conn{
		cfg:      d.cfg,
		logger:   d.logger.With("host", host),
		ws:       ws,
		messages: make(chan []byte, d.cfg.MessageBuffer),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}

	go c.readLoop()
	go c.pingLoop()

	c.logger.Debug("provider websocket connected")
	return c, nil
}

// conn is one live provider connection.
type conn struct {
	cfg    Config
	logger *slog.Logger
	ws     *websocket.Conn

	messages chan []byte
	errors   chan error
	done     chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Send writes raw bytes to the provider.
func (c *conn) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Messages returns the inbound message channel; it closes when the
// connection closes for any reason.
func (c *conn) Messages() <-chan []byte {
	return c.messages
}

// Errors returns the transport error channel. At most one error is
// delivered, just before the message channel closes.
func (c *conn) Errors() <-chan error {
	return c.errors
}

// Close gracefully closes the connection.
func (c *conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMu.Lock()
		c.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		c.writeMu.Unlock()

		err = c.ws.Close()
	})
	return err
}

// readLoop pumps inbound frames into the message channel.
func (c *conn) readLoop() {
	defer close(c.messages)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			// Errors after Close are the expected teardown noise.
			select {
			case <-c.done:
			default:
				select {
				case c.errors <- err:
				default:
				}
			}
			return
		}

		select {
		case c.messages <- data:
		case <-c.done:
			return
		default:
			c.logger.Warn("message buffer full, dropping message")
		}
	}
}

// pingLoop sends keepalive pings until the connection closes.
func (c *conn) pingLoop() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := c.ws.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
			}
		}
	}
}
