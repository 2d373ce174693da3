package server

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Delivery errors surfaced to the broker.
var (
	ErrConsumerGone = errors.New("consumer channel closing")
	ErrBacklogged   = errors.New("consumer send queue full")
)

// wsSender queues outbound objects for one consumer and writes them
// from a single pump goroutine, the only writer the websocket allows.
type wsSender struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
	logger       *slog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan any
}

func newSender(ws *websocket.Conn, buffer int, writeTimeout time.Duration, logger *slog.Logger) *wsSender {
	return &wsSender{
		ws:           ws,
		writeTimeout: writeTimeout,
		logger:       logger,
		queue:        make(chan any, buffer),
	}
}

// Send enqueues v for delivery. It fails, rather than blocks, when the
// consumer is closing or cannot keep up; the broker treats either as a
// per-consumer delivery failure.
func (s *wsSender) Send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrConsumerGone
	}

	select {
	case s.queue <- v:
		return nil
	default:
		return ErrBacklogged
	}
}

// writePump drains the queue onto the socket. A write failure closes
// the socket, which unblocks the connection's read loop and triggers
// deregistration.
func (s *wsSender) writePump() {
	for v := range s.queue {
		s.ws.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err := s.ws.WriteJSON(v); err != nil {
			s.logger.Debug("consumer write failed", "error", err)
			s.ws.Close()
			s.drain()
			return
		}
	}
}

// close stops accepting sends and lets the pump finish the backlog.
func (s *wsSender) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.queue)
}

// drain discards queued items after a write failure so close() does
// not leave the pump goroutine parked.
func (s *wsSender) drain() {
	for range s.queue {
	}
}
