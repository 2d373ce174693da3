package broker

import (
	"context"

	"github.com/google/uuid"

	"github.com/quantfeed/tradecast/internal/model"
)

// Sender delivers a JSON-serializable object to one consumer.
// Implementations must not block: they enqueue or return an error
// immediately (consumer closing or backlogged), because the broker
// invokes Send while holding its registry lock. Failures are logged
// and the broker moves on.
type Sender interface {
	Send(v any) error
}

// Conn is one established outbound provider connection.
//
// Messages closes when the connection closes for any reason; Errors
// carries at most one transport error before that.
type Conn interface {
	Send(data []byte) error
	Messages() <-chan []byte
	Errors() <-chan error
	Close() error
}

// Dialer opens outbound provider connections. The host is an opaque
// string key; its addressing scheme belongs to the transport.
type Dialer interface {
	Dial(ctx context.Context, host string) (Conn, error)
}

// SymbolFilter answers membership queries against the symbol universe.
type SymbolFilter interface {
	IsValid(symbol string) bool
}

// ProviderState tracks one pool entry's lifecycle.
type ProviderState string

const (
	StateConnecting ProviderState = "connecting"
	StateOpen       ProviderState = "open"
	StateClosed     ProviderState = "closed"
)

// Consumer is one registered client connection. All fields besides ID
// and sender are guarded by the broker mutex.
type Consumer struct {
	ID     uuid.UUID
	sender Sender

	subscriptions map[string]map[string]struct{} // host → symbols
	latest        map[string]model.Trade         // symbol → last delivered trade
}

// Stats is a snapshot of registry sizes.
type Stats struct {
	Consumers     int
	Providers     int
	Subscriptions int // total (consumer, host) pairs
}
