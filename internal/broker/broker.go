package broker

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/quantfeed/tradecast/internal/model"
	"github.com/quantfeed/tradecast/internal/protocol"
)

// Broker is the subscription routing core. One instance owns every
// consumer and provider registry; all registry access is serialized
// behind a single mutex, so handler invocations are atomic with
// respect to each other.
type Broker struct {
	dialer Dialer
	filter SymbolFilter
	logger *slog.Logger

	mu        sync.Mutex
	consumers map[*Consumer]struct{}
	providers map[string]*provider
}

// New creates a Broker.
func New(dialer Dialer, filter SymbolFilter, logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}

	return &Broker{
		dialer:    dialer,
		filter:    filter,
		logger:    logger,
		consumers: make(map[*Consumer]struct{}),
		providers: make(map[string]*provider),
	}
}

// Register creates a consumer entry with empty subscription and
// latest-trade maps.
func (b *Broker) Register(sender Sender) *Consumer {
	c := &Consumer{
		ID:            uuid.New(),
		sender:        sender,
		subscriptions: make(map[string]map[string]struct{}),
		latest:        make(map[string]model.Trade),
	}

	b.mu.Lock()
	b.consumers[c] = struct{}{}
	count := len(b.consumers)
	b.mu.Unlock()

	b.logger.Info("consumer registered", "consumer", c.ID, "consumers", count)
	return c
}

// Subscribe filters symbols through the symbol universe, ensures a
// shared connection to host exists, and records the subscription.
//
// A request whose symbols all fall outside the universe is processed
// as a no-op: no pool entry is created and no error is raised.
func (b *Broker) Subscribe(c *Consumer, host string, symbols []string) protocol.Response {
	filtered := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if b.filter.IsValid(s) {
			filtered = append(filtered, s)
		}
	}

	if len(filtered) == 0 {
		return protocol.Processed("no known symbols in request")
	}

	b.mu.Lock()
	if _, ok := b.consumers[c]; !ok {
		// Consumer disconnected between read and dispatch.
		b.mu.Unlock()
		return protocol.NotProcessed("consumer is gone")
	}

	b.ensureConnectedLocked(host, c)

	set := c.subscriptions[host]
	if set == nil {
		set = make(map[string]struct{}, len(filtered))
		c.subscriptions[host] = set
	}
	for _, s := range filtered {
		set[s] = struct{}{}
	}
	b.mu.Unlock()

	b.logger.Debug("subscribed",
		"consumer", c.ID,
		"host", host,
		"symbols", len(filtered),
	)

	return protocol.Processed("")
}

// UnsubscribeAll drops every subscription the consumer holds and
// releases each host, closing connections nobody references anymore.
// Safe to call on a consumer with no subscriptions.
func (b *Broker) UnsubscribeAll(c *Consumer) {
	b.mu.Lock()
	hosts := make([]string, 0, len(c.subscriptions))
	for host := range c.subscriptions {
		hosts = append(hosts, host)
		delete(c.subscriptions, host)
	}

	var orphans []*provider
	for _, host := range hosts {
		if p := b.releaseLocked(host); p != nil {
			orphans = append(orphans, p)
		}
	}
	b.mu.Unlock()

	for _, p := range orphans {
		p.shutdown()
		b.logger.Info("provider connection closed", "host", p.host)
	}
}

// ClearLatest empties the consumer's latest-trade cache; subscriptions
// are untouched, so the next trade per symbol is delivered again.
func (b *Broker) ClearLatest(c *Consumer) {
	b.mu.Lock()
	clear(c.latest)
	b.mu.Unlock()
}

// Deregister removes the consumer entirely, releasing every host it
// was the sole subscriber of. Called on disconnect or transport error.
func (b *Broker) Deregister(c *Consumer) {
	b.UnsubscribeAll(c)

	b.mu.Lock()
	delete(b.consumers, c)
	count := len(b.consumers)
	b.mu.Unlock()

	b.logger.Info("consumer deregistered", "consumer", c.ID, "consumers", count)
}

// Stats returns a snapshot of registry sizes.
func (b *Broker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := 0
	for c := range b.consumers {
		subs += len(c.subscriptions)
	}

	return Stats{
		Consumers:     len(b.consumers),
		Providers:     len(b.providers),
		Subscriptions: subs,
	}
}

// Shutdown closes every provider connection. Consumers are left to the
// transport layer, which deregisters them as their sockets close.
func (b *Broker) Shutdown() {
	b.mu.Lock()
	orphans := make([]*provider, 0, len(b.providers))
	for host, p := range b.providers {
		delete(b.providers, host)
		p.state = StateClosed
		orphans = append(orphans, p)
	}
	b.mu.Unlock()

	for _, p := range orphans {
		p.shutdown()
	}
}

// notify sends a response to one consumer, swallowing delivery errors:
// a consumer that disconnected mid-subscribe must not take the pool
// down with it.
func (b *Broker) notify(c *Consumer, resp protocol.Response) {
	if c == nil {
		return
	}
	if err := c.sender.Send(resp); err != nil {
		b.logger.Debug("response delivery failed", "consumer", c.ID, "error", err)
	}
}
