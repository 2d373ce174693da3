package broker

import (
	"context"

	"github.com/quantfeed/tradecast/internal/protocol"
)

// provider is one pool entry. state, conn and requester are guarded by
// the broker mutex; host is immutable.
type provider struct {
	host      string
	state     ProviderState
	conn      Conn      // nil until open
	requester *Consumer // consumer whose subscribe created the entry
}

// shutdown closes the underlying connection if one was established.
// Only called after the entry has left the pool, so the run goroutine
// will find it gone and fire no further callbacks.
func (p *provider) shutdown() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// ensureConnectedLocked returns the pool entry for host, creating it
// and starting the outbound connection if none exists. An existing
// entry is reused in any state; no second connection is ever opened
// for the same host.
func (b *Broker) ensureConnectedLocked(host string, requester *Consumer) *provider {
	if p, ok := b.providers[host]; ok {
		return p
	}

	p := &provider{
		host:      host,
		state:     StateConnecting,
		requester: requester,
	}
	b.providers[host] = p

	go b.runProvider(p)
	return p
}

// releaseLocked removes and returns host's pool entry if no consumer
// references it anymore; otherwise nil. Reference counting is a scan
// over consumers, which cannot drift the way an explicit counter can.
func (b *Broker) releaseLocked(host string) *provider {
	for c := range b.consumers {
		if _, ok := c.subscriptions[host]; ok {
			return nil
		}
	}

	p, ok := b.providers[host]
	if !ok {
		return nil
	}

	delete(b.providers, host)
	p.state = StateClosed
	return p
}

// dropHostLocked removes host from every consumer's subscriptions.
// Cached latest trades are left in place: the last known price stays
// visible until the consumer clears it.
func (b *Broker) dropHostLocked(host string) {
	for c := range b.consumers {
		delete(c.subscriptions, host)
	}
}

// runProvider drives one pool entry through its lifecycle: dial,
// announce the outcome to the requesting consumer, then pump inbound
// messages into the router until the connection dies.
//
// Every transition re-checks that this entry still owns its pool slot;
// once release or shutdown has removed it, the goroutine exits without
// firing callbacks.
func (b *Broker) runProvider(p *provider) {
	conn, err := b.dialer.Dial(context.Background(), p.host)

	b.mu.Lock()
	if b.providers[p.host] != p {
		// Released while connecting.
		b.mu.Unlock()
		if err == nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		delete(b.providers, p.host)
		p.state = StateClosed
		b.dropHostLocked(p.host)
		requester := p.requester
		b.mu.Unlock()

		b.logger.Warn("provider connect failed", "host", p.host, "error", err)
		b.notify(requester, protocol.NotProcessed("failed to connect to "+p.host))
		return
	}

	p.conn = conn
	p.state = StateOpen
	requester := p.requester
	b.mu.Unlock()

	b.logger.Info("provider connected", "host", p.host)
	b.notify(requester, protocol.Processed("connected to "+p.host))

	for {
		select {
		case data, ok := <-conn.Messages():
			if !ok {
				// The read loop buffers its transport error just
				// before closing the message channel, so either
				// select case can win; drain the error here so the
				// requester is told either way.
				if b.providerClosed(p) {
					select {
					case err := <-conn.Errors():
						b.logger.Warn("provider connection error", "host", p.host, "error", err)
						b.notify(requester, protocol.NotProcessed("connection error on "+p.host))
					default:
					}
				}
				return
			}
			b.Route(p.host, data)

		case err := <-conn.Errors():
			conn.Close()
			if b.providerClosed(p) {
				b.logger.Warn("provider connection error", "host", p.host, "error", err)
				b.notify(requester, protocol.NotProcessed("connection error on "+p.host))
			}
			return
		}
	}
}

// providerClosed removes a dead entry from the pool and drops the host
// from every consumer's subscriptions. Returns whether this call
// removed the entry; false means release already took it, and no
// further callbacks may fire for it.
func (b *Broker) providerClosed(p *provider) bool {
	b.mu.Lock()
	if b.providers[p.host] != p {
		b.mu.Unlock()
		return false
	}

	delete(b.providers, p.host)
	p.state = StateClosed
	b.dropHostLocked(p.host)
	b.mu.Unlock()

	b.logger.Info("provider disconnected", "host", p.host)
	return true
}
