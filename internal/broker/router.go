package broker

import (
	"github.com/quantfeed/tradecast/internal/model"
)

// Route handles one raw inbound provider payload.
//
// Unparseable or incomplete trades are logged and dropped; the
// upstream framing offers no redelivery, so there is nothing useful to
// surface to consumers. A valid trade is delivered to every consumer
// subscribed to (host, symbol) whose cached trade for that symbol is
// strictly older; equal timestamps are duplicates and dropped.
func (b *Broker) Route(host string, data []byte) {
	trade, err := model.ParseTrade(data)
	if err != nil {
		b.logger.Warn("dropping unroutable provider message",
			"host", host,
			"bytes", len(data),
			"error", err,
		)
		return
	}

	// Delivery happens under the registry lock: senders only enqueue
	// or fail immediately, and keeping the freshness check and the
	// send atomic is what makes delivered timestamps strictly
	// increasing per (consumer, symbol) even when trades for one
	// symbol arrive through different hosts.
	b.mu.Lock()
	for c := range b.consumers {
		set := c.subscriptions[host]
		if _, ok := set[trade.Symbol]; !ok {
			continue
		}

		// Absent cache entry counts as older than any timestamp.
		if last, ok := c.latest[trade.Symbol]; ok && trade.Timestamp <= last.Timestamp {
			continue
		}

		c.latest[trade.Symbol] = trade
		if err := c.sender.Send(trade); err != nil {
			b.logger.Warn("trade delivery failed",
				"consumer", c.ID,
				"symbol", trade.Symbol,
				"error", err,
			)
		}
	}
	b.mu.Unlock()
}
