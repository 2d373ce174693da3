package broker

import (
	"github.com/quantfeed/tradecast/internal/protocol"
)

// HandleCommand parses and dispatches one consumer command, returning
// the immediate response. Connection outcomes for add-provider arrive
// asynchronously through the consumer's sender once the pool settles.
func (b *Broker) HandleCommand(c *Consumer, raw []byte) protocol.Response {
	cmd, ok := protocol.ParseCommand(raw)
	if !ok {
		return protocol.NotProcessed("malformed command")
	}

	switch cmd.Action {
	case protocol.ActionAddProvider:
		if cmd.Host == "" || cmd.Symbols == nil {
			return protocol.NotProcessed("add-provider requires host and symbols")
		}
		return b.Subscribe(c, cmd.Host, *cmd.Symbols)

	case protocol.ActionClearProviders:
		b.UnsubscribeAll(c)
		return protocol.Processed("")

	case protocol.ActionClearPrices:
		b.ClearLatest(c)
		return protocol.Processed("")

	default:
		return protocol.NotProcessed("unknown action: " + cmd.Action)
	}
}
