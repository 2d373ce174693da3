// Package protocol defines the consumer-facing command and response
// wire contract.
//
// Commands are single-action JSON objects:
//   - {"action": "add-provider", "host": "...", "symbols": [...]}
//   - {"action": "clear-providers"}
//   - {"action": "clear-prices"}
//
// Every command is answered with exactly one
// {"status": "processed"|"not processed", "message"?: "..."} object;
// connection outcomes for add-provider arrive as a second,
// asynchronous response once the provider link settles.
package protocol
