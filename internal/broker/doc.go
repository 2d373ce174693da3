// Package broker implements the subscription routing and
// connection-multiplexing core.
//
// The Broker owns two registries behind a single mutex:
//   - consumers: per-consumer subscriptions (host → symbol set) and
//     the last trade delivered per symbol
//   - providers: one shared outbound connection per host, opened on
//     first subscriber and closed when the last subscriber leaves
//
// Provider entries move through {connecting, open, closed}; the
// transport goroutine driving an entry stops firing callbacks the
// moment the entry leaves the pool. Teardown is reference counted by
// scanning consumers rather than keeping an explicit counter.
package broker
