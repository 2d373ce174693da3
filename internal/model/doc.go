// Package model defines shared data types used across tradecast.
//
// Conventions:
//   - Prices and quantities: float64, forwarded exactly as received
//   - Timestamps: int64 on the provider's own clock, compared only
//     against other timestamps from the same symbol
//   - Hosts and symbols: opaque strings
package model
