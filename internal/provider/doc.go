// Package provider implements the outbound provider transport: a
// WebSocket dialer whose connections satisfy the broker's Conn
// interface.
//
// Each connection runs a read loop feeding a buffered message channel
// and a keepalive loop sending pings; the message channel closes when
// the connection dies, which is the broker's close signal.
package provider
