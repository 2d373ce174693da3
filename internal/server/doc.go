// Package server implements the inbound consumer transport.
//
// Consumers attach over WebSocket at /ws. Each connection is
// registered with the broker, gets a buffered outbound queue drained
// by a write pump, and has its inbound frames dispatched as commands;
// close or error on either side deregisters the consumer. /healthz
// reports registry sizes for monitoring.
package server
