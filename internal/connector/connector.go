// Package connector defines the Connector transport contract and ships
// concrete implementations: an in-process pair for tests, and
// real-world transports (UDP, TCP, serial, MQTT, WebSocket) plus an
// encrypting decorator that wraps any of them.
package connector

import "github.com/jcweaver997/rfe/internal/msg"

// Connector is a bidirectional, non-blocking, poll-style transport for
// packet batches. Send and Recv must never block the scheduler tick
// that calls them. Recv returns ok=false when nothing is available;
// implementations backed by real I/O buffer inbound batches on a
// background goroutine and hand at most one batch to each Recv call.
type Connector interface {
	Send(pkts []msg.MsgPacket)
	Recv() (pkts []msg.MsgPacket, ok bool)
}
