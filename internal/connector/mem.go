package connector

import "github.com/jcweaver997/rfe/internal/msg"

// MemConnector is a paired in-process Connector, one end held by each
// side of a simulated link. It is primarily used to drive two
// RfeInstances, or a scheduler and a test harness, against each other
// without any real I/O.
type MemConnector struct {
	out chan<- []msg.MsgPacket
	in  <-chan []msg.MsgPacket
}

// NewMemConnectorPair returns two connected MemConnectors: batches sent
// on one are received by the other. bufSize bounds how many
// not-yet-received batches each direction can hold before Send starts
// silently dropping, matching the "send/recv errors are swallowed"
// contract.
func NewMemConnectorPair(bufSize int) (a, b *MemConnector) {
	ab := make(chan []msg.MsgPacket, bufSize)
	ba := make(chan []msg.MsgPacket, bufSize)
	return &MemConnector{out: ab, in: ba}, &MemConnector{out: ba, in: ab}
}

func (c *MemConnector) Send(pkts []msg.MsgPacket) {
	select {
	case c.out <- pkts:
	default:
		// Peer's inbound buffer is full; drop, per the swallowed-error contract.
	}
}

func (c *MemConnector) Recv() ([]msg.MsgPacket, bool) {
	select {
	case pkts := <-c.in:
		return pkts, true
	default:
		return nil, false
	}
}
