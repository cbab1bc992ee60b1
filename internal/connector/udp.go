package connector

import (
	"log/slog"
	"net"

	"github.com/jcweaver997/rfe/internal/codec"
	"github.com/jcweaver997/rfe/internal/msg"
)

const udpReadBufSize = 4096

// UDPConnector sends one whole encoded batch per datagram. A background
// goroutine reads datagrams and decodes them into a bounded channel;
// Recv drains at most one decoded batch per call, satisfying the
// poll-style, non-blocking contract.
type UDPConnector struct {
	conn   *net.UDPConn
	codec  codec.Codec
	logger *slog.Logger
	inbox  chan []msg.MsgPacket
}

// NewUDPConnector binds localAddr and connects to remoteAddr (both
// "host:port"). The connected socket means Write always targets the
// peer and Read only accepts datagrams from it.
func NewUDPConnector(localAddr, remoteAddr string, logger *slog.Logger) (*UDPConnector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	local, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return nil, err
	}
	remote, err := net.ResolveUDPAddr("udp", remoteAddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", local, remote)
	if err != nil {
		return nil, err
	}
	c := &UDPConnector{
		conn:   conn,
		codec:  codec.New(),
		logger: logger.With("connector", "udp", "remote", remoteAddr),
		inbox:  make(chan []msg.MsgPacket, 64),
	}
	go c.readLoop()
	return c, nil
}

func (c *UDPConnector) readLoop() {
	buf := make([]byte, udpReadBufSize)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			// Connection closed or the kernel dropped us; stop quietly,
			// matching the "swallowed at the connector boundary" contract.
			return
		}
		pkts, _, err := c.codec.DecodeBatch(buf[:n])
		if err != nil {
			c.logger.Warn("dropping malformed udp batch", "error", err)
			continue
		}
		select {
		case c.inbox <- pkts:
		default:
			c.logger.Warn("udp inbox full, dropping batch")
		}
	}
}

func (c *UDPConnector) Send(pkts []msg.MsgPacket) {
	enc, err := c.codec.EncodeBatch(pkts)
	if err != nil {
		c.logger.Error("failed to encode udp batch", "error", err)
		return
	}
	if _, err := c.conn.Write(enc); err != nil {
		c.logger.Warn("udp write error", "error", err)
	}
}

func (c *UDPConnector) Recv() ([]msg.MsgPacket, bool) {
	select {
	case pkts := <-c.inbox:
		return pkts, true
	default:
		return nil, false
	}
}

// Close releases the underlying socket.
func (c *UDPConnector) Close() error {
	return c.conn.Close()
}
