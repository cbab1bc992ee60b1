package connector

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/jcweaver997/rfe/internal/codec"
	"github.com/jcweaver997/rfe/internal/msg"
)

const tcpReadChunk = 4096

// TCPConnector maintains a single TCP connection to a peer, redialing
// on any write failure. Because TCP is a byte stream, inbound data
// accumulates in a buffer and is decoded batch by batch using the
// codec's self-delimiting framing; a batch split across two reads
// simply waits for the rest to arrive.
type TCPConnector struct {
	addr   string
	codec  codec.Codec
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn

	inbox chan []msg.MsgPacket
}

// NewTCPConnector dials addr ("host:port") and starts a background
// reader. If the initial dial fails, the connector is still returned;
// every Send attempt will try to (re)dial.
func NewTCPConnector(addr string, logger *slog.Logger) *TCPConnector {
	if logger == nil {
		logger = slog.Default()
	}
	c := &TCPConnector{
		addr:   addr,
		codec:  codec.New(),
		logger: logger.With("connector", "tcp", "remote", addr),
		inbox:  make(chan []msg.MsgPacket, 64),
	}
	c.reconnect()
	return c
}

func (c *TCPConnector) reconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
	}
	conn, err := net.DialTimeout("tcp", c.addr, 5*time.Second)
	if err != nil {
		c.logger.Warn("tcp dial failed", "error", err)
		c.conn = nil
		return
	}
	c.conn = conn
	go c.readLoop(conn)
}

func (c *TCPConnector) readLoop(conn net.Conn) {
	var pending []byte
	buf := make([]byte, tcpReadChunk)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		pending = append(pending, buf[:n]...)
		for {
			pkts, consumed, err := c.codec.DecodeBatch(pending)
			if err == codec.ErrShortBuffer {
				break
			}
			if err != nil {
				c.logger.Warn("dropping malformed tcp stream, resyncing", "error", err)
				pending = nil
				break
			}
			pending = pending[consumed:]
			select {
			case c.inbox <- pkts:
			default:
				c.logger.Warn("tcp inbox full, dropping batch")
			}
		}
	}
}

func (c *TCPConnector) Send(pkts []msg.MsgPacket) {
	enc, err := c.codec.EncodeBatch(pkts)
	if err != nil {
		c.logger.Error("failed to encode tcp batch", "error", err)
		return
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		c.reconnect()
		c.mu.Lock()
		conn = c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}
	}
	if _, err := conn.Write(enc); err != nil {
		c.logger.Warn("tcp write error, reconnecting", "error", err)
		c.reconnect()
	}
}

func (c *TCPConnector) Recv() ([]msg.MsgPacket, bool) {
	select {
	case pkts := <-c.inbox:
		return pkts, true
	default:
		return nil, false
	}
}

// Close releases the underlying connection, if any.
func (c *TCPConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
