package connector

import (
	"log/slog"

	"go.bug.st/serial"

	"github.com/jcweaver997/rfe/internal/codec"
	"github.com/jcweaver997/rfe/internal/msg"
)

const serialReadChunk = 512

// SerialConnector frames batches over a serial port the same way
// TCPConnector frames them over a stream socket: the codec's
// self-delimiting encoding lets a reader resynchronize on partial
// reads without any extra header. This is the transport a bare-metal
// peer with no network stack would use.
type SerialConnector struct {
	port   serial.Port
	codec  codec.Codec
	logger *slog.Logger
	inbox  chan []msg.MsgPacket
}

// NewSerialConnector opens portName (e.g. "/dev/ttyUSB0", "COM3") at
// baud and starts a background reader.
func NewSerialConnector(portName string, baud int, logger *slog.Logger) (*SerialConnector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	c := &SerialConnector{
		port:   port,
		codec:  codec.New(),
		logger: logger.With("connector", "serial", "port", portName),
		inbox:  make(chan []msg.MsgPacket, 64),
	}
	go c.readLoop()
	return c, nil
}

func (c *SerialConnector) readLoop() {
	var pending []byte
	buf := make([]byte, serialReadChunk)
	for {
		n, err := c.port.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		pending = append(pending, buf[:n]...)
		for {
			pkts, consumed, err := c.codec.DecodeBatch(pending)
			if err == codec.ErrShortBuffer {
				break
			}
			if err != nil {
				c.logger.Warn("dropping malformed serial frame, resyncing", "error", err)
				pending = nil
				break
			}
			pending = pending[consumed:]
			select {
			case c.inbox <- pkts:
			default:
				c.logger.Warn("serial inbox full, dropping batch")
			}
		}
	}
}

func (c *SerialConnector) Send(pkts []msg.MsgPacket) {
	enc, err := c.codec.EncodeBatch(pkts)
	if err != nil {
		c.logger.Error("failed to encode serial batch", "error", err)
		return
	}
	if _, err := c.port.Write(enc); err != nil {
		c.logger.Warn("serial write error", "error", err)
	}
}

func (c *SerialConnector) Recv() ([]msg.MsgPacket, bool) {
	select {
	case pkts := <-c.inbox:
		return pkts, true
	default:
		return nil, false
	}
}

// Close releases the underlying port.
func (c *SerialConnector) Close() error {
	return c.port.Close()
}
