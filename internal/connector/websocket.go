package connector

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jcweaver997/rfe/internal/codec"
	"github.com/jcweaver997/rfe/internal/msg"
)

// WebSocketConnector carries one encoded batch per binary WebSocket
// message. On a read error it drops the connection and leaves it to
// Send to redial, the same reconnect-on-failure contract as
// TCPConnector.
type WebSocketConnector struct {
	url    string
	codec  codec.Codec
	logger *slog.Logger

	connMu sync.Mutex
	conn   *websocket.Conn

	inbox chan []msg.MsgPacket
}

// NewWebSocketConnector dials url ("ws://..." or "wss://...") and
// starts a background reader. If the initial dial fails, the
// connector is still returned; the first Send call will retry.
func NewWebSocketConnector(url string, logger *slog.Logger) *WebSocketConnector {
	if logger == nil {
		logger = slog.Default()
	}
	c := &WebSocketConnector{
		url:    url,
		codec:  codec.New(),
		logger: logger.With("connector", "websocket", "url", url),
		inbox:  make(chan []msg.MsgPacket, 64),
	}
	c.reconnect()
	return c
}

func (c *WebSocketConnector) reconnect() {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn != nil {
		c.conn.Close()
	}
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		c.logger.Warn("websocket dial failed", "error", err)
		c.conn = nil
		return
	}
	c.conn = conn
	go c.readLoop(conn)
}

func (c *WebSocketConnector) readLoop(conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info("websocket closed normally")
			} else {
				c.logger.Warn("websocket read error, connection lost", "error", err)
			}
			c.connMu.Lock()
			if c.conn == conn {
				conn.Close()
				c.conn = nil
			}
			c.connMu.Unlock()
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		pkts, _, err := c.codec.DecodeBatch(data)
		if err != nil {
			c.logger.Warn("dropping malformed websocket batch", "error", err)
			continue
		}
		select {
		case c.inbox <- pkts:
		default:
			c.logger.Warn("websocket inbox full, dropping batch")
		}
	}
}

func (c *WebSocketConnector) Send(pkts []msg.MsgPacket) {
	enc, err := c.codec.EncodeBatch(pkts)
	if err != nil {
		c.logger.Error("failed to encode websocket batch", "error", err)
		return
	}
	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn == nil {
		c.reconnect()
		c.connMu.Lock()
		conn = c.conn
		c.connMu.Unlock()
		if conn == nil {
			return
		}
	}
	c.connMu.Lock()
	err = conn.WriteMessage(websocket.BinaryMessage, enc)
	c.connMu.Unlock()
	if err != nil {
		c.logger.Warn("websocket write error, reconnecting", "error", err)
		c.reconnect()
	}
}

func (c *WebSocketConnector) Recv() ([]msg.MsgPacket, bool) {
	select {
	case pkts := <-c.inbox:
		return pkts, true
	default:
		return nil, false
	}
}

// Close closes the underlying connection, if any.
func (c *WebSocketConnector) Close() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
