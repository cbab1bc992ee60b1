package connector

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/jcweaver997/rfe/internal/codec"
	"github.com/jcweaver997/rfe/internal/msg"
)

// EncryptingConnector wraps another Connector and encrypts each
// outbound batch (and decrypts each inbound one) with ChaCha20-Poly1305
// under a pre-shared key, prefixing the ciphertext with a random
// nonce. It decorates rather than replaces a transport, so the same
// key can be layered over UDP, TCP, or any other Connector. The inner
// Connector carries the sealed bytes as a single msg.RawFrame packet,
// so it never needs to know encryption is happening.
type EncryptingConnector struct {
	inner  Connector
	aead   cipher.AEAD
	codec  codec.Codec
	logger *slog.Logger
}

// NewEncryptingConnector builds a decorator around inner using a
// 32-byte key. Returns an error if the key is not a valid
// ChaCha20-Poly1305 key length.
func NewEncryptingConnector(inner Connector, key []byte, logger *slog.Logger) (*EncryptingConnector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("encrypting connector: %w", err)
	}
	return &EncryptingConnector{
		inner:  inner,
		aead:   a,
		codec:  codec.New(),
		logger: logger.With("connector", "encrypting"),
	}, nil
}

func (c *EncryptingConnector) Send(pkts []msg.MsgPacket) {
	enc, err := c.codec.EncodeBatch(pkts)
	if err != nil {
		c.logger.Error("failed to encode batch for encryption", "error", err)
		return
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		c.logger.Error("failed to generate nonce", "error", err)
		return
	}
	sealed := c.aead.Seal(nonce, nonce, enc, nil)
	c.inner.Send([]msg.MsgPacket{{Instance: msg.InstanceNone, Msg: msg.RawFrame(sealed)}})
}

func (c *EncryptingConnector) Recv() ([]msg.MsgPacket, bool) {
	pkts, ok := c.inner.Recv()
	if !ok {
		return nil, false
	}
	if len(pkts) != 1 {
		c.logger.Warn("unexpected multi-packet frame from inner connector, dropping")
		return nil, false
	}
	frame, ok := pkts[0].Msg.(msg.RawFrame)
	if !ok {
		c.logger.Warn("inner connector delivered a non-raw frame, dropping")
		return nil, false
	}
	nonceSize := c.aead.NonceSize()
	if len(frame) < nonceSize {
		c.logger.Warn("ciphertext shorter than nonce, dropping")
		return nil, false
	}
	nonce, ciphertext := frame[:nonceSize], frame[nonceSize:]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		c.logger.Warn("decryption failed, dropping frame", "error", err)
		return nil, false
	}
	decoded, _, err := c.codec.DecodeBatch(plain)
	if err != nil {
		c.logger.Warn("decrypted batch failed to decode", "error", err)
		return nil, false
	}
	return decoded, true
}

// Close closes the inner connector if it supports it.
func (c *EncryptingConnector) Close() error {
	if cl, ok := c.inner.(interface{ Close() error }); ok {
		return cl.Close()
	}
	return nil
}
