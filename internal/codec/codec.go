// Package codec defines the pluggable wire encoding for message
// batches and provides a deterministic default implementation: a
// varint-tagged scheme built on encoding/binary's little-endian
// unsigned LEB128 helpers.
//
// Selection of the codec is a build-time decision; the only hard
// requirement is wire compatibility between peers.
package codec

import (
	"errors"

	"github.com/jcweaver997/rfe/internal/msg"
)

// ErrShortBuffer is returned by DecodeBatch when data does not yet
// contain a complete, self-delimited batch. Callers buffering a
// byte-stream transport (e.g. TCP) should keep the unconsumed bytes
// and retry once more data has arrived.
var ErrShortBuffer = errors.New("codec: short buffer, need more data")

// ErrMalformed is returned when data contains bytes that cannot be
// decoded as a valid batch. The whole batch is dropped on this error;
// the connector itself is not torn down.
var ErrMalformed = errors.New("codec: malformed batch")

// Codec encodes and decodes batches of MsgPackets for wire transport
// or file storage.
type Codec interface {
	// EncodeBatch serializes a batch of packets to a single
	// self-delimited byte slice.
	EncodeBatch(pkts []msg.MsgPacket) ([]byte, error)

	// DecodeBatch decodes exactly one self-delimited batch from the
	// front of data, returning the packets and the number of bytes
	// consumed. Returns ErrShortBuffer if data does not yet hold a
	// complete batch, or ErrMalformed if the bytes present cannot be
	// a valid encoding.
	DecodeBatch(data []byte) (pkts []msg.MsgPacket, consumed int, err error)

	// EncodePacket serializes a single packet with no length framing,
	// as used by the DS file format (a bare concatenation of encoded
	// packets, no header).
	EncodePacket(p msg.MsgPacket) ([]byte, error)

	// DecodePacket decodes exactly one packet from the front of data.
	DecodePacket(data []byte) (p msg.MsgPacket, consumed int, err error)
}
