package codec

import (
	"encoding/binary"

	"github.com/jcweaver997/rfe/internal/msg"
)

// VarintCodec is the default Codec: little-endian unsigned varints
// (encoding/binary's LEB128 helpers) for every integer field, a
// (length, bytes) framing for every variable-length value, and a
// (kind, payload-length, payload) framing for the tagged Msg union.
type VarintCodec struct{}

// New returns the default codec.
func New() *VarintCodec { return &VarintCodec{} }

func putUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func putBytes(buf []byte, b []byte) []byte {
	buf = putUvarint(buf, uint64(len(b)))
	return append(buf, b...)
}

func takeUvarint(data []byte) (uint64, int, error) {
	v, n := binary.Uvarint(data)
	if n == 0 {
		return 0, 0, ErrShortBuffer
	}
	if n < 0 {
		return 0, 0, ErrMalformed
	}
	return v, n, nil
}

func takeBytes(data []byte) ([]byte, int, error) {
	l, n, err := takeUvarint(data)
	if err != nil {
		return nil, 0, err
	}
	if uint64(len(data)-n) < l {
		return nil, 0, ErrShortBuffer
	}
	return data[n : n+int(l)], n + int(l), nil
}

// EncodeBatch implements Codec.
func (VarintCodec) EncodeBatch(pkts []msg.MsgPacket) ([]byte, error) {
	buf := putUvarint(nil, uint64(len(pkts)))
	for _, p := range pkts {
		enc, err := (VarintCodec{}).EncodePacket(p)
		if err != nil {
			return nil, err
		}
		buf = putBytes(buf, enc)
	}
	return buf, nil
}

// DecodeBatch implements Codec.
func (c VarintCodec) DecodeBatch(data []byte) ([]msg.MsgPacket, int, error) {
	count, n, err := takeUvarint(data)
	if err != nil {
		return nil, 0, err
	}
	total := n
	pkts := make([]msg.MsgPacket, 0, count)
	for i := uint64(0); i < count; i++ {
		raw, m, err := takeBytes(data[total:])
		if err != nil {
			return nil, 0, err
		}
		total += m
		p, _, err := c.DecodePacket(raw)
		if err != nil {
			// raw is a complete length-prefixed packet, so running out
			// of bytes inside it means the packet is malformed.
			if err == ErrShortBuffer {
				err = ErrMalformed
			}
			return nil, 0, err
		}
		pkts = append(pkts, p)
	}
	return pkts, total, nil
}

// EncodePacket implements Codec.
func (VarintCodec) EncodePacket(p msg.MsgPacket) ([]byte, error) {
	buf := putUvarint(nil, uint64(p.Instance))
	buf = putUvarint(buf, uint64(p.Msg.Kind()))
	buf = putUvarint(buf, p.Timestamp)
	payload, err := encodePayload(p.Msg)
	if err != nil {
		return nil, err
	}
	buf = putBytes(buf, payload)
	return buf, nil
}

// DecodePacket implements Codec.
func (VarintCodec) DecodePacket(data []byte) (msg.MsgPacket, int, error) {
	var p msg.MsgPacket
	inst, n, err := takeUvarint(data)
	if err != nil {
		return p, 0, err
	}
	total := n
	kind, n, err := takeUvarint(data[total:])
	if err != nil {
		return p, 0, err
	}
	total += n
	ts, n, err := takeUvarint(data[total:])
	if err != nil {
		return p, 0, err
	}
	total += n
	payload, n, err := takeBytes(data[total:])
	if err != nil {
		return p, 0, err
	}
	total += n

	m, err := decodePayload(msg.MsgKind(kind), payload)
	if err != nil {
		return p, 0, err
	}

	p.Instance = msg.Instance(inst)
	p.Timestamp = ts
	p.Msg = m
	return p, total, nil
}
