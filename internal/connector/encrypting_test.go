package connector

import (
	"bytes"
	"testing"

	"github.com/jcweaver997/rfe/internal/msg"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, 32)
}

func TestEncryptingConnectorRoundTrip(t *testing.T) {
	innerA, innerB := NewMemConnectorPair(4)

	encA, err := NewEncryptingConnector(innerA, testKey(), nil)
	if err != nil {
		t.Fatalf("NewEncryptingConnector: %v", err)
	}
	encB, err := NewEncryptingConnector(innerB, testKey(), nil)
	if err != nil {
		t.Fatalf("NewEncryptingConnector: %v", err)
	}

	sent := []msg.MsgPacket{
		{Instance: msg.InstanceDS, Msg: msg.DsHk{Counter: 9}, Timestamp: 123},
	}
	encA.Send(sent)

	got, ok := encB.Recv()
	if !ok {
		t.Fatal("expected encB to receive and decrypt the batch")
	}
	if len(got) != 1 || got[0].Msg.(msg.DsHk).Counter != 9 || got[0].Timestamp != 123 {
		t.Fatalf("unexpected decrypted batch: %+v", got)
	}
}

func TestEncryptingConnectorWrongKeyFailsToDecrypt(t *testing.T) {
	innerA, innerB := NewMemConnectorPair(4)

	encA, err := NewEncryptingConnector(innerA, testKey(), nil)
	if err != nil {
		t.Fatalf("NewEncryptingConnector: %v", err)
	}
	wrongKey := bytes.Repeat([]byte{0x99}, 32)
	encB, err := NewEncryptingConnector(innerB, wrongKey, nil)
	if err != nil {
		t.Fatalf("NewEncryptingConnector: %v", err)
	}

	encA.Send([]msg.MsgPacket{{Instance: msg.InstanceDS, Msg: msg.DsHk{Counter: 1}}})

	if _, ok := encB.Recv(); ok {
		t.Fatal("expected decryption under the wrong key to fail and be dropped")
	}
}

func TestNewEncryptingConnectorRejectsBadKeyLength(t *testing.T) {
	innerA, _ := NewMemConnectorPair(1)
	if _, err := NewEncryptingConnector(innerA, []byte{1, 2, 3}, nil); err == nil {
		t.Fatal("expected an error for a short key")
	}
}
