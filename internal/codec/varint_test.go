package codec

import (
	"reflect"
	"testing"

	"github.com/jcweaver997/rfe/internal/msg"
)

func TestRoundTripPacket(t *testing.T) {
	c := New()
	cases := []msg.MsgPacket{
		{Instance: msg.InstanceExample, Msg: msg.ExampleHk{
			Counter: 42,
			Perf:    msg.PerfData{EnterTime: 123456, Elapsed: 80, Rate: 1_000_000},
		}, Timestamp: 1000},
		{Instance: msg.InstanceDS, Msg: msg.DsCmd{Op: msg.DsCmdClose, CloseID: 7}, Timestamp: 0},
		{
			Instance: msg.InstanceDS,
			Msg: msg.DsCmd{Op: msg.DsCmdAddTlmSet, TlmSet: msg.DsTlmSet{
				ID:      7,
				Enabled: true,
				Path:    "log/x",
				Items: []msg.TlmSetItem{
					{Target: msg.TargetMsg{Instance: msg.InstanceAll, Kind: msg.KindHsHk}, Decimation: 2, Counter: 0},
				},
			}},
			Timestamp: 55,
		},
		{Instance: msg.InstanceHS, Msg: msg.HsHk{
			Counter:         3,
			CPUUsage:        []byte{1, 2, 3},
			MemUsage:        50,
			FsUsage:         []byte{9},
			Temps:           []int8{-5, 10, -128, 127},
			CmdCounter:      2,
			CPUUsageEnabled: true,
			Perf:            msg.PerfData{EnterTime: 9_999_999, Elapsed: 12, Rate: 999_913},
		}, Timestamp: 99},
		{Instance: msg.InstanceGround, Msg: msg.MsgSubList{Subs: []msg.TargetMsg{
			{Instance: msg.InstanceAll, Kind: msg.KindHsHk},
			{Instance: msg.InstanceExample, Kind: msg.KindExampleCmd},
		}}, Timestamp: 123},
	}

	for i, want := range cases {
		enc, err := c.EncodePacket(want)
		if err != nil {
			t.Fatalf("case %d: encode: %v", i, err)
		}
		got, n, err := c.DecodePacket(enc)
		if err != nil {
			t.Fatalf("case %d: decode: %v", i, err)
		}
		if n != len(enc) {
			t.Fatalf("case %d: consumed %d, want %d", i, n, len(enc))
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("case %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestRoundTripBatch(t *testing.T) {
	c := New()
	batch := []msg.MsgPacket{
		{Instance: msg.InstanceExample, Msg: msg.ExampleHk{Counter: 1}, Timestamp: 1},
		{Instance: msg.InstanceExample, Msg: msg.ExampleHk{Counter: 2}, Timestamp: 2},
	}
	enc, err := c.EncodeBatch(batch)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, n, err := c.DecodeBatch(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n != len(enc) {
		t.Fatalf("consumed %d, want %d", n, len(enc))
	}
	if !reflect.DeepEqual(got, batch) {
		t.Fatalf("got %+v, want %+v", got, batch)
	}
}

func TestDecodeBatchShortBuffer(t *testing.T) {
	c := New()
	batch := []msg.MsgPacket{{Instance: msg.InstanceExample, Msg: msg.ExampleHk{Counter: 1}, Timestamp: 1}}
	enc, err := c.EncodeBatch(batch)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, _, err := c.DecodeBatch(enc[:len(enc)-1]); err != ErrShortBuffer {
		t.Fatalf("got %v, want ErrShortBuffer", err)
	}
}

func TestDecodeBatchThenLeftover(t *testing.T) {
	c := New()
	first := []msg.MsgPacket{{Instance: msg.InstanceExample, Msg: msg.ExampleHk{Counter: 1}, Timestamp: 1}}
	second := []msg.MsgPacket{{Instance: msg.InstanceExample, Msg: msg.ExampleHk{Counter: 2}, Timestamp: 2}}
	enc1, _ := c.EncodeBatch(first)
	enc2, _ := c.EncodeBatch(second)
	stream := append(append([]byte{}, enc1...), enc2...)

	got1, n1, err := c.DecodeBatch(stream)
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if !reflect.DeepEqual(got1, first) {
		t.Fatalf("got %+v, want %+v", got1, first)
	}
	got2, n2, err := c.DecodeBatch(stream[n1:])
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if !reflect.DeepEqual(got2, second) {
		t.Fatalf("got %+v, want %+v", got2, second)
	}
	if n1+n2 != len(stream) {
		t.Fatalf("consumed %d, want %d", n1+n2, len(stream))
	}
}
