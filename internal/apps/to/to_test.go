package to

import (
	"testing"

	"github.com/jcweaver997/rfe/internal/connector"
	"github.com/jcweaver997/rfe/internal/msg"
	"github.com/jcweaver997/rfe/internal/rfe"
	"github.com/jcweaver997/rfe/internal/rfetime"
)

// fakeDownlink is an in-memory Connector standing in for TO's private
// ground link; it never has anything for Recv to return unless a test
// pushes to inbound.
type fakeDownlink struct {
	sent    [][]msg.MsgPacket
	inbound [][]msg.MsgPacket
}

func (f *fakeDownlink) Send(pkts []msg.MsgPacket) {
	f.sent = append(f.sent, pkts)
}

func (f *fakeDownlink) Recv() ([]msg.MsgPacket, bool) {
	if len(f.inbound) == 0 {
		return nil, false
	}
	pkts := f.inbound[0]
	f.inbound = f.inbound[1:]
	return pkts, true
}

func (f *fakeDownlink) forwardedCount() int {
	n := 0
	for _, batch := range f.sent {
		n += len(batch)
	}
	return n
}

func TestToDecimationForwardsExpectedCount(t *testing.T) {
	setID := msg.TlmSetId(1)
	tlmSets := map[msg.TlmSetId]msg.ToTlmSet{
		setID: {
			ID:      setID,
			Enabled: true,
			Items: []msg.TlmSetItem{
				{Target: msg.TargetMsg{Instance: msg.InstanceAll, Kind: msg.KindHsHk}, Decimation: 9},
			},
		},
	}

	downlink := &fakeDownlink{}
	app := New(downlink, tlmSets, nil)

	inst := rfe.New(msg.InstanceTO, rfetime.NewSchedulerDriver(), nil)
	probe, side := connector.NewMemConnectorPair(8)
	inst.AddConnector(side)
	if err := inst.AddApp("to", app); err != nil {
		t.Fatal(err)
	}

	batch := make([]msg.MsgPacket, 20)
	for i := range batch {
		batch[i] = msg.MsgPacket{Instance: msg.InstanceHS, Msg: msg.HsHk{Counter: uint32(i)}}
	}
	probe.Send(batch)

	// tick0 delivers the batch into TO's inbox (TO.Run is due but runs
	// before connector ingress); tick1 is off-rate; tick2 is TO's next
	// due tick, which drains and processes the full batch.
	inst.Run()
	inst.Run()
	inst.Run()

	if got := downlink.forwardedCount(); got != 2 {
		t.Fatalf("forwarded %d packets, want 2 (matches 0 and 10 selected by decimation 9)", got)
	}

	set := app.tlmSets[setID]
	if set.Items[0].Counter != 20 {
		t.Errorf("item counter = %d, want 20", set.Items[0].Counter)
	}
}

func TestToDisableTlmSetStopsDelivery(t *testing.T) {
	setID := msg.TlmSetId(1)
	tlmSets := map[msg.TlmSetId]msg.ToTlmSet{
		setID: {
			ID:      setID,
			Enabled: true,
			Items: []msg.TlmSetItem{
				{Target: msg.TargetMsg{Instance: msg.InstanceAll, Kind: msg.KindHsHk}, Decimation: 0},
			},
		},
	}

	downlink := &fakeDownlink{}
	app := New(downlink, tlmSets, nil)

	inst := rfe.New(msg.InstanceTO, rfetime.NewSchedulerDriver(), nil)
	probe, side := connector.NewMemConnectorPair(8)
	inst.AddConnector(side)
	if err := inst.AddApp("to", app); err != nil {
		t.Fatal(err)
	}

	probe.Send([]msg.MsgPacket{{Instance: msg.InstanceTO, Msg: msg.ToCmd{Op: msg.ToCmdDisableTlmSet, TlmSetID: setID}}})
	inst.Run()
	inst.Run()
	inst.Run()

	if app.tlmSets[setID].Enabled {
		t.Fatal("expected set to be disabled")
	}

	before := downlink.forwardedCount()
	probe.Send([]msg.MsgPacket{{Instance: msg.InstanceHS, Msg: msg.HsHk{}}})
	inst.Run()
	inst.Run()
	inst.Run()

	if got := downlink.forwardedCount(); got != before {
		t.Errorf("forwarded %d packets after disable, want unchanged %d", got, before)
	}
}
