package rfe

import (
	"testing"

	"github.com/jcweaver997/rfe/internal/connector"
	"github.com/jcweaver997/rfe/internal/msg"
	"github.com/jcweaver997/rfe/internal/rfetime"
)

// Fan-out is deferred to the end of the tick a message was sent in,
// so a subscriber never sees its own (or anyone else's) packet before
// the next tick.
func TestDeferredIntraBusFanout(t *testing.T) {
	inst := New(msg.InstanceExample, rfetime.NewSchedulerDriver(), nil)

	var sent bool
	tick := 0
	var observed [2][]msg.MsgPacket // what the app's own Recv returned during each tick's Run
	producer := &testApp{
		rate: Rate100Hz,
		onInit: func(h *Handle) error {
			h.Subscribe(msg.TargetMsg{Instance: msg.InstanceAll, Kind: msg.KindExampleHk})
			return nil
		},
		onRun: func(h *Handle) {
			if !sent {
				h.Send(msg.ExampleHk{Counter: 1})
				sent = true
			}
			for {
				p, ok := h.Recv()
				if !ok {
					break
				}
				observed[tick] = append(observed[tick], p)
			}
		},
	}
	if err := inst.AddApp("producer", producer); err != nil {
		t.Fatalf("AddApp: %v", err)
	}

	inst.Run() // tick 0: Run() sends, but fan-out for packets produced *this* tick happens after
	if len(observed[0]) != 0 {
		t.Fatal("packet must not be observable in the same tick it was sent")
	}

	tick = 1
	inst.Run() // tick 1: now it should have arrived
	if len(observed[1]) == 0 {
		t.Fatal("expected the packet to be delivered by tick 1")
	}
	if hk, ok := observed[1][0].Msg.(msg.ExampleHk); !ok || hk.Counter != 1 {
		t.Fatalf("unexpected payload: %#v", observed[1][0].Msg)
	}
	if len(observed[1]) != 1 {
		t.Fatal("packet must be delivered exactly once")
	}
}

// Loopback is by subscription, not automatic — two apps sharing one
// instance identity, only the subscribed one sees the packet.
func TestLoopbackBySubscription(t *testing.T) {
	inst := New(msg.InstanceExample, rfetime.NewSchedulerDriver(), nil)

	subscriber := &testApp{
		rate: Rate100Hz,
		onInit: func(h *Handle) error {
			h.Subscribe(msg.TargetMsg{Instance: msg.InstanceExample, Kind: msg.KindExampleHk})
			return nil
		},
	}
	var sent bool
	sender := &testApp{
		rate: Rate100Hz,
		onRun: func(h *Handle) {
			if !sent {
				h.Send(msg.ExampleHk{Counter: 7})
				sent = true
			}
		},
	}

	if err := inst.AddApp("subscriber", subscriber); err != nil {
		t.Fatal(err)
	}
	if err := inst.AddApp("sender", sender); err != nil {
		t.Fatal(err)
	}

	inst.Run()
	inst.Run()

	if _, ok := inst.apps["subscriber"].handle.Recv(); !ok {
		t.Fatal("subscribed app should have received the packet")
	}
	if _, ok := inst.apps["sender"].handle.Recv(); ok {
		t.Fatal("sender is not subscribed to its own kind and must not see it")
	}
}

// A SubRequest is answered with the union of all app subscriptions,
// timestamped zero, within the same tick it arrives.
func TestSubRequestYieldsUnionSubList(t *testing.T) {
	inst := New(msg.InstanceExample, rfetime.NewSchedulerDriver(), nil)
	probe, side := connector.NewMemConnectorPair(8)
	inst.AddConnector(side)

	sub := &testApp{
		rate: Rate1Hz,
		onInit: func(h *Handle) error {
			h.Subscribe(msg.TargetMsg{Instance: msg.InstanceAll, Kind: msg.KindExampleHk})
			return nil
		},
	}
	if err := inst.AddApp("sub", sub); err != nil {
		t.Fatal(err)
	}

	probe.Send([]msg.MsgPacket{{Instance: msg.InstanceGround, Msg: msg.MsgSubRequest{}}})

	inst.Run()

	pkts, ok := probe.Recv()
	if !ok || len(pkts) == 0 {
		t.Fatal("expected a response batch containing a SubList")
	}
	list, ok := pkts[0].Msg.(msg.MsgSubList)
	if !ok {
		t.Fatalf("expected MsgSubList, got %#v", pkts[0].Msg)
	}
	if pkts[0].Timestamp != 0 {
		t.Fatalf("SubList response timestamp = %d, want 0", pkts[0].Timestamp)
	}
	want := msg.TargetMsg{Instance: msg.InstanceAll, Kind: msg.KindExampleHk}
	found := false
	for _, s := range list.Subs {
		if s == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("SubList %v does not contain the app's subscription %v", list.Subs, want)
	}
}

// The scheduler sends its first subscription request once 10 ticks
// have passed without an answer; once a SubList has been received it
// only re-requests on a 10000-tick cadence, so no request follows in
// the next 30 ticks.
func TestSubscriptionResyncCadence(t *testing.T) {
	inst := New(msg.InstanceExample, rfetime.NewSchedulerDriver(), nil)
	probe, side := connector.NewMemConnectorPair(8)
	inst.AddConnector(side)

	countRequests := func() int {
		n := 0
		for {
			pkts, ok := probe.Recv()
			if !ok {
				break
			}
			for _, p := range pkts {
				if _, ok := p.Msg.(msg.MsgSubRequest); ok {
					n++
				}
			}
		}
		return n
	}

	for i := 0; i < 10; i++ {
		inst.Run()
	}
	if n := countRequests(); n != 0 {
		t.Fatalf("expected no SubRequest within the first 10 ticks, got %d", n)
	}

	inst.Run() // 11th tick: schCounter was 10 at check time -> first request fires
	if n := countRequests(); n != 1 {
		t.Fatalf("expected exactly one SubRequest at tick 11, got %d", n)
	}

	// Answer it.
	probe.Send([]msg.MsgPacket{{Instance: msg.InstanceGround, Msg: msg.MsgSubList{Subs: nil}}})
	inst.Run() // delivered and processed this tick

	for i := 0; i < 30; i++ {
		inst.Run()
	}
	if n := countRequests(); n != 0 {
		t.Fatal("once a SubList has been received, requests must stop until the long refresh window elapses")
	}
}

// SetTimeCmd sets the offset directly; the next system time read
// reflects it.
func TestSetTimeCmdEffect(t *testing.T) {
	inst := New(msg.InstanceExample, rfetime.NewSchedulerDriver(), nil)
	probe, side := connector.NewMemConnectorPair(8)
	inst.AddConnector(side)

	var observed *Handle
	app := &testApp{
		rate: Rate100Hz,
		onInit: func(h *Handle) error {
			observed = h
			return nil
		},
	}
	if err := inst.AddApp("a", app); err != nil {
		t.Fatal(err)
	}

	probe.Send([]msg.MsgPacket{{Instance: msg.InstanceGround, Msg: msg.MsgSetTimeCmd{EpochMicros: 424242}}})
	inst.Run()

	if got := observed.SystemMicros(); got != inst.SchCounter()+424242 {
		t.Fatalf("SystemMicros() = %d, want schCounter(%d)+424242", got, inst.SchCounter())
	}
}

func TestAddAppDuplicateName(t *testing.T) {
	inst := New(msg.InstanceExample, rfetime.NewSchedulerDriver(), nil)
	app := &testApp{rate: Rate1Hz}
	if err := inst.AddApp("dup", app); err != nil {
		t.Fatal(err)
	}
	if err := inst.AddApp("dup", app); err != ErrDuplicateApp {
		t.Fatalf("expected ErrDuplicateApp, got %v", err)
	}
}
