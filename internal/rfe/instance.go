package rfe

import (
	"log/slog"

	"github.com/jcweaver997/rfe/internal/connector"
	"github.com/jcweaver997/rfe/internal/msg"
	"github.com/jcweaver997/rfe/internal/rfetime"
)

// subsResyncTicks is how long a connector's subscription request goes
// unanswered before it is re-sent.
const subsResyncTicks = 10

// subsRefreshTicks is how long a connector keeps an answered
// subscription list before asking again, to tolerate a peer's
// subscriptions changing without notice.
const subsRefreshTicks = 10000

type appRef struct {
	name        string
	app         App
	handle      *Handle
	appRate     Rate
	hkRate      Rate
	outDataRate Rate
}

type connectorState struct {
	connector         connector.Connector
	subscriptions     map[msg.TargetMsg]struct{}
	subsReceived      bool
	subsLastRequested uint64
}

// RfeInstance is the single-threaded, cooperative scheduler: a fixed
// list of registered apps ticked at 100 Hz, and a fixed list of
// connectors that mediate traffic with the outside world. One
// RfeInstance represents one bus "instance" identity — every app and
// connector registered to it shares that identity for routing
// purposes.
type RfeInstance struct {
	instance msg.Instance
	logger   *slog.Logger

	appOrder []string
	apps     map[string]*appRef

	connectors []*connectorState

	timeData   *rfetime.Data
	timeDriver rfetime.Driver

	schCounter uint64
}

// New creates a scheduler for instance, using driver to derive
// timestamps from the shared TimeData every Handle reads.
func New(instance msg.Instance, driver rfetime.Driver, logger *slog.Logger) *RfeInstance {
	if logger == nil {
		logger = slog.Default()
	}
	return &RfeInstance{
		instance:   instance,
		logger:     logger.With("instance", instance.String()),
		apps:       make(map[string]*appRef),
		timeData:   &rfetime.Data{},
		timeDriver: driver,
	}
}

// SetAppRate overrides the registered app's run rate, housekeeping
// rate, and out-data rate. Call after AddApp; returns ErrAppNotFound if
// name is not registered. A zero Rate leaves that field unchanged; a
// non-zero Rate replaces it, whatever it was set to before.
func (r *RfeInstance) SetAppRate(name string, appRate, hkRate, outDataRate Rate) error {
	ref, ok := r.apps[name]
	if !ok {
		return ErrAppNotFound
	}
	if appRate != 0 {
		ref.appRate = appRate
	}
	if hkRate != 0 {
		ref.hkRate = hkRate
	}
	if outDataRate != 0 {
		ref.outDataRate = outDataRate
	}
	return nil
}

// SchCounter returns the number of ticks run so far.
func (r *RfeInstance) SchCounter() uint64 {
	return r.schCounter
}

// TimeData exposes the shared time state, primarily so a caller can
// drive SetTimeCmd-equivalent behavior directly in tests.
func (r *RfeInstance) TimeData() *rfetime.Data {
	return r.timeData
}

// AddApp registers app under name, builds it a fresh Handle, and calls
// Init. An Init error is logged but does not prevent registration —
// the app stays installed with whatever state Init produced.
func (r *RfeInstance) AddApp(name string, app App) error {
	if _, exists := r.apps[name]; exists {
		return ErrDuplicateApp
	}
	rate := app.Rate()
	ref := &appRef{
		name:        name,
		app:         app,
		handle:      newHandle(r.instance, r.timeData, r.timeDriver),
		appRate:     rate,
		hkRate:      Rate1Hz,
		outDataRate: rate,
	}
	r.apps[name] = ref
	r.appOrder = append(r.appOrder, name)

	if err := app.Init(ref.handle); err != nil {
		r.logger.Error("app failed to initialize", "app", name, "error", err)
	}
	return nil
}

// AddConnector registers c. Connectors are serviced in registration order.
func (r *RfeInstance) AddConnector(c connector.Connector) {
	r.connectors = append(r.connectors, &connectorState{
		connector:     c,
		subscriptions: make(map[msg.TargetMsg]struct{}),
	})
}

// Run executes one scheduler tick. The caller is expected to invoke it
// at 100 Hz (every 10 ms); Run itself performs no sleeping or timing.
func (r *RfeInstance) Run() {
	collected := r.runCallbacksAndCollect()
	r.fanOutIntraBus(collected)
	r.sendToConnectors(collected)
	connectorMsgs := r.recvFromConnectors()
	r.deliverConnectorMsgsToApps(connectorMsgs)
	r.syncConnectorSubscriptions()

	r.schCounter++
	r.timeData.SchCounter++
}

// runCallbacksAndCollect invokes Run/Hk/OutData for every due app, in
// registration order, and drains each app's outbound queue.
func (r *RfeInstance) runCallbacksAndCollect() []msg.MsgPacket {
	var collected []msg.MsgPacket
	for _, name := range r.appOrder {
		ref := r.apps[name]
		if ref.appRate.due(r.schCounter) {
			ref.app.Run(ref.handle)
		}
		if ref.hkRate.due(r.schCounter) {
			ref.app.Hk(ref.handle)
		}
		if ref.outDataRate.due(r.schCounter) {
			ref.app.OutData(ref.handle)
		}
		collected = append(collected, ref.handle.takeOutbound()...)
	}
	return collected
}

// fanOutIntraBus delivers each collected packet to every app
// subscribed to (this instance, kind) or (All, kind). Local fan-out
// keys on this bus's own identity, not the packet's address field —
// a command addressed to a remote instance still originated here.
func (r *RfeInstance) fanOutIntraBus(collected []msg.MsgPacket) {
	for _, name := range r.appOrder {
		ref := r.apps[name]
		for _, p := range collected {
			kind := p.Msg.Kind()
			if ref.handle.isSubscribed(msg.TargetMsg{Instance: r.instance, Kind: kind}) ||
				ref.handle.isSubscribed(msg.TargetMsg{Instance: msg.InstanceAll, Kind: kind}) {
				ref.handle.postMessage(p)
			}
		}
	}
}

// sendToConnectors forwards each collected packet to every connector
// whose peer subscribed to (this instance, kind), (All, kind), or
// (Other, kind). Like intra-bus fan-out, egress keys on this bus's own
// identity as the producer.
func (r *RfeInstance) sendToConnectors(collected []msg.MsgPacket) {
	for _, cs := range r.connectors {
		var toSend []msg.MsgPacket
		for _, p := range collected {
			if cs.matchesEgress(r.instance, p.Msg.Kind()) {
				toSend = append(toSend, p)
			}
		}
		if len(toSend) > 0 {
			cs.connector.Send(toSend)
		}
	}
}

func (cs *connectorState) matchesEgress(self msg.Instance, kind msg.MsgKind) bool {
	if _, ok := cs.subscriptions[msg.TargetMsg{Instance: self, Kind: kind}]; ok {
		return true
	}
	if _, ok := cs.subscriptions[msg.TargetMsg{Instance: msg.InstanceAll, Kind: kind}]; ok {
		return true
	}
	if _, ok := cs.subscriptions[msg.TargetMsg{Instance: msg.InstanceOther, Kind: kind}]; ok {
		return true
	}
	return false
}

// recvFromConnectors polls every connector once, handling SubList,
// SetTimeCmd, and SubRequest control messages inline, and returns the
// flattened batch of everything received for app delivery.
func (r *RfeInstance) recvFromConnectors() []msg.MsgPacket {
	var all []msg.MsgPacket
	for _, cs := range r.connectors {
		pkts, ok := cs.connector.Recv()
		if !ok {
			continue
		}
		for _, p := range pkts {
			switch m := p.Msg.(type) {
			case msg.MsgSubList:
				cs.subsReceived = true
				cs.subscriptions = make(map[msg.TargetMsg]struct{}, len(m.Subs))
				for _, t := range m.Subs {
					cs.subscriptions[t] = struct{}{}
				}
			case msg.MsgSetTimeCmd:
				r.timeData.TimeOffset = m.EpochMicros
			case msg.MsgSubRequest:
				var subs []msg.TargetMsg
				for _, name := range r.appOrder {
					for t := range r.apps[name].handle.subscriptions {
						subs = append(subs, t)
					}
				}
				cs.connector.Send([]msg.MsgPacket{{
					Instance: r.instance,
					Msg:      msg.MsgSubList{Subs: subs},
				}})
			default:
				all = append(all, p)
			}
		}
	}
	return all
}

// deliverConnectorMsgsToApps applies the same (self/All/Other)
// matching rule as connector egress, keyed on each packet's own
// sending instance rather than this instance's identity.
func (r *RfeInstance) deliverConnectorMsgsToApps(connectorMsgs []msg.MsgPacket) {
	for _, name := range r.appOrder {
		ref := r.apps[name]
		for _, p := range connectorMsgs {
			target := p.Target()
			if ref.handle.isSubscribed(target) ||
				ref.handle.isSubscribed(msg.TargetMsg{Instance: msg.InstanceAll, Kind: target.Kind}) ||
				ref.handle.isSubscribed(msg.TargetMsg{Instance: msg.InstanceOther, Kind: target.Kind}) {
				ref.handle.postMessage(p)
			}
		}
	}
}

// syncConnectorSubscriptions invalidates every connector's known
// subscription list as soon as any app's subscriptions change, then
// re-requests lists that are missing or stale.
func (r *RfeInstance) syncConnectorSubscriptions() {
	anyUpdated := false
	for _, name := range r.appOrder {
		ref := r.apps[name]
		if ref.handle.subsUpdated {
			anyUpdated = true
			ref.handle.subsUpdated = false
		}
	}
	if anyUpdated {
		for _, cs := range r.connectors {
			cs.subsReceived = false
		}
	}

	for _, cs := range r.connectors {
		stale := (!cs.subsReceived && r.schCounter-cs.subsLastRequested >= subsResyncTicks) ||
			(cs.subsReceived && r.schCounter-cs.subsLastRequested >= subsRefreshTicks)
		if !stale {
			continue
		}
		cs.connector.Send([]msg.MsgPacket{{
			Instance: r.instance,
			Msg:      msg.MsgSubRequest{},
		}})
		cs.subsLastRequested = r.schCounter
	}
}
