package rfe

import (
	"github.com/jcweaver997/rfe/internal/msg"
	"github.com/jcweaver997/rfe/internal/rfetime"
)

// Handle is the bus endpoint an App is given in every callback. Apps
// never see the scheduler directly — all subscribe/send/recv traffic
// goes through a Handle.
type Handle struct {
	instance   msg.Instance
	timeData   *rfetime.Data
	timeDriver rfetime.Driver

	subscriptions map[msg.TargetMsg]struct{}
	subsUpdated   bool

	outbox []msg.MsgPacket
	inbox  []msg.MsgPacket
}

func newHandle(instance msg.Instance, timeData *rfetime.Data, driver rfetime.Driver) *Handle {
	return &Handle{
		instance:      instance,
		timeData:      timeData,
		timeDriver:    driver,
		subscriptions: make(map[msg.TargetMsg]struct{}),
	}
}

// Subscribe adds a routing target this app wants delivered to it.
func (h *Handle) Subscribe(t msg.TargetMsg) {
	h.subscriptions[t] = struct{}{}
	h.subsUpdated = true
}

// SubscribeAll adds every target in ts.
func (h *Handle) SubscribeAll(ts []msg.TargetMsg) {
	for _, t := range ts {
		h.subscriptions[t] = struct{}{}
	}
	h.subsUpdated = true
}

// Unsubscribe removes a single routing target.
func (h *Handle) Unsubscribe(t msg.TargetMsg) {
	delete(h.subscriptions, t)
	h.subsUpdated = true
}

// UnsubscribeAll clears every routing target.
func (h *Handle) UnsubscribeAll() {
	h.subscriptions = make(map[msg.TargetMsg]struct{})
	h.subsUpdated = true
}

// Send enqueues m as coming from this app's own instance.
func (h *Handle) Send(m msg.Msg) {
	h.outbox = append(h.outbox, msg.MsgPacket{
		Instance:  h.instance,
		Msg:       m,
		Timestamp: h.SystemMicros(),
	})
}

// SendCmd enqueues m addressed to target instead of this app's own instance.
func (h *Handle) SendCmd(m msg.Msg, target msg.Instance) {
	h.outbox = append(h.outbox, msg.MsgPacket{
		Instance:  target,
		Msg:       m,
		Timestamp: h.SystemMicros(),
	})
}

// postMessage appends p to the inbound FIFO. The scheduler calls this
// during fan-out; PostMessage is the exported form for apps.
func (h *Handle) postMessage(p msg.MsgPacket) {
	h.inbox = append(h.inbox, p)
}

// PostMessage appends p directly to this app's own inbound FIFO, to be
// picked up by a later Recv. Apps that own a private Connector (TO's
// downlink, for instance) use this to feed messages read off that
// connector back through the ordinary Recv path instead of bypassing it.
func (h *Handle) PostMessage(p msg.MsgPacket) {
	h.postMessage(p)
}

// Recv pops the oldest pending inbound packet, if any.
func (h *Handle) Recv() (msg.MsgPacket, bool) {
	if len(h.inbox) == 0 {
		return msg.MsgPacket{}, false
	}
	p := h.inbox[0]
	h.inbox = h.inbox[1:]
	return p, true
}

// Instance returns the instance identity this handle's app is running under.
func (h *Handle) Instance() msg.Instance {
	return h.instance
}

// MonotonicMicros returns elapsed microseconds since program start.
func (h *Handle) MonotonicMicros() uint64 {
	return h.timeDriver.MonotonicTime(*h.timeData)
}

// SystemMicros returns the current epoch-relative microsecond timestamp.
func (h *Handle) SystemMicros() uint64 {
	return h.timeDriver.SystemTime(*h.timeData)
}

// takeOutbound drains and returns everything queued by Send/SendCmd
// since the last call.
func (h *Handle) takeOutbound() []msg.MsgPacket {
	out := h.outbox
	h.outbox = nil
	return out
}

// isSubscribed reports whether t is in this handle's subscription set.
func (h *Handle) isSubscribed(t msg.TargetMsg) bool {
	_, ok := h.subscriptions[t]
	return ok
}
