package msg

// Msg is the sealed tagged union of bus payloads. Kind() is a pure
// function of the concrete type — it must never inspect field values.
// Only types in this package implement Msg (the unexported marker
// method enforces that).
type Msg interface {
	Kind() MsgKind
	isMsg()
}

// TargetMsg is the (instance, kind) pair used as a subscription key and
// routing address. For telemetry, Instance is the producer; for
// commands, Instance is the intended recipient.
type TargetMsg struct {
	Instance Instance
	Kind     MsgKind
}

// MsgPacket is the (instance, msg, timestamp) triple that crosses the
// bus and the wire.
type MsgPacket struct {
	Instance  Instance
	Msg       Msg
	Timestamp uint64 // microseconds
}

// Target returns the routing key for this packet.
func (p MsgPacket) Target() TargetMsg {
	return TargetMsg{Instance: p.Instance, Kind: p.Msg.Kind()}
}

// --- core control messages ---

type MsgNone struct{}

func (MsgNone) Kind() MsgKind { return KindNone }
func (MsgNone) isMsg()        {}

type MsgSubRequest struct{}

func (MsgSubRequest) Kind() MsgKind { return KindSubRequest }
func (MsgSubRequest) isMsg()        {}

type MsgSubList struct {
	Subs []TargetMsg
}

func (MsgSubList) Kind() MsgKind { return KindSubList }
func (MsgSubList) isMsg()        {}

// MsgSetTimeCmd carries a new epoch-microsecond offset for TimeData.
type MsgSetTimeCmd struct {
	EpochMicros uint64
}

func (MsgSetTimeCmd) Kind() MsgKind { return KindSetTimeCmd }
func (MsgSetTimeCmd) isMsg()        {}

// MsgReinitApp is reserved; the scheduler currently treats it as a no-op.
type MsgReinitApp struct {
	Name string
}

func (MsgReinitApp) Kind() MsgKind { return KindReinitApp }
func (MsgReinitApp) isMsg()        {}

// RawFrame carries an opaque byte blob instead of a structured
// message. EncryptingConnector uses it to pass ciphertext through an
// inner Connector's Send/Recv without that connector ever decoding it.
type RawFrame []byte

func (RawFrame) Kind() MsgKind { return KindRawFrame }
func (RawFrame) isMsg()        {}
