package msg

// ToTlmSet is a TO telemetry set: no extras, just items.
type ToTlmSet struct {
	ID      TlmSetId
	Enabled bool
	Items   []TlmSetItem
}

// ToHk is TO's housekeeping telemetry.
type ToHk struct {
	Counter uint32
	Perf    PerfData
}

func (ToHk) Kind() MsgKind { return KindToHk }
func (ToHk) isMsg()        {}

// ToOutData is TO's output telemetry.
type ToOutData struct {
	Counter uint32
}

func (ToOutData) Kind() MsgKind { return KindToOutData }
func (ToOutData) isMsg()        {}

// ToCmdOp enumerates ToCmd variants.
type ToCmdOp uint8

const (
	ToCmdNoop ToCmdOp = iota
	ToCmdReset
	ToCmdAddTlmSet
	ToCmdRemoveTlmSet
	ToCmdDisableTlmSet
	ToCmdEnableTlmSet
)

// ToCmd is TO's command variant.
type ToCmd struct {
	Op       ToCmdOp
	TlmSet   ToTlmSet // ToCmdAddTlmSet
	TlmSetID TlmSetId // ToCmdRemoveTlmSet / DisableTlmSet / EnableTlmSet
}

func (ToCmd) Kind() MsgKind { return KindToCmd }
func (ToCmd) isMsg()        {}
