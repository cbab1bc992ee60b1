package msg

// TlmSetId identifies a telemetry set, stable for the life of the set.
type TlmSetId uint16

// TlmSetItem is one filter entry within a TlmSet: a subscription target,
// its decimation factor, and the running match counter.
type TlmSetItem struct {
	Target     TargetMsg
	Decimation uint16
	Counter    uint16
}

// Selected reports whether the current Counter selects this match, per
// the "counter mod (decimation+1) == 0" rule. It does not mutate
// Counter; callers advance each matching item's counter themselves
// right after testing it, so counters for items matching the same
// packet advance independently.
func (it TlmSetItem) Selected() bool {
	return uint32(it.Counter)%(uint32(it.Decimation)+1) == 0
}

// Matches reports whether a packet's routing target matches this item,
// either exactly or via the Instance=All wildcard.
func (it TlmSetItem) Matches(target TargetMsg) bool {
	if target == it.Target {
		return true
	}
	return target.Kind == it.Target.Kind && it.Target.Instance == InstanceAll
}

// DsTlmSet is a DS telemetry set: a stable id, enable flag, immutable
// item list, and the output directory extras field.
type DsTlmSet struct {
	ID      TlmSetId
	Enabled bool
	Items   []TlmSetItem
	Path    string
}

// DsHk is DS's housekeeping telemetry.
type DsHk struct {
	Counter uint32
	Perf    PerfData
}

func (DsHk) Kind() MsgKind { return KindDsHk }
func (DsHk) isMsg()        {}

// DsOutData is DS's output telemetry.
type DsOutData struct {
	Counter               uint32
	BytesWritten          uint32
	BytesWrittenThisCycle uint32
}

func (DsOutData) Kind() MsgKind { return KindDsOutData }
func (DsOutData) isMsg()        {}

// DsCmdOp enumerates DsCmd variants.
type DsCmdOp uint8

const (
	DsCmdNoop DsCmdOp = iota
	DsCmdReset
	DsCmdCloseAll
	DsCmdClose
	DsCmdAddTlmSet
	DsCmdRemoveTlmSet
	DsCmdDisableTlmSet
	DsCmdEnableTlmSet
)

// DsCmd is DS's command variant. Only the fields relevant to Op are set.
type DsCmd struct {
	Op       DsCmdOp
	CloseID  TlmSetId // DsCmdClose
	TlmSet   DsTlmSet // DsCmdAddTlmSet
	TlmSetID TlmSetId // DsCmdRemoveTlmSet / DsCmdDisableTlmSet / DsCmdEnableTlmSet
}

func (DsCmd) Kind() MsgKind { return KindDsCmd }
func (DsCmd) isMsg()        {}
