package msg

// HsHk is HS's housekeeping telemetry: resource samples plus which
// probe categories are currently enabled.
type HsHk struct {
	Counter         uint32
	CPUUsage        []uint8
	MemUsage        uint8
	FsUsage         []uint8
	Temps           []int8
	CmdCounter      uint8
	CPUUsageEnabled bool
	MemUsageEnabled bool
	FsUsageEnabled  bool
	Perf            PerfData
}

func (HsHk) Kind() MsgKind { return KindHsHk }
func (HsHk) isMsg()        {}

// HsOutData is HS's output telemetry.
type HsOutData struct {
	Counter uint32
}

func (HsOutData) Kind() MsgKind { return KindHsOutData }
func (HsOutData) isMsg()        {}

// HsCmdOp enumerates HsCmd variants.
type HsCmdOp uint8

const (
	HsCmdNoop HsCmdOp = iota
	HsCmdReset
	HsCmdWatchdogEnableManual
	HsCmdWatchdogEnableAuto
	HsCmdWatchdogResumeAuto
)

// HsCmd is HS's command variant. BoolArg carries the value for the two
// watchdog-enable variants; it is unused for the others.
type HsCmd struct {
	Op      HsCmdOp
	BoolArg bool
}

func (HsCmd) Kind() MsgKind { return KindHsCmd }
func (HsCmd) isMsg()        {}
