package msg

// ExampleHk is the Example app's housekeeping telemetry.
type ExampleHk struct {
	Counter uint32
	Perf    PerfData
}

func (ExampleHk) Kind() MsgKind { return KindExampleHk }
func (ExampleHk) isMsg()        {}

// ExampleOutData is the Example app's output telemetry.
type ExampleOutData struct {
	Counter uint32
}

func (ExampleOutData) Kind() MsgKind { return KindExampleOutData }
func (ExampleOutData) isMsg()        {}

// ExampleCmdKind enumerates ExampleCmd variants.
type ExampleCmdKind uint8

const (
	ExampleCmdNoop ExampleCmdKind = iota
	ExampleCmdReset
)

// ExampleCmd is the Example app's command variant.
type ExampleCmd struct {
	Op ExampleCmdKind
}

func (ExampleCmd) Kind() MsgKind { return KindExampleCmd }
func (ExampleCmd) isMsg()        {}
