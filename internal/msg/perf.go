package msg

// PerfData is the loop-timing block carried on every housekeeping
// message: when the app's run callback last started, how long it took,
// and the interval between consecutive starts, all in monotonic
// microseconds. An app populates it by bracketing its run callback
// with Enter and Exit; apps that don't instrument themselves leave it
// zeroed.
type PerfData struct {
	EnterTime uint64
	Elapsed   uint32
	Rate      uint32
}

// Enter records the start of a run cycle: the interval since the
// previous Enter becomes Rate, and the cycle clock restarts.
func (p *PerfData) Enter(nowMicros uint64) {
	p.Rate = uint32(nowMicros - p.EnterTime)
	p.EnterTime = nowMicros
}

// Exit records how long the cycle begun by Enter took.
func (p *PerfData) Exit(nowMicros uint64) {
	p.Elapsed = uint32(nowMicros - p.EnterTime)
}
