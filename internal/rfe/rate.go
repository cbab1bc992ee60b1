package rfe

// Rate is one of the six supported callback frequencies. The
// scheduler ticks at 100 Hz; a Rate decides which ticks actually
// invoke a callback.
type Rate uint8

const (
	Rate1Hz   Rate = 1
	Rate5Hz   Rate = 5
	Rate10Hz  Rate = 10
	Rate20Hz  Rate = 20
	Rate50Hz  Rate = 50
	Rate100Hz Rate = 100
)

// due reports whether a callback at this rate should fire on the given
// 100 Hz tick counter. Hz100 fires every tick; Hz1 fires on ticks that
// are multiples of 100, and so on.
func (r Rate) due(counter uint64) bool {
	return counter%(100/uint64(r)) == 0
}
