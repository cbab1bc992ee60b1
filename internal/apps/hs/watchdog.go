package hs

// Watchdog is the hardware supervision contract HS drives: enable/
// disable it, set its timeout, and feed it every cycle to prove
// liveness. No concrete hardware implementation ships in this
// repository; NoopWatchdog stands in for hosted testing and for
// targets with no watchdog device.
type Watchdog interface {
	Enable()
	Disable()
	SetTimeout(seconds int32)
	Feed()
}

// NoopWatchdog discards every call. Useful as the default Watchdog for
// hosted builds and tests.
type NoopWatchdog struct{}

func (NoopWatchdog) Enable()          {}
func (NoopWatchdog) Disable()         {}
func (NoopWatchdog) SetTimeout(int32) {}
func (NoopWatchdog) Feed()            {}

// SystemInfoProbe samples host resource usage for housekeeping
// telemetry. No concrete implementation ships in this repository;
// NoopSystemInfoProbe returns zero values everywhere.
type SystemInfoProbe interface {
	CPUUsage() []uint8
	MemUsage() uint8
	FsUsage() []uint8
	Temps() []int8
}

// NoopSystemInfoProbe reports no resource data.
type NoopSystemInfoProbe struct{}

func (NoopSystemInfoProbe) CPUUsage() []uint8 { return nil }
func (NoopSystemInfoProbe) MemUsage() uint8   { return 0 }
func (NoopSystemInfoProbe) FsUsage() []uint8  { return nil }
func (NoopSystemInfoProbe) Temps() []int8     { return nil }
