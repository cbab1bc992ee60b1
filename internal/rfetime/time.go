// Package rfetime provides the pluggable time source used by the
// scheduler and every app's Rfe handle: a host driver backed by the OS
// clock, and a scheduler-derived driver for builds with no hardware
// timer.
package rfetime

import "time"

// Data is the scheduler's shared time state: the 100 Hz tick counter
// and the externally adjustable epoch offset (mutated only by the
// scheduler, only between ticks — see internal/rfe).
type Data struct {
	SchCounter uint64
	TimeOffset uint64 // microseconds
}

// Driver produces system (wall-clock) and monotonic time from Data.
// Implementations must be stateless aside from constructor-captured
// origin values, so a single Driver can be shared across every app's
// Rfe handle without synchronization.
type Driver interface {
	// SystemTime returns microseconds since the Unix epoch.
	SystemTime(d Data) uint64
	// MonotonicTime returns microseconds since program start.
	MonotonicTime(d Data) uint64
}

// HostDriver reads the OS clock directly and ignores Data entirely.
// This is the hosted-environment default.
type HostDriver struct {
	start time.Time
}

// NewHostDriver captures the current OS time as the monotonic origin.
func NewHostDriver() *HostDriver {
	return &HostDriver{start: time.Now()}
}

func (h *HostDriver) SystemTime(Data) uint64 {
	return uint64(time.Now().UnixMicro())
}

func (h *HostDriver) MonotonicTime(Data) uint64 {
	return uint64(time.Since(h.start).Microseconds())
}

// SchedulerDriver derives both time values from the tick counter: the
// embedded-build fallback when no hardware timer is wired in.
// MonotonicTime counts each tick as 10ms (10,000 microseconds).
// SystemTime is the raw tick count plus TimeOffset, so it advances by
// one per tick rather than by 10,000.
type SchedulerDriver struct{}

func NewSchedulerDriver() *SchedulerDriver { return &SchedulerDriver{} }

func (s *SchedulerDriver) SystemTime(d Data) uint64 {
	return d.SchCounter + d.TimeOffset
}

func (s *SchedulerDriver) MonotonicTime(d Data) uint64 {
	return d.SchCounter * 10_000
}
