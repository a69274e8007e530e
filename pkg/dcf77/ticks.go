package dcf77

import "time"

// TickRate converts sampling-ISR tick counts to wall-clock durations
// and back. The sampling period is a compile-time/configuration
// constant (spec §5); every duration threshold in the pulse classifier
// and phase locator is expressed in ticks derived from it, so
// re-targeting the sampling rate only requires constructing a
// different TickRate.
type TickRate struct {
	period time.Duration
}

// NewTickRate builds a TickRate for a sampler firing hz times per
// second. Recommended 100 Hz per spec §4.1.
func NewTickRate(hz int) TickRate {
	return TickRate{period: time.Second / time.Duration(hz)}
}

// Ticks returns how many sampling ticks cover d, rounded down.
func (r TickRate) Ticks(d time.Duration) uint32 {
	if r.period <= 0 {
		return 0
	}
	return uint32(d / r.period)
}

// Duration returns the wall-clock duration covered by n sampling ticks.
func (r TickRate) Duration(n uint32) time.Duration {
	return time.Duration(n) * r.period
}
