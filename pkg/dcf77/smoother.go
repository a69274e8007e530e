package dcf77

import "github.com/ceigel/dcf77/pkg/port"

// SmootherDepth is the compile-time sample depth K of the sliding
// majority filter (spec §4.1). At 100 Hz sampling a full-consensus
// flip needs 70ms of sustained change: longer than any realistic
// interference spike, shorter than the shortest legitimate DCF77
// pulse (100ms).
const SmootherDepth = 7

// Smoother rejects glitches shorter than SmootherDepth samples on the
// raw input line. It holds the last SmootherDepth samples and only
// flips its held level once every one of them disagrees with it.
//
// The initial held level and buffer contents are logical high (idle
// carrier), matching the DCF77 line's idle state.
type Smoother struct {
	buf   [SmootherDepth]port.Level
	level port.Level
}

// NewSmoother returns a Smoother initialized to the idle (High) level.
func NewSmoother() *Smoother {
	s := &Smoother{level: port.High}
	for i := range s.buf {
		s.buf[i] = port.High
	}
	return s
}

// Submit shifts sample into the filter, dropping the oldest entry, and
// returns the (possibly updated) debounced level.
func (s *Smoother) Submit(sample port.Level) port.Level {
	copy(s.buf[:SmootherDepth-1], s.buf[1:])
	s.buf[SmootherDepth-1] = sample

	flip := true
	for _, v := range s.buf {
		if v == s.level {
			flip = false
			break
		}
	}
	if flip {
		s.level = sample
	}
	return s.level
}

// Level returns the currently held debounced level without consuming
// a new sample.
func (s *Smoother) Level() port.Level {
	return s.level
}
