package dcf77

import "github.com/ceigel/dcf77/pkg/port"

// DefaultHistogramBins and DefaultMarginBins are the recommended sizes
// from spec §4.3 ("a 250- to 1000-bin histogram").
const (
	DefaultHistogramBins = 500
	DefaultMarginBins    = 5
)

// PhaseLocator is the optional edge-binning redundancy check (spec
// §4.3). It is only useful when edges are captured by a hardware
// counter rather than a polling tick; implementations using the
// timer-polled Smoother/PulseClassifier pair may omit it entirely.
//
// It accumulates up-edges (+1) and down-edges (-1) into bins indexed
// by the counter value modulo one second. The bin with the largest
// positive count locates the expected up-edge phase; the bin with the
// most negative count locates the expected down-edge phase. Only
// edges within MarginBins of the relevant extreme are judged in-phase;
// everything else is noise.
type PhaseLocator struct {
	bins       []int8
	binPeriod  uint32 // counter ticks per bin
	marginBins int
}

// NewPhaseLocator builds a locator with numBins buckets spanning one
// second of a counter incrementing countsPerSecond times per second.
func NewPhaseLocator(numBins int, marginBins int, countsPerSecond uint32) *PhaseLocator {
	if numBins <= 0 {
		numBins = DefaultHistogramBins
	}
	if marginBins <= 0 {
		marginBins = DefaultMarginBins
	}
	return &PhaseLocator{
		bins:       make([]int8, numBins),
		binPeriod:  countsPerSecond / uint32(numBins),
		marginBins: marginBins,
	}
}

// binOf maps a free-running counter value to its bin index.
func (p *PhaseLocator) binOf(counter uint32) int {
	if p.binPeriod == 0 {
		return 0
	}
	n := len(p.bins)
	mod := counter % (p.binPeriod * uint32(n))
	idx := int(mod / p.binPeriod)
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// accumulate adds delta to bin idx, saturating to the signed-8-bit
// range, then — per spec §4.3 — right-shifts every bin by one
// whenever either extreme exceeds half-range, to preserve relative
// magnitudes instead of clipping future observations to a plateau.
func (p *PhaseLocator) accumulate(idx int, delta int) {
	v := int(p.bins[idx]) + delta
	switch {
	case v > 127:
		v = 127
	case v < -128:
		v = -128
	}
	p.bins[idx] = int8(v)

	max, min := p.extremes()
	if max > 64 || min < -64 {
		for i := range p.bins {
			p.bins[i] >>= 1
		}
	}
}

func (p *PhaseLocator) extremes() (max, min int8) {
	max, min = p.bins[0], p.bins[0]
	for _, b := range p.bins[1:] {
		if b > max {
			max = b
		}
		if b < min {
			min = b
		}
	}
	return
}

// upEdgeBin and downEdgeBin locate the bins with, respectively, the
// largest positive and most negative counts.
func (p *PhaseLocator) upEdgeBin() int {
	best := 0
	for i, b := range p.bins {
		if b > p.bins[best] {
			best = i
		}
	}
	return best
}

func (p *PhaseLocator) downEdgeBin() int {
	best := 0
	for i, b := range p.bins {
		if b < p.bins[best] {
			best = i
		}
	}
	return best
}

// withinMargin reports whether idx lies within MarginBins of target on
// the circular bin axis.
func (p *PhaseLocator) withinMargin(idx, target int) bool {
	n := len(p.bins)
	d := idx - target
	if d < 0 {
		d = -d
	}
	if d > n/2 {
		d = n - d
	}
	return d <= p.marginBins
}

// Observe records one edge at the given free-running counter value and
// reports whether it falls within margin of the locked phase for its
// direction — i.e. whether it should be forwarded to the pulse
// classifier as a genuine transition rather than discarded as noise.
func (p *PhaseLocator) Observe(counter uint32, edge port.EventType) (forward bool) {
	idx := p.binOf(counter)

	switch edge {
	case port.RisingEdge:
		p.accumulate(idx, 1)
		return p.withinMargin(idx, p.upEdgeBin())
	case port.FallingEdge:
		p.accumulate(idx, -1)
		return p.withinMargin(idx, p.downEdgeBin())
	default:
		return false
	}
}
