package dcf77

import (
	"testing"

	"github.com/ceigel/dcf77/pkg/port"
)

// With a locked phase, an edge far from the expected bin is reported
// as out of margin.
func TestPhaseLocatorLocksAndGatesByMargin(t *testing.T) {
	p := NewPhaseLocator(100, 2, 1000) // 10 counts/bin

	// Train bin 10 as the up-edge phase with repeated observations.
	for i := 0; i < 20; i++ {
		p.Observe(105, port.RisingEdge) // bin 10
	}
	// Train bin 60 as the down-edge phase.
	for i := 0; i < 20; i++ {
		p.Observe(605, port.FallingEdge) // bin 60
	}

	if got := p.upEdgeBin(); got != 10 {
		t.Fatalf("upEdgeBin = %d, want 10", got)
	}
	if got := p.downEdgeBin(); got != 60 {
		t.Fatalf("downEdgeBin = %d, want 60", got)
	}

	// A rising edge at bin 10 (within margin of itself) is forwarded.
	if !p.Observe(105, port.RisingEdge) {
		t.Fatal("edge at the locked up-edge bin should be within margin")
	}
	// A rising edge at bin 50, far from bin 10, is rejected as noise.
	if p.Observe(505, port.RisingEdge) {
		t.Fatal("edge far from the locked up-edge bin should be out of margin")
	}
}

// accumulate saturates at the int8 extremes instead of overflowing.
func TestPhaseLocatorSaturates(t *testing.T) {
	p := NewPhaseLocator(10, 1, 100)

	for i := 0; i < 300; i++ {
		p.accumulate(0, 1)
	}
	if p.bins[0] < 0 {
		t.Fatalf("bin overflowed into negative: %d", p.bins[0])
	}
	if p.bins[0] > 127 {
		t.Fatalf("bin exceeded int8 max: %d", p.bins[0])
	}
}

// accumulate halves every bin once an extreme crosses the rescale
// threshold, preserving relative weight instead of clipping forever.
func TestPhaseLocatorRescalesOnOverflowThreshold(t *testing.T) {
	p := NewPhaseLocator(4, 1, 40)

	p.bins[1] = 10
	for i := 0; i < 70; i++ {
		p.accumulate(0, 1)
	}
	if p.bins[0] > 64 {
		t.Fatalf("bin 0 not rescaled: %d", p.bins[0])
	}
	if p.bins[1] <= 0 || p.bins[1] >= 10 {
		t.Fatalf("bin 1 should have been halved proportionally from 10, got %d", p.bins[1])
	}
}

// binOf wraps a free-running counter onto the bin axis.
func TestPhaseLocatorBinOfWraps(t *testing.T) {
	p := NewPhaseLocator(10, 1, 100) // binPeriod = 10

	if got := p.binOf(5); got != 0 {
		t.Fatalf("binOf(5) = %d, want 0", got)
	}
	if got := p.binOf(15); got != 1 {
		t.Fatalf("binOf(15) = %d, want 1", got)
	}
	if got := p.binOf(105); got != 0 {
		t.Fatalf("binOf(105) = %d, want 0 (wraps past one full second)", got)
	}
}

// withinMargin treats the bin axis as circular, so a target near the
// wrap point still matches an edge just past it.
func TestPhaseLocatorMarginIsCircular(t *testing.T) {
	p := NewPhaseLocator(100, 3, 1000)

	if !p.withinMargin(98, 1) {
		t.Fatal("bin 98 should be within margin 3 of bin 1 across the wrap")
	}
	if p.withinMargin(50, 1) {
		t.Fatal("bin 50 should not be within margin of bin 1")
	}
}
