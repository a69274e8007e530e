package dcf77

import (
	"testing"

	"github.com/ceigel/dcf77/pkg/port"
)

// scenario 5: K=7, a single-sample glitch never flips the held level.
func TestSmootherRejectsSingleGlitch(t *testing.T) {
	s := NewSmoother()

	for i := 0; i < 20; i++ {
		if got := s.Submit(port.High); got != port.High {
			t.Fatalf("sample %d: got %v, want High", i, got)
		}
	}

	// a lone Low glitch surrounded by High, repeated: never a full
	// consensus of SmootherDepth identical samples.
	pattern := []port.Level{port.Low, port.High, port.High, port.High, port.High, port.High, port.High, port.High}
	for rep := 0; rep < 5; rep++ {
		for i, sample := range pattern {
			if got := s.Submit(sample); got != port.High {
				t.Fatalf("rep %d sample %d: got %v, want High (output must stay a function of the glitch never reaching full consensus)", rep, i, got)
			}
		}
	}
}

// P1: the smoother's output is a pure function of the last K inputs.
func TestSmootherIsFunctionOfLastK(t *testing.T) {
	feed := func(samples []port.Level) port.Level {
		s := NewSmoother()
		var last port.Level
		for _, sample := range samples {
			last = s.Submit(sample)
		}
		return last
	}

	tail := []port.Level{port.Low, port.Low, port.Low, port.Low, port.Low, port.Low, port.Low}
	prefixA := append([]port.Level{port.High, port.High, port.High}, tail...)
	prefixB := append([]port.Level{port.Low, port.High, port.Low, port.High, port.High}, tail...)

	if feed(prefixA) != feed(prefixB) {
		t.Fatalf("output depended on history beyond the last %d samples", SmootherDepth)
	}
}

func TestSmootherFlipsOnFullConsensus(t *testing.T) {
	s := NewSmoother()
	if s.Level() != port.High {
		t.Fatalf("initial level = %v, want High", s.Level())
	}

	var got port.Level
	for i := 0; i < SmootherDepth; i++ {
		got = s.Submit(port.Low)
	}
	if got != port.Low {
		t.Fatalf("after %d consistent Low samples, level = %v, want Low", SmootherDepth, got)
	}
}
