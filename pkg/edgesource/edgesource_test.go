package edgesource

import (
	"errors"
	"testing"

	"github.com/ceigel/dcf77/pkg/dcf77"
	"github.com/ceigel/dcf77/pkg/port"
)

type fakePin struct {
	level      bool
	pulledUp   bool
	pulledDown bool
}

func (p *fakePin) Read() bool { return p.level }
func (p *fakePin) PullUp()    { p.pulledUp = true }
func (p *fakePin) PullDown()  { p.pulledDown = true }

type fakeGPIO struct {
	pin *fakePin
	err error
}

func (g *fakeGPIO) NewPin(bcm int) (Pin, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.pin, nil
}
func (g *fakeGPIO) Close() error { return nil }

func newTestSampler(t *testing.T, cfg Config) (*Sampler, *fakePin) {
	t.Helper()
	pin := &fakePin{}
	class := dcf77.NewPulseClassifier(dcf77.NewTickRate(100), dcf77.DefaultClassifierConfig())
	s, err := NewSampler(&fakeGPIO{pin: pin}, cfg, class)
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	return s, pin
}

func TestSamplerLevelPassesThroughWithoutInvert(t *testing.T) {
	s, pin := newTestSampler(t, Config{Pin: 17, SampleHz: 100})

	pin.level = true
	if got := s.level(); got != port.High {
		t.Errorf("level() = %v, want High", got)
	}
	pin.level = false
	if got := s.level(); got != port.Low {
		t.Errorf("level() = %v, want Low", got)
	}
}

func TestSamplerLevelInverted(t *testing.T) {
	s, pin := newTestSampler(t, Config{Pin: 17, SampleHz: 100, InvertLine: true})

	pin.level = true
	if got := s.level(); got != port.Low {
		t.Errorf("inverted level() = %v, want Low", got)
	}
	pin.level = false
	if got := s.level(); got != port.High {
		t.Errorf("inverted level() = %v, want High", got)
	}
}

func TestNewSamplerAppliesPullUp(t *testing.T) {
	s, pin := newTestSampler(t, Config{Pin: 17, SampleHz: 100, Pull: "up"})
	_ = s
	if !pin.pulledUp {
		t.Error("NewSampler with Pull: \"up\" did not call PullUp")
	}
}

func TestNewSamplerAppliesPullDown(t *testing.T) {
	s, pin := newTestSampler(t, Config{Pin: 17, SampleHz: 100, Pull: "down"})
	_ = s
	if !pin.pulledDown {
		t.Error("NewSampler with Pull: \"down\" did not call PullDown")
	}
}

func TestNewSamplerRejectsInvalidPull(t *testing.T) {
	pin := &fakePin{}
	class := dcf77.NewPulseClassifier(dcf77.NewTickRate(100), dcf77.DefaultClassifierConfig())
	_, err := NewSampler(&fakeGPIO{pin: pin}, Config{Pin: 17, SampleHz: 100, Pull: "sideways"}, class)
	if err == nil {
		t.Fatal("expected error for invalid Pull value, got nil")
	}
}

func TestNewSamplerPropagatesGPIOError(t *testing.T) {
	wantErr := errors.New("no such pin")
	class := dcf77.NewPulseClassifier(dcf77.NewTickRate(100), dcf77.DefaultClassifierConfig())
	_, err := NewSampler(&fakeGPIO{err: wantErr}, Config{Pin: 99, SampleHz: 100}, class)
	if err == nil || !errors.Is(err, wantErr) {
		t.Fatalf("NewSampler error = %v, want wrapping %v", err, wantErr)
	}
}

func TestSamplerRunReturnsAfterStop(t *testing.T) {
	s, pin := newTestSampler(t, Config{Pin: 17, SampleHz: 1000})
	pin.level = true

	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()

	s.Stop()
	<-done
}
