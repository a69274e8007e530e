// Package edgesource reads the DCF77 receiver's GPIO line and feeds the
// decoding pipeline in pkg/dcf77. It provides two independent paths:
// a fixed-rate Sampler that polls the line for the smoother/classifier
// pair, and an optional gpiod-backed Watcher that forwards
// hardware-timestamped edges to the phase locator.
package edgesource

import (
	"fmt"
	"time"

	"github.com/ceigel/dcf77/pkg/dcf77"
	"github.com/ceigel/dcf77/pkg/port"
)

// Pin is the polled GPIO input the Sampler reads at a fixed tick rate.
type Pin interface {
	Read() bool
	PullUp()
	PullDown()
}

// GPIO opens pins on a controller. OpenGPIO is platform-specific
// (linux.go, windows.go).
type GPIO interface {
	NewPin(bcm int) (Pin, error)
	Close() error
}

// Config holds the fixed-rate sampling parameters (spec §5: "the
// sampling period is a compile-time constant" becomes a config value
// here, chosen once at startup and never varied at runtime).
type Config struct {
	// Pin is the BCM GPIO number the DCF77 module's DATA line is wired to.
	Pin int
	// SampleHz is the classifier's tick rate. 100Hz (10ms ticks) comfortably
	// resolves the 100/200ms bit-width bands.
	SampleHz int
	// Pull selects the input's internal bias: "up", "down", or "none".
	Pull string
	// InvertLine flips the raw line level before it reaches the smoother,
	// for receiver modules whose DATA output is high while a pulse is
	// present, the opposite of this package's High=idle-carrier convention.
	InvertLine bool
}

// Sampler polls a Pin at Config.SampleHz and feeds the resulting levels
// to a PulseClassifier, applying the configured polarity.
type Sampler struct {
	pin    Pin
	cfg    Config
	class  *dcf77.PulseClassifier
	ticker *time.Ticker
	quit   chan struct{}
}

// NewSampler opens the configured pin on gpio and wires it to class.
func NewSampler(gpio GPIO, cfg Config, class *dcf77.PulseClassifier) (*Sampler, error) {
	pin, err := gpio.NewPin(cfg.Pin)
	if err != nil {
		return nil, fmt.Errorf("edgesource: %w", err)
	}
	switch cfg.Pull {
	case "up":
		pin.PullUp()
	case "down":
		pin.PullDown()
	case "", "none":
	default:
		return nil, fmt.Errorf("edgesource: invalid pull %q", cfg.Pull)
	}
	return &Sampler{pin: pin, cfg: cfg, class: class, quit: make(chan struct{})}, nil
}

// Run polls the pin at Config.SampleHz until Stop is called. It blocks,
// so callers run it in its own goroutine.
func (s *Sampler) Run() {
	period := time.Second / time.Duration(s.cfg.SampleHz)
	s.ticker = time.NewTicker(period)
	defer s.ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-s.ticker.C:
			s.class.Submit(s.level())
		}
	}
}

// level reads the raw pin and applies the configured polarity. High is
// always the idle-carrier level handed to the classifier, regardless of
// the receiver module's native polarity.
func (s *Sampler) level() port.Level {
	raw := s.pin.Read()
	if s.cfg.InvertLine {
		raw = !raw
	}
	if raw {
		return port.High
	}
	return port.Low
}

// Stop halts Run.
func (s *Sampler) Stop() {
	close(s.quit)
}
