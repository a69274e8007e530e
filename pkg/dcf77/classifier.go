package dcf77

import (
	"time"

	"github.com/ceigel/dcf77/pkg/port"
	"github.com/womat/debug"
)

// classifierState is the pulse classifier's own state machine (spec
// §4: "WaitingForStart, Syncing"). It transitions WaitingForStart ->
// Syncing on the first minute mark and stays there; an overrun returns
// it to WaitingForStart.
type classifierState int

const (
	waitingForStart classifierState = iota
	syncing
)

// ClassifierConfig holds the duration thresholds for §4.2, expressed
// in wall-clock time; measured tick counts are converted to durations
// through a TickRate and compared against them. The zero value is
// invalid; use DefaultClassifierConfig.
type ClassifierConfig struct {
	// MinuteMark is the high-phase duration above which the preceding
	// low second is recognized as the missing 59th pulse. Spec §9
	// chooses 1500ms as a conservative lower bound.
	MinuteMark time.Duration
	// Bit0Min/Bit0Max bound the low-pulse duration classified as bit 0.
	Bit0Min, Bit0Max time.Duration
	// Bit1Min/Bit1Max bound the low-pulse duration classified as bit 1.
	Bit1Min, Bit1Max time.Duration
}

// DefaultClassifierConfig returns the thresholds named in spec §4.2 and
// §4.4: 100ms/200ms nominal pulses, 60-140ms / 160-240ms accept bands,
// 1500ms minute-mark gap.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MinuteMark: 1500 * time.Millisecond,
		Bit0Min:    60 * time.Millisecond,
		Bit0Max:    140 * time.Millisecond,
		Bit1Min:    160 * time.Millisecond,
		Bit1Max:    240 * time.Millisecond,
	}
}

// PulseClassifier converts a stream of debounced levels, sampled at a
// fixed tick rate, into completed telegrams. It exclusively owns the
// frame buffer (spec ownership note).
type PulseClassifier struct {
	cfg  ClassifierConfig
	rate TickRate

	smoother *Smoother
	state    classifierState
	buf      FrameBuffer

	currentLevel       port.Level
	lastTransitionTick uint32
	currentPause       uint32
	runningTick        uint32

	// Telegrams receives a completed frame each time one is published.
	// Submit is called from pkg/edgesource's Sampler goroutine and
	// pkg/app's service loop drains the channel from its own goroutine:
	// there is exactly one producer and one consumer, matching the
	// cross-ISR handoff policy in spec §5.
	Telegrams chan Telegram
}

// NewPulseClassifier builds a classifier sampling at rate with cfg
// thresholds. Telegrams is buffered with capacity 1 so a publish never
// blocks the sampling path even if the consumer is a tick behind.
func NewPulseClassifier(rate TickRate, cfg ClassifierConfig) *PulseClassifier {
	return &PulseClassifier{
		cfg:          cfg,
		rate:         rate,
		smoother:     NewSmoother(),
		state:        waitingForStart,
		currentLevel: port.High,
		Telegrams:    make(chan Telegram, 1),
	}
}

// Submit feeds one raw sample, sampled at the classifier's tick rate.
// It never blocks and never returns an error: out-of-band pulses
// degrade to bit 0 so parity fails downstream instead of silently
// misinterpreting the telegram (spec §4.2, §7).
func (c *PulseClassifier) Submit(raw port.Level) {
	level := c.smoother.Submit(raw)

	if level == c.currentLevel {
		c.currentPause++
		c.runningTick++
		return
	}

	endingLevel := c.currentLevel
	pause := c.currentPause

	switch endingLevel {
	case port.High:
		if pause > 0 {
			c.onHighEnded(pause)
		}
	case port.Low:
		if c.state == syncing {
			c.onLowEnded(pause)
		}
	}

	c.currentPause = 0
	c.currentLevel = level
	c.lastTransitionTick = c.runningTick
	c.runningTick++
}

// onHighEnded handles the end of a high phase: either an ordinary gap
// between pulses, or — if long enough — the minute mark.
func (c *PulseClassifier) onHighEnded(pauseTicks uint32) {
	if c.rate.Duration(pauseTicks) < c.cfg.MinuteMark {
		return
	}

	if c.state == syncing && c.buf.startDetected {
		c.Telegrams <- c.buf.publish()
	}
	c.buf.startDetected = true
	c.state = syncing
	c.buf.reset()
}

// onLowEnded handles the end of a low phase (a pulse) once the
// classifier has seen a minute mark: classify its width as bit 0, bit
// 1, or out-of-band, and deposit it.
func (c *PulseClassifier) onLowEnded(pauseTicks uint32) {
	d := c.rate.Duration(pauseTicks)
	bit := c.classify(d)

	if c.buf.full() {
		debug.ErrorLog.Print("dcf77: frame buffer overrun before minute mark, publishing fallback and resyncing")
		c.Telegrams <- c.buf.publish()
		c.buf.reset()
		c.buf.startDetected = false
		c.state = waitingForStart
		return
	}

	c.buf.setBit(bit)
}

// classify maps a low-pulse duration to a bit value. Durations outside
// both accept bands are out-of-band and deposited as 0 (spec §4.2 tie-break).
func (c *PulseClassifier) classify(d time.Duration) Telegram {
	switch {
	case d >= c.cfg.Bit0Min && d <= c.cfg.Bit0Max:
		return 0
	case d >= c.cfg.Bit1Min && d <= c.cfg.Bit1Max:
		return 1
	default:
		debug.DebugLog.Printf("dcf77: out-of-band pulse width %v, depositing bit 0", d)
		return 0
	}
}
