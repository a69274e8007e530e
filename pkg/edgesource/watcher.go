package edgesource

import (
	"github.com/ceigel/dcf77/pkg/dcf77"
	"github.com/ceigel/dcf77/pkg/port"
	"github.com/warthog618/gpiod"
	"github.com/womat/debug"
)

// Watcher drives the optional edge-binning phase locator (spec §4.3)
// from hardware-timestamped line events, independently of the
// tick-polled Sampler. Most installations can omit it entirely.
type Watcher struct {
	chip    *gpiod.Chip
	line    *gpiod.Line
	locator *dcf77.PhaseLocator
	rate    dcf77.TickRate
	events  chan gpiod.LineEvent
	quit    chan struct{}
}

// NewWatcher requests line on the named gpiochip and wires its edges to
// locator. rate converts the kernel's event timestamp into the
// free-running counter value locator expects.
func NewWatcher(chipName string, line int, locator *dcf77.PhaseLocator, rate dcf77.TickRate) (*Watcher, error) {
	chip, err := gpiod.NewChip(chipName)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		chip:    chip,
		locator: locator,
		rate:    rate,
		events:  make(chan gpiod.LineEvent, 100),
		quit:    make(chan struct{}),
	}

	l, err := chip.RequestLine(line, gpiod.WithBothEdges, gpiod.AsInput,
		gpiod.WithEventHandler(func(evt gpiod.LineEvent) { w.events <- evt }))
	if err != nil {
		chip.Close()
		return nil, err
	}
	w.line = l
	return w, nil
}

// Run forwards edges into the phase locator until Stop is called. It
// blocks, so callers run it in its own goroutine.
func (w *Watcher) Run() {
	for {
		select {
		case <-w.quit:
			return
		case evt := <-w.events:
			counter := w.rate.Ticks(evt.Timestamp)
			switch evt.Type {
			case gpiod.LineEventRisingEdge:
				w.locator.Observe(counter, port.RisingEdge)
			case gpiod.LineEventFallingEdge:
				w.locator.Observe(counter, port.FallingEdge)
			default:
				debug.ErrorLog.Printf("edgesource: unexpected line event %v", evt.Type)
			}
		}
	}
}

// Stop releases the line and chip.
func (w *Watcher) Stop() error {
	close(w.quit)
	if err := w.line.Close(); err != nil {
		return err
	}
	return w.chip.Close()
}
