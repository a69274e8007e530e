// Package port holds the vocabulary shared between the GPIO edge source
// and the DCF77 decoding pipeline.
package port

import "time"

// EventType indicates the type of change to the line level.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates a low to high transition.
	RisingEdge
	// FallingEdge indicates a high to low transition.
	FallingEdge
)

// Event is a single GPIO line transition, timestamped against the
// sampling-ISR tick counter (see pkg/dcf77.TickRate).
type Event struct {
	// Timestamp indicates the time the event was detected.
	Timestamp time.Duration
	// Type is the direction of the transition.
	Type EventType
}

// Level is the debounced state of the DCF77 input line.
//
// High is the idle carrier; Low is the pulse-present state (amplitude
// reduction). Some receiver modules invert this at the hardware level,
// in which case pkg/edgesource applies the inversion before any sample
// reaches the signal smoother.
type Level bool

const (
	High Level = true
	Low  Level = false
)
