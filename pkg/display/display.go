// Package display drives the four-digit seven-segment clock face over
// I²C (an HT16K33-backed module, spec §6). Digit layout is
// [tens][ones][colon][tens][ones], matching the Adafruit-style
// backpack the original firmware targets.
package display

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddr is the HT16K33 backpack's factory-default I²C address.
const DefaultAddr uint16 = 0x70

// segment-index layout within the 8-word display RAM, following the
// Adafruit 0.56" 4-digit backpack wiring (index 2 is the center colon).
const (
	idxDigit1 = 0
	idxDigit2 = 1
	idxColon  = 2
	idxDigit3 = 3
	idxDigit4 = 4

	cmdOscillatorOn = 0x21
	cmdDisplayOn    = 0x81
	cmdBrightness   = 0xE0
	cmdDisplayAddr  = 0x00

	colonSegment = 0x02
)

// digitFont maps digit value (0-9) to the 14-segment-style bitmask the
// HT16K33 ROM font table expects, reduced here to the 7-segment subset
// the clock face actually wires. The minus glyph is segMinus.
var digitFont = [...]byte{
	0x3F, 0x06, 0x5B, 0x4F, 0x66, 0x6D, 0x7D, 0x07, 0x7F, 0x6F, // 0-9
}

const segMinus = 0x40

// Display is an HT16K33-backed four-digit seven-segment panel.
type Display struct {
	dev i2c.Dev
	buf [5]uint16
}

// New wraps an already-opened I²C bus connection at addr (DefaultAddr
// for a stock Adafruit backpack) and powers on the oscillator and
// display at the given brightness (0-15).
func New(bus i2c.Bus, addr uint16, brightness byte) (*Display, error) {
	d := &Display{dev: i2c.Dev{Bus: bus, Addr: addr}}

	if err := d.dev.Tx([]byte{cmdOscillatorOn}, nil); err != nil {
		return nil, fmt.Errorf("display: oscillator on: %w", err)
	}
	if err := d.dev.Tx([]byte{cmdDisplayOn}, nil); err != nil {
		return nil, fmt.Errorf("display: display on: %w", err)
	}
	if brightness > 15 {
		brightness = 15
	}
	if err := d.dev.Tx([]byte{cmdBrightness | brightness}, nil); err != nil {
		return nil, fmt.Errorf("display: set brightness: %w", err)
	}
	return d, nil
}

// digit writes v (0-9) into buffer position idx, adding the decimal
// point segment if dot is set.
func (d *Display) digit(idx int, v int, dot bool) {
	seg := uint16(digitFont[v%10])
	if dot {
		seg |= 1 << 7
	}
	d.buf[idx] = seg
}

// minus writes the single-dash "error" glyph into buffer position idx.
func (d *Display) minus(idx int, dot bool) {
	seg := uint16(segMinus)
	if dot {
		seg |= 1 << 7
	}
	d.buf[idx] = seg
}

func (d *Display) colon(on bool) {
	if on {
		d.buf[idxColon] = colonSegment
	} else {
		d.buf[idxColon] = 0
	}
}

// flush writes the whole display RAM buffer in one burst write.
func (d *Display) flush() error {
	w := make([]byte, 0, 1+2*len(d.buf))
	w = append(w, cmdDisplayAddr)
	for _, v := range d.buf {
		w = append(w, byte(v), byte(v>>8))
	}
	return d.dev.Tx(w, nil)
}

// ShowTime renders HH:MM with the colon blinking on odd seconds and
// dotMask lighting the four decimal points bit 0 (digit 1) .. bit 3
// (digit 4), matching the original firmware's dots parameter.
func (d *Display) ShowTime(hour, minute, second int, dotMask byte) error {
	d.digit(idxDigit1, hour/10, dotMask&1 != 0)
	d.digit(idxDigit2, hour%10, dotMask&2 != 0)
	d.digit(idxDigit3, minute/10, dotMask&4 != 0)
	d.digit(idxDigit4, minute%10, dotMask&8 != 0)
	d.colon(second%2 == 1)
	return d.flush()
}

// ShowDate renders DD.MM with a fixed decimal point after the day and
// no colon.
func (d *Display) ShowDate(month, day int) error {
	d.digit(idxDigit1, day/10, false)
	d.digit(idxDigit2, day%10, true)
	d.digit(idxDigit3, month/10, false)
	d.digit(idxDigit4, month%10, false)
	d.colon(false)
	return d.flush()
}

// ShowYear renders the full four-digit year, no colon or dots.
func (d *Display) ShowYear(year int) error {
	d.digit(idxDigit1, (year/1000)%10, false)
	d.digit(idxDigit2, (year/100)%10, false)
	d.digit(idxDigit3, (year/10)%10, false)
	d.digit(idxDigit4, year%10, false)
	d.colon(false)
	return d.flush()
}

// ShowError renders four dashes, for when the RTC has never been
// synchronized (spec §4.5: "before the first successful decode").
func (d *Display) ShowError(dotMask byte) error {
	d.minus(idxDigit1, dotMask&1 != 0)
	d.minus(idxDigit2, dotMask&2 != 0)
	d.minus(idxDigit3, dotMask&4 != 0)
	d.minus(idxDigit4, dotMask&8 != 0)
	d.colon(false)
	return d.flush()
}
