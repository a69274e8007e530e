// Package rtc implements the battery-backed real-time clock the DCF77
// decoder disciplines (spec §6). The primary implementation drives a
// DS3231-compatible chip over I²C; Software is a free-running fallback
// for development off the target hardware.
package rtc

import (
	"fmt"

	"github.com/ceigel/dcf77/pkg/dcf77"
	"periph.io/x/conn/v3/i2c"
)

// DefaultAddr is the DS3231's fixed I²C address.
const DefaultAddr uint16 = 0x68

// register offsets in the DS3231's BCD clock register block.
const (
	regSeconds = 0x00
	regMinutes = 0x01
	regHours   = 0x02
	regWeekday = 0x03
	regDate    = 0x04
	regMonth   = 0x05
	regYear    = 0x06
)

// DS3231 drives a DS3231-compatible RTC over periph.io's i2c.Dev.
type DS3231 struct {
	dev i2c.Dev
}

// New wraps an already-opened I²C bus connection at addr (DefaultAddr
// for a stock DS3231).
func New(bus i2c.Bus, addr uint16) *DS3231 {
	return &DS3231{dev: i2c.Dev{Bus: bus, Addr: addr}}
}

// SetDateTime writes dt's fields into the chip's BCD registers in a
// single burst write (spec §4.5: the RTC is written only on a
// successful decode).
func (r *DS3231) SetDateTime(dt dcf77.DecodedDateTime) error {
	weekday := int(dt.Weekday)
	if weekday == 0 {
		weekday = 7 // DS3231 weekday register is 1-7, Sunday last
	}
	w := []byte{
		regSeconds,
		toBCD(0),
		toBCD(dt.Minute),
		toBCD(dt.Hour),
		toBCD(weekday),
		toBCD(dt.Day),
		toBCD(dt.Month),
		toBCD(dt.Year % 100),
	}
	return r.dev.Tx(w, nil)
}

// Year reads the two-digit BCD year register, folded back into 2000+y
// (spec §4.4: DCF77 only ever transmits a two-digit year).
func (r *DS3231) Year() (int, error) {
	v, err := r.readReg(regYear)
	if err != nil {
		return 0, err
	}
	return 2000 + fromBCD(v), nil
}

// Month reads the BCD month register.
func (r *DS3231) Month() (int, error) {
	v, err := r.readReg(regMonth)
	if err != nil {
		return 0, err
	}
	return fromBCD(v & 0x1F), nil
}

// Day reads the BCD date-of-month register.
func (r *DS3231) Day() (int, error) {
	v, err := r.readReg(regDate)
	if err != nil {
		return 0, err
	}
	return fromBCD(v), nil
}

// Hour reads the BCD hours register, assuming the chip is left in
// 24-hour mode (bit 6 of the register clear).
func (r *DS3231) Hour() (int, error) {
	v, err := r.readReg(regHours)
	if err != nil {
		return 0, err
	}
	return fromBCD(v & 0x3F), nil
}

// Minute reads the BCD minutes register.
func (r *DS3231) Minute() (int, error) {
	v, err := r.readReg(regMinutes)
	if err != nil {
		return 0, err
	}
	return fromBCD(v), nil
}

// Second reads the BCD seconds register.
func (r *DS3231) Second() (int, error) {
	v, err := r.readReg(regSeconds)
	if err != nil {
		return 0, err
	}
	return fromBCD(v & 0x7F), nil
}

func (r *DS3231) readReg(reg byte) (byte, error) {
	rx := make([]byte, 1)
	if err := r.dev.Tx([]byte{reg}, rx); err != nil {
		return 0, fmt.Errorf("rtc: reading register %#x: %w", reg, err)
	}
	return rx[0], nil
}

func toBCD(v int) byte {
	return byte((v/10)<<4 | (v % 10))
}

func fromBCD(v byte) int {
	return int(v>>4)*10 + int(v&0x0F)
}
