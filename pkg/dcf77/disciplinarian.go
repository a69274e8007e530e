package dcf77

import (
	"github.com/womat/debug"
)

// RTC is the opaque, battery-backed real-time-clock sink (spec §6). It
// is never written to by the decoder itself (invariant I4) — only the
// disciplinarian calls SetDateTime, and only on a successful decode.
type RTC interface {
	SetDateTime(dt DecodedDateTime) error
	Year() (int, error)
	Month() (int, error)
	Day() (int, error)
	Hour() (int, error)
	Minute() (int, error)
	Second() (int, error)
}

// Disciplinarian loads the RTC from every successfully decoded
// telegram and latches Synchronized after the first (spec §4.5). It caches
// nothing of the decoded time itself — display code reads the RTC
// directly.
type Disciplinarian struct {
	rtc          RTC
	synchronized bool
	lastErr      error
}

// NewDisciplinarian wraps rtc.
func NewDisciplinarian(rtc RTC) *Disciplinarian {
	return &Disciplinarian{rtc: rtc}
}

// Synchronized reports whether the RTC has ever been set from a valid
// telegram. It is never cleared by a later decode failure (spec §4.5,
// §7): the RTC keeps free-running and a future success retries.
func (d *Disciplinarian) Synchronized() bool {
	return d.synchronized
}

// LastError returns the most recent decode or peripheral error, or nil.
func (d *Disciplinarian) LastError() error {
	return d.lastErr
}

// Handle processes one decode result. A decode error is logged and
// otherwise ignored; a successful decode is written to the RTC, and
// only a write failure is surfaced without clearing Synchronized (spec
// §7: "RTC write: errors are surfaced but do not clear synchronized").
func (d *Disciplinarian) Handle(dt DecodedDateTime, err error) {
	if err != nil {
		d.lastErr = err
		debug.DebugLog.Printf("dcf77: decode failed: %v", err)
		return
	}

	if err := d.rtc.SetDateTime(dt); err != nil {
		d.lastErr = err
		debug.ErrorLog.Printf("dcf77: rtc set failed: %v", err)
		return
	}

	d.lastErr = nil
	d.synchronized = true
	debug.InfoLog.Printf("dcf77: synchronized to %04d-%02d-%02d %02d:%02d", dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute)
}
