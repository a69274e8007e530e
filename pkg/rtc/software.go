package rtc

import (
	"sync"
	"time"

	"github.com/ceigel/dcf77/pkg/dcf77"
)

// Software is a free-running fallback clock kept as an offset from the
// monotonic clock, for development off the target hardware where no
// I²C RTC chip is present.
type Software struct {
	mu     sync.Mutex
	offset time.Duration // epoch - time.Now() at last SetDateTime
	loc    *time.Location
}

// NewSoftware builds a Software clock seeded from the host's own time
// until the first successful decode disciplines it.
func NewSoftware(loc *time.Location) *Software {
	return &Software{loc: loc}
}

// SetDateTime re-bases the clock to dt.
func (s *Software) SetDateTime(dt dcf77.DecodedDateTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = dt.Time(s.loc).Sub(time.Now())
	return nil
}

func (s *Software) now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().Add(s.offset).In(s.loc)
}

func (s *Software) Year() (int, error)   { return s.now().Year(), nil }
func (s *Software) Month() (int, error)  { return int(s.now().Month()), nil }
func (s *Software) Day() (int, error)    { return s.now().Day(), nil }
func (s *Software) Hour() (int, error)   { return s.now().Hour(), nil }
func (s *Software) Minute() (int, error) { return s.now().Minute(), nil }
func (s *Software) Second() (int, error) { return s.now().Second(), nil }
