package dcf77

import (
	"math/bits"
	"time"
)

// DecodeError is the telegram decoder's typed failure taxonomy (spec
// §7). The order in which decode checks for these is part of the
// contract: Start -> Minutes -> Hours -> Date.
type DecodeError int

const (
	// WrongStart means bit 0 or bit 20 did not match the fixed
	// start-of-minute / start-of-time markers.
	WrongStart DecodeError = iota
	// MinutesWrong means the minutes parity bit failed or the decoded
	// minutes value was out of range.
	MinutesWrong
	// HoursWrong means the hours parity bit failed or the decoded
	// hours value was out of range.
	HoursWrong
	// DateWrong means the date parity bit failed, or month/day/year
	// were out of range.
	DateWrong
)

func (e DecodeError) Error() string {
	switch e {
	case WrongStart:
		return "dcf77: wrong start bits"
	case MinutesWrong:
		return "dcf77: minutes field invalid"
	case HoursWrong:
		return "dcf77: hours field invalid"
	case DateWrong:
		return "dcf77: date field invalid"
	default:
		return "dcf77: unknown decode error"
	}
}

// DecodedDateTime is a validated DCF77 telegram, returned by value
// (invariant I4: the decoder never writes to the RTC itself).
type DecodedDateTime struct {
	Year, Month, Day    int
	Hour, Minute        int
	Weekday             time.Weekday
	Summer              bool
	DSTChangeAnnounced  bool
	LeapSecondAnnounced bool
}

// Time returns dt as a time.Time in the broadcast local time (CET/CEST,
// accepted verbatim per spec non-goals — no timezone conversion is
// performed).
func (dt DecodedDateTime) Time(loc *time.Location) time.Time {
	return time.Date(dt.Year, time.Month(dt.Month), dt.Day, dt.Hour, dt.Minute, 0, 0, loc)
}

// bcdWeights is the weight table for an 8-bit-wide BCD field: units
// nibble weights 1,2,4,8 then tens nibble weights 10,20,40,80.
var bcdWeights = [8]int{1, 2, 4, 8, 10, 20, 40, 80}

// decodeBCD sums the weighted bits of word's low width bits using
// bcdWeights. A plain loop over the field's bit width, per spec §9
// ("avoid language-specific iterator tricks").
func decodeBCD(word Telegram, width int) int {
	v := 0
	for bit := 0; bit < width; bit++ {
		if (word>>uint(bit))&1 == 1 {
			v += bcdWeights[bit]
		}
	}
	return v
}

// field extracts width bits of t starting at bit offset.
func field(t Telegram, offset, width int) Telegram {
	return (t >> uint(offset)) & ((1 << uint(width)) - 1)
}

// evenParity folds a field's bits via XOR (equivalently, a popcount
// mod 2) and reports whether it matches the telegram's own parity bit.
// Spec §9 notes shift-XOR and popcount are interchangeable; this uses
// math/bits' popcount.
func evenParity(t Telegram, offset, width int, parityBit int) bool {
	f := field(t, offset, width)
	fold := bits.OnesCount64(uint64(f)) % 2
	p := int(field(t, parityBit, 1))
	return fold == p
}

// Decode extracts and validates a DCF77 telegram per spec §4.4. Field
// offsets, widths and error ordering are fixed by the wire format:
//
//	bit 0      start-of-minute, must be 0
//	bit 20     start-of-time, must be 1
//	21..27     minutes (7-bit BCD), 28 minutes parity
//	29..34     hours (6-bit BCD), 35 hours parity
//	36..41     day-of-month (6-bit BCD)
//	42..44     day-of-week (3-bit BCD)
//	45..49     month (5-bit BCD)
//	50..57     year, two digits (8-bit BCD)
//	58         date parity over bits 36..57
func Decode(t Telegram) (DecodedDateTime, error) {
	if field(t, 20, 1) != 1 || field(t, 0, 1) != 0 {
		return DecodedDateTime{}, WrongStart
	}

	minutes := decodeBCD(field(t, 21, 7), 7)
	if !evenParity(t, 21, 7, 28) || minutes >= 60 {
		return DecodedDateTime{}, MinutesWrong
	}

	hours := decodeBCD(field(t, 29, 6), 6)
	if !evenParity(t, 29, 6, 35) || hours >= 24 {
		return DecodedDateTime{}, HoursWrong
	}

	day := decodeBCD(field(t, 36, 6), 6)
	weekday := int(field(t, 42, 3))
	month := decodeBCD(field(t, 45, 5), 5)
	year := decodeBCD(field(t, 50, 8), 8)

	if !evenParity(t, 36, 22, 58) ||
		month < 1 || month > 12 ||
		day < 1 || day > 31 ||
		2000+year >= 2099 {
		return DecodedDateTime{}, DateWrong
	}

	return DecodedDateTime{
		Year:                2000 + year,
		Month:               month,
		Day:                 day,
		Hour:                hours,
		Minute:              minutes,
		Weekday:             time.Weekday(weekday % 7),
		Summer:              field(t, 17, 1) == 1,
		DSTChangeAnnounced:  field(t, 16, 1) == 1,
		LeapSecondAnnounced: field(t, 19, 1) == 1,
	}, nil
}

// encodeBCD is the inverse of decodeBCD: it spreads v (two decimal
// digits, v <= 99) across width bits using bcdWeights, highest weight
// first so no bit above width is ever set.
func encodeBCD(v int, width int) Telegram {
	var word Telegram
	for bit := width - 1; bit >= 0; bit-- {
		if v >= bcdWeights[bit] {
			word |= 1 << uint(bit)
			v -= bcdWeights[bit]
		}
	}
	return word
}

func setField(t *Telegram, offset, width int, v Telegram) {
	mask := Telegram((1 << uint(width)) - 1)
	*t |= (v & mask) << uint(offset)
}

// Encode builds a valid DCF77 telegram word for dt, the inverse of
// Decode. It exists to support the round-trip property in spec §8
// (P3: decode(encode(dt)) == Ok(dt)) and is how this package's tests
// construct known-good frames, rather than hand-assembling bit
// literals whose transmission-order layout is easy to get backwards.
func Encode(dt DecodedDateTime) Telegram {
	var t Telegram
	setField(&t, 20, 1, 1)

	minutes := encodeBCD(dt.Minute, 7)
	setField(&t, 21, 7, minutes)
	setField(&t, 28, 1, Telegram(bits.OnesCount64(uint64(minutes))%2))

	hours := encodeBCD(dt.Hour, 6)
	setField(&t, 29, 6, hours)
	setField(&t, 35, 1, Telegram(bits.OnesCount64(uint64(hours))%2))

	day := encodeBCD(dt.Day, 6)
	setField(&t, 36, 6, day)
	setField(&t, 42, 3, Telegram(dt.Weekday))
	month := encodeBCD(dt.Month, 5)
	setField(&t, 45, 5, month)
	year := encodeBCD(dt.Year-2000, 8)
	setField(&t, 50, 8, year)

	dateFrame := field(t, 36, 22)
	setField(&t, 58, 1, Telegram(bits.OnesCount64(uint64(dateFrame))%2))

	if dt.Summer {
		setField(&t, 17, 1, 1)
	}
	if dt.DSTChangeAnnounced {
		setField(&t, 16, 1, 1)
	}
	if dt.LeapSecondAnnounced {
		setField(&t, 19, 1, 1)
	}

	return t
}
