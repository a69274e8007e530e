package display

import "testing"

func TestDigitEncodesFontAndDot(t *testing.T) {
	d := &Display{}
	d.digit(idxDigit1, 8, false)
	if d.buf[idxDigit1] != uint16(digitFont[8]) {
		t.Errorf("digit(8, false) = %#x, want %#x", d.buf[idxDigit1], digitFont[8])
	}

	d.digit(idxDigit2, 3, true)
	want := uint16(digitFont[3]) | 1<<7
	if d.buf[idxDigit2] != want {
		t.Errorf("digit(3, true) = %#x, want %#x", d.buf[idxDigit2], want)
	}
}

func TestDigitWrapsValueModulo10(t *testing.T) {
	d := &Display{}
	d.digit(idxDigit1, 13, false)
	if d.buf[idxDigit1] != uint16(digitFont[3]) {
		t.Errorf("digit(13, false) = %#x, want digit 3's glyph %#x", d.buf[idxDigit1], digitFont[3])
	}
}

func TestMinusEncodesDashAndDot(t *testing.T) {
	d := &Display{}
	d.minus(idxDigit3, false)
	if d.buf[idxDigit3] != uint16(segMinus) {
		t.Errorf("minus(false) = %#x, want %#x", d.buf[idxDigit3], segMinus)
	}

	d.minus(idxDigit4, true)
	want := uint16(segMinus) | 1<<7
	if d.buf[idxDigit4] != want {
		t.Errorf("minus(true) = %#x, want %#x", d.buf[idxDigit4], want)
	}
}

func TestColonTogglesSegment(t *testing.T) {
	d := &Display{}
	d.colon(true)
	if d.buf[idxColon] != colonSegment {
		t.Errorf("colon(true) = %#x, want %#x", d.buf[idxColon], colonSegment)
	}
	d.colon(false)
	if d.buf[idxColon] != 0 {
		t.Errorf("colon(false) = %#x, want 0", d.buf[idxColon])
	}
}

func TestDigitFontTableHasTenEntries(t *testing.T) {
	if len(digitFont) != 10 {
		t.Fatalf("digitFont has %d entries, want 10", len(digitFont))
	}
	seen := map[byte]bool{}
	for i, g := range digitFont {
		if seen[g] {
			t.Errorf("digitFont[%d] = %#x duplicates an earlier glyph", i, g)
		}
		seen[g] = true
	}
}
