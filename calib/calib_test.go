/*
NAME
  calib_test.go

DESCRIPTION
  calib_test.go validates detector pixel adjacency and affine keV
  conversion, including that identity calibration rows are not
  special-cased.
*/

package calib

import "testing"

func TestIsNeighbour(t *testing.T) {
	cases := []struct {
		a, b uint8
		want bool
	}{
		{0, 0, true},   // same channel
		{5, 0, true},   // central channel is neighbour of everyone
		{3, 5, true},   // central channel, reversed order
		{0, 2, true},   // border pair {1,3} 0-based
		{0, 3, true},   // border pair {1,4} 0-based
		{0, 6, true},   // border pair {1,7} 0-based
		{1, 2, true},   // border pair {2,3} 0-based
		{1, 6, true},   // border pair {2,7} 0-based
		{2, 3, true},   // border pair {3,4} 0-based
		{0, 1, false},  // not a listed border
		{2, 6, false},  // not a listed border
		{3, 6, false},  // not a listed border
	}
	for _, c := range cases {
		if got := IsNeighbour(c.a, c.b); got != c.want {
			t.Errorf("IsNeighbour(%d, %d) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestConvertAffine(t *testing.T) {
	got := Convert(10, 0, Max)
	want := maxTable[0].A*10 + maxTable[0].B
	if got != want {
		t.Errorf("Convert(10, 0, Max) = %v, want %v", got, want)
	}
}

func TestConvertIdentityRowsNotSpecialCased(t *testing.T) {
	// Every row, identity or not, must go through the same affine
	// formula; there is no branch to skip.
	for ch := uint8(0); ch < 7; ch++ {
		got := Convert(0, ch, Trapezoid)
		want := trapezoidTable[ch].B
		if got != want {
			t.Errorf("Convert(0, %d, Trapezoid) = %v, want %v", ch, got, want)
		}
	}
}

func TestLongDiffReusesTrapezoidTable(t *testing.T) {
	for ch := uint8(0); ch < 7; ch++ {
		if Convert(5, ch, LongDiff) != Convert(5, ch, Trapezoid) {
			t.Errorf("channel %d: LongDiff calibration diverges from Trapezoid", ch)
		}
	}
}
