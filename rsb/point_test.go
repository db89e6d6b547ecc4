/*
NAME
  point_test.go

DESCRIPTION
  point_test.go validates the timestamp-corruption correction applied
  at the frame-extraction boundary.
*/

package rsb

import "testing"

func TestCorrectFrameTime(t *testing.T) {
	cases := []struct {
		name string
		in   uint64
		want uint64
	}{
		{"uncorrupted", 1_000_000, 1_000_000},
		{"zero", 0, 0},
		{"at sentinel boundary", timeCorruptionSentinel, timeCorruptionSentinel},
		{"corrupted", timeCorruptionDelta + 1_000_000, 1_000_000},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CorrectFrameTime(c.in); got != c.want {
				t.Errorf("CorrectFrameTime(%d) = %d, want %d", c.in, got, c.want)
			}
		})
	}
}
