/*
NAME
  histogram_test.go

DESCRIPTION
  histogram_test.go validates bin assignment, the intentional Add vs.
  AddBatch endpoint-inclusion discrepancy, windowed Events counting,
  and CSV rendering.
*/

package histogram

import (
	"bytes"
	"strings"
	"testing"
)

func TestAddExcludesBothEndpoints(t *testing.T) {
	h := New(0, 10, 10)
	h.Add(0, 0)  // Min, excluded
	h.Add(0, 10) // Max, excluded
	h.Add(0, 5)  // interior, counted

	counts := h.Counts(0)
	var total float64
	for _, c := range counts {
		total += c
	}
	if total != 1 {
		t.Errorf("Add: got total %v, want 1 (only the interior value should count)", total)
	}
}

func TestAddBatchIncludesLeftEndpoint(t *testing.T) {
	h := New(0, 10, 10)
	h.AddBatch(0, []float64{0, 10, 5})

	counts := h.Counts(0)
	var total float64
	for _, c := range counts {
		total += c
	}
	if total != 2 {
		t.Errorf("AddBatch: got total %v, want 2 (Min included, Max excluded)", total)
	}
	if counts[0] != 1 {
		t.Errorf("AddBatch: bin 0 (Min) count = %v, want 1", counts[0])
	}
}

func TestBinCenter(t *testing.T) {
	h := New(0, 10, 10)
	if got := h.BinCenter(0); got != 0.5 {
		t.Errorf("BinCenter(0) = %v, want 0.5", got)
	}
	if got := h.BinCenter(9); got != 9.5 {
		t.Errorf("BinCenter(9) = %v, want 9.5", got)
	}
}

func TestChannelsSorted(t *testing.T) {
	h := New(0, 10, 10)
	h.Add(3, 1)
	h.Add(1, 1)
	h.Add(5, 1)

	got := h.Channels()
	want := []uint8{1, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("Channels() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Channels()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestEventsWindow(t *testing.T) {
	h := New(0, 10, 10)
	h.Add(0, 1.5) // bin 1, center 1.5
	h.Add(0, 8.5) // bin 8, center 8.5

	got := h.Events(&Window{Lo: 0, Hi: 3})
	if got[0] != 1 {
		t.Errorf("Events window (0,3) = %v, want 1", got[0])
	}

	all := h.Events(nil)
	if all[0] != 2 {
		t.Errorf("Events(nil) = %v, want 2", all[0])
	}
}

func TestMergeChannels(t *testing.T) {
	h := New(0, 10, 10)
	h.Add(0, 1.5)
	h.Add(1, 1.5)

	merged := h.MergeChannels()
	if merged[1] != 2 {
		t.Errorf("MergeChannels()[1] = %v, want 2", merged[1])
	}
}

func TestWriteCSV(t *testing.T) {
	h := New(0, 2, 2)
	h.Add(0, 0.5)
	h.Add(2, 1.5)

	var buf bytes.Buffer
	if err := h.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "bin,ch 1,ch 3\n") {
		t.Errorf("WriteCSV header = %q, want prefix %q", out, "bin,ch 1,ch 3\n")
	}
}
