/*
NAME
  pipeline_test.go

DESCRIPTION
  pipeline_test.go validates the end-to-end wiring of waveform
  extraction through postprocessing for a single point, the
  events-to-histogram reduction, and ProcessAll's batch summary.
*/

package pipeline

import (
	"bytes"
	"context"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/knumass/processing/postprocess"
	"github.com/knumass/processing/process"
	"github.com/knumass/processing/rsb"
)

func stepFrame(time uint64, high bool) rsb.Frame {
	w := make([]int16, 30)
	if high {
		for i := 10; i < len(w); i++ {
			w[i] = 200
		}
	}
	data := make([]byte, len(w)*2)
	for i, v := range w {
		data[i*2] = byte(uint16(v))
		data[i*2+1] = byte(uint16(v) >> 8)
	}
	return rsb.Frame{Time: time, Data: data}
}

func testPoint() *rsb.Point {
	return &rsb.Point{
		Channels: []rsb.Channel{
			{ID: 0, Blocks: []rsb.Block{{Frames: []rsb.Frame{stepFrame(1000, true)}}}},
		},
	}
}

func testParams() (process.ProcessParams, postprocess.PostProcessParams) {
	algo := process.NewTrapezoid(4, 2, 4, 50, 1, process.SkipNone, process.HWResetParams{})
	return process.ProcessParams{Algorithm: algo}, postprocess.PostProcessParams{MergeCloseEvents: true}
}

func TestExtractPointEndToEnd(t *testing.T) {
	processParams, postParams := testParams()
	log := logging.New(logging.Debug, &bytes.Buffer{}, true)

	res, err := ExtractPoint(context.Background(), testPoint(), Meta{}, processParams, postParams, log)
	if err != nil {
		t.Fatalf("ExtractPoint returned error: %v", err)
	}
	if res.Preprocess == nil {
		t.Fatal("ExtractPoint returned a nil Preprocess record")
	}
	if len(res.Events) == 0 {
		t.Fatal("ExtractPoint produced no events for a clean step waveform")
	}
}

func TestExtractPointRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processParams, postParams := testParams()
	_, err := ExtractPoint(ctx, testPoint(), Meta{}, processParams, postParams, nil)
	if err == nil {
		t.Fatal("ExtractPoint ignored an already-cancelled context")
	}
}

func TestEventsToHistogram(t *testing.T) {
	events := process.NumassEvents{
		0: {
			{OffsetNS: 0, Event: process.FrameEvent{Kind: process.EventKind, Channel: 0, Amplitude: 50}},
			{OffsetNS: 8, Event: process.FrameEvent{Kind: process.OverflowKind, Channel: 0}},
		},
	}
	h := EventsToHistogram(events, 0, 100, 10)
	counts := h.Counts(0)
	if counts == nil {
		t.Fatal("EventsToHistogram produced no entries for channel 0")
	}
	var total float64
	for _, c := range counts {
		total += c
	}
	if total != 1 {
		t.Errorf("EventsToHistogram counted %v entries, want 1 (Overflow records must not contribute)", total)
	}
}

func TestProcessAllSummary(t *testing.T) {
	processParams, postParams := testParams()
	points := []*rsb.Point{testPoint(), testPoint()}
	metas := []Meta{{}, {}}

	results, means, err := ProcessAll(context.Background(), points, metas, processParams, postParams, BatchOptions{})
	if err != nil {
		t.Fatalf("ProcessAll returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if len(means) == 0 {
		t.Error("ProcessAll returned no per-channel means for events-bearing points")
	}
}
