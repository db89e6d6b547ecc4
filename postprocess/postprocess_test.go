/*
NAME
  postprocess_test.go

DESCRIPTION
  postprocess_test.go validates the fixed-order postprocessing
  pipeline: frame coalescence, the MergeCloseEvents early exit, bad-
  block excision, and channel masking.
*/

package postprocess

import (
	"testing"

	"github.com/knumass/processing/preprocess"
	"github.com/knumass/processing/process"
)

func u16(v uint16) *uint16 { return &v }

func TestPostProcessEarlyExitWithoutMergeCloseEvents(t *testing.T) {
	events := process.NumassEvents{
		0: {ev(0, 0, 10, 1)},
	}
	params := PostProcessParams{MergeCloseEvents: false}
	got := PostProcess(events, nil, params)
	if len(got[0]) != 1 {
		t.Errorf("early exit path altered event count: got %d, want 1", len(got[0]))
	}
}

func TestPostProcessMasksIgnoredChannelsOnEarlyExit(t *testing.T) {
	events := process.NumassEvents{
		0: {ev(0, 0, 10, 1), ev(5, 1, 4, 1)},
	}
	var ignore [7]bool
	ignore[0] = true
	params := PostProcessParams{MergeCloseEvents: false, IgnoreChannels: ignore}
	got := PostProcess(events, nil, params)
	if len(got[0]) != 1 || got[0][0].Event.Channel != 1 {
		t.Errorf("got %+v, want only channel 1's event to survive masking", got[0])
	}
}

func TestCoalesceFrames(t *testing.T) {
	events := process.NumassEvents{
		1000: {ev(10, 0, 1, 1)},
		1050: {ev(5, 1, 2, 1)},
	}
	pre := &preprocess.Preprocess{FrameLen: 100}
	got := coalesceFrames(events, pre, u16(100))

	if _, ok := got[1050]; ok {
		t.Error("coalesceFrames left the absorbed frame's key behind")
	}
	if len(got[1000]) != 2 {
		t.Fatalf("got %d events in surviving frame, want 2", len(got[1000]))
	}
}

func TestCoalesceFramesNoOpWithoutDelta(t *testing.T) {
	events := process.NumassEvents{
		1000: {ev(10, 0, 1, 1)},
		2000: {ev(5, 1, 2, 1)},
	}
	got := coalesceFrames(events, nil, nil)
	if len(got) != 2 {
		t.Errorf("coalesceFrames with nil delta changed frame count: got %d, want 2", len(got))
	}
}

func TestCutBadBlocks(t *testing.T) {
	events := process.NumassEvents{
		0:                          {ev(0, 0, 1, 1)},
		preprocess.CutoffBinSize:   {ev(0, 0, 1, 1)},
		2 * preprocess.CutoffBinSize: {ev(0, 0, 1, 1)},
	}
	bad := preprocess.BlockSet{1: {}}
	got := cutBadBlocks(events, bad)

	if _, ok := got[preprocess.CutoffBinSize]; ok {
		t.Error("cutBadBlocks left a bad-block frame in place")
	}
	if len(got) != 2 {
		t.Errorf("got %d frames, want 2", len(got))
	}
}

func TestApplyChannelMaskKeepsNonEventKinds(t *testing.T) {
	events := process.NumassEvents{
		0: {
			{OffsetNS: 0, Event: process.FrameEvent{Kind: process.ResetKind}},
			ev(0, 3, 1, 1),
		},
	}
	var ignore [7]bool
	ignore[3] = true
	got := applyChannelMask(events, ignore)
	if len(got[0]) != 1 || got[0][0].Event.Kind != process.ResetKind {
		t.Errorf("got %+v, want only the Reset record to survive", got[0])
	}
}
