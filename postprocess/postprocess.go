/*
NAME
  postprocess.go

DESCRIPTION
  postprocess.go runs the fixed-order postprocessing pipeline over a
  point's extracted events: frame coalescence, bad-block excision,
  per-frame split recovery and neighbour merging, and finally channel
  masking. Only Event-kind records participate in merging; Overflow,
  Reset and Frame records pass through untouched.
*/

// Package postprocess merges co-temporal events across neighbouring
// pixels, recovers central-channel charge splits, excises bad blocks,
// masks channels, and coalesces close frames.
package postprocess

import (
	"sort"

	"github.com/knumass/processing/preprocess"
	"github.com/knumass/processing/process"
)

// PostProcessParams controls the postprocessing pipeline. Order of
// operations is fixed: frame coalescence, then (if MergeCloseEvents)
// bad-block excision and per-frame merging, then channel masking.
type PostProcessParams struct {
	CutBadBlocks bool

	// MergeFrames, if non-nil, coalesces frames whose successive
	// start-timestamp gap is below this many nanoseconds.
	MergeFrames *uint16

	MergeSplitsFirst bool
	MergeCloseEvents bool
	IgnoreBorders    bool

	// IgnoreChannels masks Event records by channel; index i
	// corresponds to channel i.
	IgnoreChannels [7]bool
}

// PostProcess runs the postprocessing pipeline over events, using pre
// for bad-block membership and frame length. pre may be nil only when
// neither CutBadBlocks nor MergeFrames is set. events is mutated and
// returned.
func PostProcess(events process.NumassEvents, pre *preprocess.Preprocess, params PostProcessParams) process.NumassEvents {
	events = coalesceFrames(events, pre, params.MergeFrames)

	if !params.MergeCloseEvents {
		return applyChannelMask(events, params.IgnoreChannels)
	}

	if params.CutBadBlocks && pre != nil {
		events = cutBadBlocks(events, pre.BadBlocks)
	}

	for t, frameEvents := range events {
		events[t] = perFramePostprocess(frameEvents, params.MergeSplitsFirst, params.IgnoreBorders)
	}

	return applyChannelMask(events, params.IgnoreChannels)
}

// coalesceFrames merges frame i into frame i-1 (back to front) whenever
// their start-timestamp gap is below delta, shifting the absorbed
// frame's event offsets to stay relative to the surviving frame.
func coalesceFrames(events process.NumassEvents, pre *preprocess.Preprocess, delta *uint16) process.NumassEvents {
	if delta == nil {
		return events
	}
	threshold := uint64(*delta)

	var frameLen uint64
	if pre != nil {
		frameLen = pre.FrameLen
	}

	times := sortedTimes(events)

	for i := len(times) - 1; i >= 1; i-- {
		gap := times[i] - times[i-1]
		if gap >= threshold {
			continue
		}
		shift := int64(gap) - int64(frameLen)
		for _, ev := range events[times[i]] {
			newOffset := int64(ev.OffsetNS) + shift
			if newOffset < 0 {
				newOffset = 0
			}
			events[times[i-1]] = append(events[times[i-1]], process.NumassEvent{
				OffsetNS: uint16(newOffset),
				Event:    ev.Event,
			})
		}
		delete(events, times[i])
		times = append(times[:i], times[i+1:]...)
	}

	for _, t := range times {
		sortByOffset(events[t])
	}

	return events
}

// cutBadBlocks drops every frame whose 1-second block index is marked
// bad.
func cutBadBlocks(events process.NumassEvents, bad preprocess.BlockSet) process.NumassEvents {
	for t := range events {
		block := int(t / preprocess.CutoffBinSize)
		if _, ok := bad[block]; ok {
			delete(events, t)
		}
	}
	return events
}

// applyChannelMask drops Event records whose channel is masked;
// non-Event variants are always retained.
func applyChannelMask(events process.NumassEvents, ignore [7]bool) process.NumassEvents {
	for t, frameEvents := range events {
		kept := frameEvents[:0]
		for _, e := range frameEvents {
			if e.Event.Kind == process.EventKind && int(e.Event.Channel) < len(ignore) && ignore[e.Event.Channel] {
				continue
			}
			kept = append(kept, e)
		}
		events[t] = kept
	}
	return events
}

func sortedTimes(events process.NumassEvents) []uint64 {
	times := make([]uint64, 0, len(events))
	for t := range events {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}

func sortByOffset(events []process.NumassEvent) {
	sort.Slice(events, func(i, j int) bool { return events[i].OffsetNS < events[j].OffsetNS })
}
