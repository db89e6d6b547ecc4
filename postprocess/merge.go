/*
NAME
  merge.go

DESCRIPTION
  merge.go implements per-frame postprocessing: optional central-
  channel split recovery, then neighbour-pair amplitude merging. Both
  steps only ever touch Event-kind records; Overflow/Reset/Frame
  records are invisible to them and pass through unchanged.
*/

package postprocess

import (
	"sort"

	"github.com/knumass/processing/calib"
	"github.com/knumass/processing/process"
)

// splitWindowNS is how far (in either direction) from a central-
// channel event's offset a peripheral event is considered a charge
// split deposited on the same physical interaction.
const splitWindowNS = 200

// perFramePostprocess runs split recovery (if enabled) followed by
// neighbour merging over one frame's events.
func perFramePostprocess(events []process.NumassEvent, mergeSplitsFirst, ignoreBorders bool) []process.NumassEvent {
	if mergeSplitsFirst {
		events = mergeSplits(events)
	}
	return mergeNeighbours(events, ignoreBorders)
}

// mergeSplits absorbs every Event within splitWindowNS of a central-
// channel (channel 5) Event into it: amplitudes sum, the central
// event's Size is reset to 0, and absorbed events are removed.
func mergeSplits(events []process.NumassEvent) []process.NumassEvent {
	for {
		progressed := false
		for i := range events {
			e := events[i]
			if e.Event.Kind != process.EventKind || e.Event.Channel != calib.CentralChannel {
				continue
			}

			var remove []int
			var absorbed float32
			for j := i - 1; j >= 0; j-- {
				if offsetDiff(e.OffsetNS, events[j].OffsetNS) > splitWindowNS {
					break
				}
				if events[j].Event.Kind == process.EventKind {
					absorbed += events[j].Event.Amplitude
					remove = append(remove, j)
				}
			}
			for j := i + 1; j < len(events); j++ {
				if offsetDiff(e.OffsetNS, events[j].OffsetNS) > splitWindowNS {
					break
				}
				if events[j].Event.Kind == process.EventKind {
					absorbed += events[j].Event.Amplitude
					remove = append(remove, j)
				}
			}

			if len(remove) == 0 {
				continue
			}

			events[i].Event.Amplitude += absorbed
			events[i].Event.Size = 0

			sort.Sort(sort.Reverse(sort.IntSlice(remove)))
			for _, idx := range remove {
				events = append(events[:idx], events[idx+1:]...)
			}
			progressed = true
			break
		}
		if !progressed {
			return events
		}
	}
}

// mergeNeighbours absorbs, for every Event i (front to back), every
// later Event j (back to front) on a neighbouring channel, summing
// amplitude into i and deleting j. i's Size is preserved.
func mergeNeighbours(events []process.NumassEvent, ignoreBorders bool) []process.NumassEvent {
	for i := 0; i < len(events); i++ {
		if events[i].Event.Kind != process.EventKind {
			continue
		}
		chI := events[i].Event.Channel

		for j := len(events) - 1; j > i; j-- {
			if events[j].Event.Kind != process.EventKind {
				continue
			}
			chJ := events[j].Event.Channel
			if !ignoreBorders && !calib.IsNeighbour(chI, chJ) {
				continue
			}
			events[i].Event.Amplitude += events[j].Event.Amplitude
			events = append(events[:j], events[j+1:]...)
		}
	}
	return events
}

func offsetDiff(a, b uint16) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
