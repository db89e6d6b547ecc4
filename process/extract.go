/*
NAME
  extract.go

DESCRIPTION
  extract.go dispatches a decoded frame to the selected Algorithm and,
  for the whole point, walks every frame of every channel/block in
  timestamp order to build the point's NumassEvents. This is the
  module-level entry point callers should use instead of calling a
  single algorithm's extraction function directly.
*/

package process

import (
	"sort"

	"github.com/knumass/processing/calib"
	"github.com/knumass/processing/waveform"
)

// ExtractFrame extracts events from one decoded frame using the
// selected algorithm. baseline is read only by Trapezoid and LongDiff;
// it is ignored (and may be the zero value) for Max, Likhovid and
// FirstPeak.
func ExtractFrame(frame waveform.Frame, baseline [7]float32, algo Algorithm) []NumassEvent {
	switch algo.Kind {
	case calib.Max:
		var events []NumassEvent
		for ch, w := range frame {
			events = append(events, maxChannelEvents(ch, w)...)
		}
		sortEvents(events)
		return events
	case calib.Likhovid:
		var events []NumassEvent
		for ch, w := range frame {
			events = append(events, likhovidChannelEvents(ch, w, algo.Likhovid)...)
		}
		sortEvents(events)
		return events
	case calib.FirstPeak:
		var events []NumassEvent
		for ch, w := range frame {
			events = append(events, firstPeakChannelEvents(ch, w, algo.FirstPeak)...)
		}
		sortEvents(events)
		return events
	case calib.Trapezoid:
		return ExtractTrapezoidFrame(frame, baseline, algo.Trapezoid)
	case calib.LongDiff:
		return ExtractLongDiffFrame(frame, baseline, algo.LongDiff)
	default:
		return nil
	}
}

// ApplyCalibration returns a copy of events in which the amplitude of
// every EventKind record is converted to keV using the algorithm's
// calibration table; events itself is not modified. Non-Event variants
// are copied unchanged.
func ApplyCalibration(events []NumassEvent, kind calib.AlgorithmKind) []NumassEvent {
	out := make([]NumassEvent, len(events))
	for i, e := range events {
		out[i] = e
		if e.Event.Kind == EventKind {
			out[i].Event.Amplitude = calib.Convert(e.Event.Amplitude, e.Event.Channel, kind)
		}
	}
	return out
}

// ExtractPoint walks every frame in frames (sorted by timestamp
// ascending) and runs ExtractFrame over it, optionally applying keV
// calibration, producing the point's complete NumassEvents.
func ExtractPoint(frames waveform.Frames, baseline [7]float32, params ProcessParams) NumassEvents {
	out := make(NumassEvents, len(frames))

	times := make([]uint64, 0, len(frames))
	for t := range frames {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	for _, t := range times {
		events := ExtractFrame(frames[t], baseline, params.Algorithm)
		if params.ConvertToKeV {
			events = ApplyCalibration(events, params.Algorithm.Kind)
		}
		out[t] = events
	}
	return out
}
