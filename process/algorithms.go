/*
NAME
  algorithms.go

DESCRIPTION
  algorithms.go implements the four simpler built-in extraction
  algorithms: Max (single global maximum), Likhovid (peak-centred
  window average), FirstPeak (first local maximum above threshold),
  and LongDiff (baseline-trend estimator for resets-only or clean
  traces). Each looks at raw, un-shaped waveform samples directly;
  only Trapezoid subtracts a baseline.
*/

package process

import "github.com/knumass/processing/waveform"

// maxIndex returns the index of the largest sample in w.
func maxIndex(w []int16) int {
	x := 0
	for i, v := range w {
		if v > w[x] {
			x = i
		}
	}
	return x
}

// maxChannelEvents implements the Max algorithm for one channel.
func maxChannelEvents(ch uint8, w []int16) []NumassEvent {
	if len(w) == 0 {
		return nil
	}
	x := maxIndex(w)
	return []NumassEvent{{
		OffsetNS: uint16(x * 8),
		Event:    FrameEvent{Kind: EventKind, Channel: ch, Amplitude: float32(w[x]), Size: 1},
	}}
}

// likhovidChannelEvents implements the Likhovid algorithm for one
// channel: amplitude is the mean of a window around the global
// maximum, clipped to waveform bounds.
func likhovidChannelEvents(ch uint8, w []int16, p LikhovidParams) []NumassEvent {
	if len(w) == 0 {
		return nil
	}
	x := maxIndex(w)
	lo, hi := x-p.Left, x+p.Right
	if lo < 0 {
		lo = 0
	}
	if hi > len(w) {
		hi = len(w)
	}
	var sum float64
	for i := lo; i < hi; i++ {
		sum += float64(w[i])
	}
	amp := float32(sum / float64(hi-lo))
	return []NumassEvent{{
		OffsetNS: uint16(x * 8),
		Event:    FrameEvent{Kind: EventKind, Channel: ch, Amplitude: amp, Size: 1},
	}}
}

// findFirstPeak returns the index of the first sample exceeding
// threshold that is also a local maximum against its immediate
// neighbours.
func findFirstPeak(w []int16, threshold int16) (int, bool) {
	for idx, v := range w {
		if v > threshold &&
			(idx == 0 || w[idx-1] <= v) &&
			(idx == len(w)-1 || w[idx+1] <= v) {
			return idx, true
		}
	}
	return 0, false
}

// firstPeakChannelEvents implements the FirstPeak algorithm for one
// channel.
func firstPeakChannelEvents(ch uint8, w []int16, p FirstPeakParams) []NumassEvent {
	pos, ok := findFirstPeak(w, p.Threshold)
	if !ok {
		return nil
	}
	left := pos - p.Left
	if left < 0 {
		left = 0
	}
	var sum float64
	for i := left; i < len(w); i++ {
		sum += float64(w[i])
	}
	amp := float32(sum / 50.0)
	return []NumassEvent{{
		OffsetNS: uint16(pos * 8),
		Event:    FrameEvent{Kind: EventKind, Channel: ch, Amplitude: amp, Size: 1},
	}}
}

// longDiffBaselineDivisor is the empirical scale relating the
// per-channel Trapezoid baseline to the linear trend predicted across
// a waveform of length `last`.
const longDiffBaselineDivisor = 10.916667

// longDiffChannelEvents implements the LongDiff algorithm for one
// channel: it is only meaningful when the frame has no detected
// reset, which the caller (ExtractLongDiffFrame) guarantees.
func longDiffChannelEvents(ch uint8, w []int16, baseline float32) []NumassEvent {
	const edge = 12
	if len(w) < 2*edge {
		return nil
	}
	var aSum, bSum float64
	for i := 0; i < edge; i++ {
		aSum += float64(w[i])
	}
	for i := len(w) - edge; i < len(w); i++ {
		bSum += float64(w[i])
	}
	a := float32(aSum / edge)
	b := float32(bSum / edge)
	last := len(w) - 1

	predicted := a + (baseline/longDiffBaselineDivisor)*float32(last)
	amp := (b - predicted) / 4

	return []NumassEvent{{
		OffsetNS: 0,
		Event:    FrameEvent{Kind: EventKind, Channel: ch, Amplitude: amp, Size: uint16(last)},
	}}
}

// ExtractLongDiffFrame runs the LongDiff algorithm over a decoded
// frame. If a hardware reset is detected, every channel's event is
// suppressed in favour of a single frame-global Reset record.
func ExtractLongDiffFrame(frame waveform.Frame, baseline [7]float32, p LongDiffParams) []NumassEvent {
	reset := detectResets(frame, p.Reset)
	if reset.Found {
		return []NumassEvent{{
			OffsetNS: uint16(reset.Start * 8),
			Event:    FrameEvent{Kind: ResetKind, Size: uint16(reset.End - reset.Start)},
		}}
	}

	var events []NumassEvent
	for ch, w := range frame {
		bch := float32(0)
		if int(ch) < len(baseline) {
			bch = baseline[ch]
		}
		events = append(events, longDiffChannelEvents(ch, w, bch)...)
	}
	sortEvents(events)
	return events
}
