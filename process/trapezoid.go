/*
NAME
  trapezoid.go

DESCRIPTION
  trapezoid.go implements the trapezoidal FIR shaper, frame-global
  hardware-reset detection, per-channel overflow detection, and the
  threshold-crossing event-extraction state machine described for the
  Trapezoid algorithm. This is the non-trivial piece of the pipeline:
  a standard zero-area trapezoidal filter (two equal-length flat tops
  separated by a flat-top gap) whose output plateaus at a level
  proportional to a step input, plus hardware-anomaly handling layered
  on top.
*/

package process

import (
	"sort"

	"github.com/knumass/processing/waveform"
)

// channelOverflowCode maps the two channels that can saturate to
// their detector-specific ADC saturation code.
var channelOverflowCode = map[uint8]int16{
	1: 8189,
	5: 8081,
}

// resetInterval is the frame-global hardware-reset window, merged
// across every channel that showed a qualifying step.
type resetInterval struct {
	Found      bool
	Start, End int
}

// detectResets scans every channel's waveform for a sharp negative
// step w[i]-w[i+window] > threshold, and merges every qualifying
// interval [i, i+size) into the widest enclosing interval.
func detectResets(frame waveform.Frame, p HWResetParams) resetInterval {
	var out resetInterval
	if p.Window <= 0 {
		return out
	}
	for _, w := range frame {
		for i := 0; i+p.Window < len(w); i++ {
			if int(w[i])-int(w[i+p.Window]) > int(p.Threshold) {
				start, end := i, i+p.Size
				if !out.Found {
					out.Found, out.Start, out.End = true, start, end
				} else {
					if start < out.Start {
						out.Start = start
					}
					if end > out.End {
						out.End = end
					}
				}
			}
		}
	}
	return out
}

// detectOverflow looks for ADC saturation on channels 1 and 5 (the
// only channels known to saturate). The returned Overflow record
// spans from the first saturated sample to the start of a detected
// reset, or to the end of the waveform if no reset was found.
func detectOverflow(frame waveform.Frame, reset resetInterval) []NumassEvent {
	var events []NumassEvent
	for ch, code := range channelOverflowCode {
		w, ok := frame[ch]
		if !ok {
			continue
		}
		first := -1
		for i, v := range w {
			if v == code {
				first = i
				break
			}
		}
		if first == -1 {
			continue
		}
		end := len(w)
		if reset.Found {
			end = reset.Start
		}
		size := end - first
		if size < 0 {
			size = 0
		}
		events = append(events, NumassEvent{
			OffsetNS: uint16(first * 8),
			Event:    FrameEvent{Kind: OverflowKind, Channel: ch, Size: uint16(size)},
		})
	}
	return events
}

// shapeChannel computes the trapezoidal-shaper output for one
// channel's waveform: s[i] = mean(w[i+left+center:i+left+center+right])
// - mean(w[i:i+left]) - baseline. The result has length
// len(w)-offset+1 and is nil if the waveform is shorter than the
// shaper's window (a degenerate waveform, not an error).
func shapeChannel(w []int16, left, center, right int, baseline float32) []float32 {
	winLen := left + center + right
	if len(w) < winLen || left == 0 || right == 0 {
		return nil
	}
	out := make([]float32, len(w)-winLen+1)
	for i := range out {
		var leftSum, rightSum float64
		for k := 0; k < left; k++ {
			leftSum += float64(w[i+k])
		}
		for k := 0; k < right; k++ {
			rightSum += float64(w[i+left+center+k])
		}
		out[i] = float32(rightSum/float64(right)-leftSum/float64(left)) - baseline
	}
	return out
}

// trapezoidChannelEvents runs the threshold-crossing state machine
// over one channel's shaped trace, skipping any region that overlaps
// the frame's merged reset interval.
func trapezoidChannelEvents(ch uint8, w []int16, baseline float32, p TrapezoidParams, reset resetInterval) []NumassEvent {
	offset := p.Offset()
	s := shapeChannel(w, p.Left, p.Center, p.Right, baseline)
	if s == nil {
		return nil
	}
	threshold := float32(p.Threshold)

	var events []NumassEvent
	i := 0
	for i < len(s) {
		if reset.Found && i+offset == reset.Start {
			i = reset.End - offset
			if i < 0 {
				i = 0
			}
			continue
		}
		if s[i] >= threshold && (i == 0 || s[i-1] < threshold) {
			start := i
			var energy float32
			end := i
			for end < len(s) && s[end] >= threshold && !(reset.Found && end+offset == reset.Start) {
				energy += s[end]
				end++
			}
			if end-start >= p.MinLength {
				events = append(events, NumassEvent{
					OffsetNS: uint16((start + offset) * 8),
					Event: FrameEvent{
						Kind: EventKind, Channel: ch,
						Amplitude: energy / float32(offset),
						Size:      uint16(end - start),
					},
				})
			}
			i = end
		} else {
			i++
		}
	}
	return events
}

// ExtractTrapezoidFrame runs the full Trapezoid algorithm over a
// decoded frame: reset detection, overflow detection, per-channel
// shaping and event extraction, then the skip filter.
func ExtractTrapezoidFrame(frame waveform.Frame, baseline [7]float32, p TrapezoidParams) []NumassEvent {
	reset := detectResets(frame, p.Reset)
	overflow := detectOverflow(frame, reset)
	anomaly := reset.Found || len(overflow) > 0

	events := append([]NumassEvent{}, overflow...)

	for ch, w := range frame {
		bch := float32(0)
		if int(ch) < len(baseline) {
			bch = baseline[ch]
		}
		events = append(events, trapezoidChannelEvents(ch, w, bch, p, reset)...)
	}

	if reset.Found {
		events = append(events, NumassEvent{
			OffsetNS: uint16(reset.Start * 8),
			Event:    FrameEvent{Kind: ResetKind, Size: uint16(reset.End - reset.Start)},
		})
	}

	switch p.Skip {
	case SkipBad:
		if anomaly {
			return nil
		}
	case SkipGood:
		if !anomaly {
			return nil
		}
	}

	sortEvents(events)
	return events
}

func sortEvents(events []NumassEvent) {
	sort.Slice(events, func(i, j int) bool { return events[i].OffsetNS < events[j].OffsetNS })
}
