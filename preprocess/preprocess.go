/*
NAME
  preprocess.go

DESCRIPTION
  preprocess.go computes per-point metadata ahead of event extraction:
  the Trapezoid baseline (the shaped output's most common value, found
  via an amplitude histogram's mode bin) and the set of 1-second bad
  blocks implied by a dead acquisition window at low HV.
*/

// Package preprocess computes per-point baseline and bad-block
// metadata ahead of event extraction.
package preprocess

import (
	"math"
	"sort"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/knumass/processing/calib"
	"github.com/knumass/processing/histogram"
	"github.com/knumass/processing/process"
	"github.com/knumass/processing/rsb"
	"github.com/knumass/processing/waveform"
)

// Timing constants fixed by the readout scheduler and the HV gating
// policy.
const (
	// CutoffBinSize is the size of a bad block, in nanoseconds.
	CutoffBinSize uint64 = 1_000_000_000
	// CheckBinSize is the sub-bin resolution used to look for dead
	// time within a bad block, in nanoseconds.
	CheckBinSize uint64 = 10_000_000
	// CheckHVThreshold is the HV (in volts) above which bad-block
	// detection is skipped entirely.
	CheckHVThreshold float32 = 16e3
)

// Meta is the acquisition metadata supplied alongside a raw point.
type Meta struct {
	StartTime       time.Time
	AcquisitionTime float64 // seconds
	HV              float32
}

// BlockSet is an ordered set of 1-second block indices.
type BlockSet map[int]struct{}

// Sorted returns the set's members in ascending order.
func (s BlockSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for idx := range s {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Preprocess is the per-point metadata produced ahead of event
// extraction.
type Preprocess struct {
	// Baseline is present iff the algorithm is Trapezoid; absent
	// (nil) for every other algorithm, which downstream code must
	// treat as an all-zero baseline.
	Baseline *[7]float32

	HV              float32
	StartTime       time.Time
	AcquisitionTime uint64 // ns
	FrameLen        uint64 // ns
	BadBlocks       BlockSet
}

// EffectiveTime is the acquisition time with bad blocks excised:
// acquisition_time - |bad_blocks|*1s.
func (p *Preprocess) EffectiveTime() uint64 {
	cut := uint64(len(p.BadBlocks)) * CutoffBinSize
	if cut > p.AcquisitionTime {
		return 0
	}
	return p.AcquisitionTime - cut
}

// FromPoint computes the Preprocess record for a point given its
// already-decoded frames (see waveform.Extract), the raw point (for
// frame-length derivation), acquisition metadata, and the selected
// algorithm. log may be nil.
func FromPoint(frames waveform.Frames, point *rsb.Point, meta Meta, algo process.Algorithm, log logging.Logger) *Preprocess {
	acquisitionNS := uint64(meta.AcquisitionTime * 1e9)

	p := &Preprocess{
		HV:              meta.HV,
		StartTime:       meta.StartTime,
		AcquisitionTime: acquisitionNS,
		FrameLen:        frameLen(point),
		BadBlocks:       detectBadBlocks(frames, meta.HV, acquisitionNS),
	}

	if algo.Kind == calib.Trapezoid {
		p.Baseline = baselineFromFrames(frames, algo.Trapezoid)
	} else if log != nil {
		log.Debug("preprocess: no baseline computed for non-Trapezoid algorithm")
	}

	return p
}

// frameLen derives a single frame's duration in nanoseconds from the
// sample count of the point's very first frame.
func frameLen(point *rsb.Point) uint64 {
	for _, ch := range point.Channels {
		for _, block := range ch.Blocks {
			for _, frame := range block.Frames {
				return uint64(len(frame.Data)/2) * rsb.SamplePeriodNS
			}
		}
	}
	return 0
}

// detectBadBlocks finds 1-second blocks with a 10ms sub-interval
// containing no triggers at all, which indicates acquisition dead
// time. High-HV points (above CheckHVThreshold) are not gated.
func detectBadBlocks(frames waveform.Frames, hv float32, acquisitionNS uint64) BlockSet {
	bad := make(BlockSet)
	if hv > CheckHVThreshold || acquisitionNS == 0 {
		return bad
	}

	bins := int(math.Ceil(float64(acquisitionNS) / float64(CheckBinSize)))
	if bins == 0 {
		return bad
	}

	density := histogram.New(0, float64(acquisitionNS), bins)
	for t := range frames {
		density.Add(0, float64(t))
	}

	counts := density.Counts(0)
	for idx := 0; idx < bins; idx++ {
		rightEdge := uint64(idx+1) * CheckBinSize
		if rightEdge > acquisitionNS {
			continue
		}
		var count float64
		if counts != nil {
			count = counts[idx]
		}
		if count == 0 {
			blockIdx := int((uint64(idx) * CheckBinSize) / CutoffBinSize)
			bad[blockIdx] = struct{}{}
		}
	}
	return bad
}

// baselineFromFrames estimates the Trapezoid baseline per channel:
// every frame's shaped (un-corrected, threshold-free) trace is binned
// into an amplitude histogram over [-5.0, 120.0) step 0.5, and the
// baseline is the centre of the most populated bin.
func baselineFromFrames(frames waveform.Frames, p process.TrapezoidParams) *[7]float32 {
	amps := histogram.New(-5.0, 120.0, 250)

	for _, frame := range frames {
		for ch, w := range frame {
			shaped := shapeNoBaseline(w, p.Left, p.Center, p.Right)
			if shaped == nil {
				continue
			}
			amps.AddBatch(ch, shaped)
		}
	}

	var baseline [7]float32
	for _, ch := range amps.Channels() {
		if int(ch) >= len(baseline) {
			continue
		}
		counts := amps.Counts(ch)
		maxIdx := 0
		for i, c := range counts {
			if c > counts[maxIdx] {
				maxIdx = i
			}
		}
		baseline[ch] = float32(amps.BinCenter(maxIdx))
	}
	return &baseline
}

// shapeNoBaseline runs the trapezoidal shaper with no baseline
// subtraction, as float64 for histogram ingestion.
func shapeNoBaseline(w []int16, left, center, right int) []float64 {
	winLen := left + center + right
	if len(w) < winLen || left == 0 || right == 0 {
		return nil
	}
	out := make([]float64, len(w)-winLen+1)
	for i := range out {
		var leftSum, rightSum float64
		for k := 0; k < left; k++ {
			leftSum += float64(w[i+k])
		}
		for k := 0; k < right; k++ {
			rightSum += float64(w[i+left+center+k])
		}
		out[i] = rightSum/float64(right) - leftSum/float64(left)
	}
	return out
}
