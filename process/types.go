/*
NAME
  types.go

DESCRIPTION
  types.go defines the event-extraction sum types: the tagged
  FrameEvent union (Event/Overflow/Reset/Frame), the NumassEvent pair,
  the NumassEvents point-level map, and the closed set of built-in
  extraction Algorithm variants. Per the "tagged unions over
  inheritance" design rule, variants are encoded as plain tagged
  structs rather than an open interface hierarchy, so the match arms
  in extraction stay exhaustive and new algorithms extend the enum
  rather than a polymorphic registry.
*/

// Package process extracts timestamped physics events from a point's
// decoded waveforms, running one of five built-in algorithms.
package process

import "github.com/knumass/processing/calib"

// FrameEventKind discriminates the FrameEvent tagged union.
type FrameEventKind int

const (
	// EventKind is a reconstructed physics event.
	EventKind FrameEventKind = iota
	// OverflowKind marks ADC saturation.
	OverflowKind
	// ResetKind marks a preamplifier discharge pulse.
	ResetKind
	// FrameKind is a placeholder reserved for whole-frame annotations.
	FrameKind
)

// FrameEvent is a tagged union over the four kinds of record the
// extraction stage can produce for a frame. Only the fields relevant
// to Kind are meaningful; Channel/Amplitude are unused for Reset and
// Frame.
type FrameEvent struct {
	Kind FrameEventKind

	// Channel is the pixel this record belongs to. Unused (zero) for
	// ResetKind and FrameKind, which are frame-global.
	Channel uint8

	// Amplitude is the reconstructed amplitude; only meaningful for
	// EventKind.
	Amplitude float32

	// Size is shaper samples above threshold (Trapezoid Event), the
	// saturation span (Overflow), the reset span (Reset), 1 for a
	// single-sample Event produced by Max/Likhovid/FirstPeak, or the
	// waveform's last sample index for a LongDiff Event.
	Size uint16
}

// Hash returns a hash that depends only on the event's tag, not its
// numeric fields, so that FrameEvent values can be grouped or deduped
// purely by kind when numeric fields are immaterial.
func (e FrameEvent) Hash() uint64 {
	return uint64(e.Kind)
}

// NumassEvent pairs a FrameEvent with its offset (in ns) from the
// start of the frame it occurred in. OffsetNS is always a multiple of
// the 8ns sample period.
type NumassEvent struct {
	OffsetNS uint16
	Event    FrameEvent
}

// NumassEvents maps a frame-start timestamp (ns) to the NumassEvent
// values extracted for that frame, ordered by OffsetNS ascending.
type NumassEvents map[uint64][]NumassEvent

// SkipOption controls which frames Trapezoid extraction returns
// events for, based on whether a hardware anomaly (reset or overflow)
// was observed in the frame.
type SkipOption int

const (
	// SkipNone returns every frame's events unconditionally.
	SkipNone SkipOption = iota
	// SkipBad discards all events from a frame that saw an overflow
	// or reset.
	SkipBad
	// SkipGood keeps only frames that saw an overflow or reset.
	SkipGood
)

// HWResetParams configures hardware-reset (preamp discharge) detection.
type HWResetParams struct {
	// Window is the sample distance used to detect a sharp negative
	// step: w[i] - w[i+Window].
	Window int
	// Threshold is the minimum step size (in ADC counts) to flag i as
	// the start of a reset.
	Threshold int16
	// Size is the fixed width of a detected reset, in samples.
	Size int
}

// LikhovidParams configures the Likhovid algorithm: a peak-centred
// window average.
type LikhovidParams struct {
	Left, Right int
}

// FirstPeakParams configures the FirstPeak algorithm.
type FirstPeakParams struct {
	Threshold int16
	Left      int
}

// TrapezoidParams configures the trapezoidal FIR shaper and its
// threshold event extractor.
type TrapezoidParams struct {
	Left, Center, Right int
	Threshold           int16
	MinLength           int
	Skip                SkipOption
	Reset               HWResetParams
}

// LongDiffParams configures the LongDiff baseline-trend estimator.
type LongDiffParams struct {
	Reset HWResetParams
}

// Algorithm is the closed set of built-in event-extraction algorithms,
// encoded as a tagged struct: Kind selects which payload field is
// meaningful.
type Algorithm struct {
	Kind calib.AlgorithmKind

	Likhovid  LikhovidParams
	FirstPeak FirstPeakParams
	Trapezoid TrapezoidParams
	LongDiff  LongDiffParams
}

// NewMax returns the Max algorithm variant.
func NewMax() Algorithm { return Algorithm{Kind: calib.Max} }

// NewLikhovid returns the Likhovid algorithm variant.
func NewLikhovid(left, right int) Algorithm {
	return Algorithm{Kind: calib.Likhovid, Likhovid: LikhovidParams{Left: left, Right: right}}
}

// NewFirstPeak returns the FirstPeak algorithm variant.
func NewFirstPeak(threshold int16, left int) Algorithm {
	return Algorithm{Kind: calib.FirstPeak, FirstPeak: FirstPeakParams{Threshold: threshold, Left: left}}
}

// NewTrapezoid returns the Trapezoid algorithm variant.
func NewTrapezoid(left, center, right int, threshold int16, minLength int, skip SkipOption, reset HWResetParams) Algorithm {
	return Algorithm{
		Kind: calib.Trapezoid,
		Trapezoid: TrapezoidParams{
			Left: left, Center: center, Right: right,
			Threshold: threshold, MinLength: minLength,
			Skip: skip, Reset: reset,
		},
	}
}

// NewLongDiff returns the LongDiff algorithm variant.
func NewLongDiff(reset HWResetParams) Algorithm {
	return Algorithm{Kind: calib.LongDiff, LongDiff: LongDiffParams{Reset: reset}}
}

// ProcessParams bundles the algorithm selection with the keV
// conversion toggle.
type ProcessParams struct {
	Algorithm    Algorithm
	ConvertToKeV bool
}

// Offset returns the trapezoidal shaper's delay in samples:
// left+center+right. Zero for non-Trapezoid algorithms.
func (p TrapezoidParams) Offset() int {
	return p.Left + p.Center + p.Right
}
