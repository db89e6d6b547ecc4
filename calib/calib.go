/*
NAME
  calib.go

DESCRIPTION
  calib.go holds the detector's static, compile-time data: the pixel
  adjacency graph used by postprocess merging, and the per-algorithm
  affine (a*x+b) keV calibration tables used to convert shaped
  amplitudes into physical energy. These tables are external,
  detector-specific constants; this module treats them as opaque
  7x2 arrays and never derives or persists them (calibration-coefficient
  provenance is out of scope).
*/

// Package calib provides the detector's static adjacency table and
// per-algorithm keV calibration.
package calib

// AlgorithmKind identifies which of the built-in event-extraction
// algorithms produced an amplitude, for calibration table lookup.
type AlgorithmKind int

const (
	Max AlgorithmKind = iota
	Likhovid
	FirstPeak
	Trapezoid
	LongDiff
)

// CentralChannel is the detector's central focusing electrode. It is
// treated as a neighbour of every other pixel because it collects
// split charge from all peripheral pixels.
const CentralChannel uint8 = 5

// borders lists the unordered 1-based pixel pairs that share a
// physical edge on the detector.
var borders = [8][2]uint8{
	{1, 3}, {1, 4}, {1, 7},
	{2, 3}, {2, 5}, {2, 7},
	{3, 4}, {4, 5},
}

// IsNeighbour reports whether 0-based channels a and b should be
// treated as neighbours for postprocess merging: either is the central
// channel, their unordered pair is a detector border, or they're the
// same channel.
func IsNeighbour(a, b uint8) bool {
	if a == b {
		return true
	}
	if a == CentralChannel || b == CentralChannel {
		return true
	}
	a1, b1 := a+1, b+1
	for _, pair := range borders {
		if (pair[0] == a1 && pair[1] == b1) || (pair[0] == b1 && pair[1] == a1) {
			return true
		}
	}
	return false
}

// coeff is one channel's affine calibration pair {a, b}.
type coeff struct {
	A, B float32
}

// Calibration tables per built-in algorithm, 7 channels each. Identity
// rows ({1, 0}) mark channels that have not been separately
// calibrated and must not be special-cased.
var (
	maxTable = [7]coeff{
		{0.059379287, 0.31509972},
		{0.060557768, 0.26772976},
		{0.06317734, 0.23027992},
		{0.062333938, 0.26050186},
		{0.062186483, 0.25954437},
		{0.06751788, 0.2222414},
		{0.05806803, 0.14519024},
	}

	likhovidTable = [7]coeff{
		{0.3175972, 0.071510315},
		{0.2723175, 0.08074951},
		{0.2869933, 0.082289696},
		{0.29424095, -0.0075092316},
		{0.29598197, 0.06416798},
		{0.2869933, 0.082289696},
		{0.26007754, -0.017463684},
	}

	firstPeakTable = [7]coeff{
		{0.299658, -0.000544085},
		{0.257471, 0.00115133},
		{0.272017, -0.0013688},
		{0.272688, -0.000754553},
		{0.283667, 0.00380029},
		{0.270379, 0.000300277},
		{0.242901, 0.0005929},
	}

	// trapezoidTable has a calibrated row for every channel; it
	// currently contains no identity rows.
	trapezoidTable = [7]coeff{
		{0.10422505, 0.12287712},
		{0.10837995, 0.061881065},
		{0.1055561, 0.06568909},
		{0.10789265, 0.1550169},
		{0.10604781, 0.14850807},
		{0.10750465, 0.14304066},
		{0.10402631, 0.141922},
	}

	// longDiffTable reuses the trapezoid table: LongDiff is a
	// baseline-trend variant of the same shaper family and has no
	// independently-calibrated coefficients of its own.
	longDiffTable = trapezoidTable
)

func table(algo AlgorithmKind) [7]coeff {
	switch algo {
	case Max:
		return maxTable
	case Likhovid:
		return likhovidTable
	case FirstPeak:
		return firstPeakTable
	case Trapezoid:
		return trapezoidTable
	case LongDiff:
		return longDiffTable
	default:
		return [7]coeff{}
	}
}

// Convert maps a raw shaped amplitude to keV using the affine
// calibration a*amplitude+b for the given channel and algorithm.
func Convert(amplitude float32, channel uint8, algo AlgorithmKind) float32 {
	c := table(algo)[channel]
	return c.A*amplitude + c.B
}
