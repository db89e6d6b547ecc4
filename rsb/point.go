/*
NAME
  point.go

DESCRIPTION
  point.go defines the raw, pre-decoded shape of a numass acquisition
  point as produced upstream (by the rsb_event protobuf schema) and
  consumed by this module's processing core. The core never unmarshals
  protobuf wire bytes itself; it operates on this struct tree, which
  mirrors rsb_event.point.channel.block.Frame field-for-field so that a
  real generated protobuf type can stand in for it without touching any
  downstream code.
*/

// Package rsb holds the raw point data model consumed by the processing
// pipeline: a point is an ordered collection of channels, each carrying
// blocks, each carrying triggered waveform frames.
package rsb

// NumChannels is the number of detector pixels every point is expected
// to carry data for (0..6, pixel 5 is the central focusing electrode).
const NumChannels = 7

// timeCorruptionSentinel and timeCorruptionDelta describe a known
// hardware quirk: some triggers carry a constant additive corruption on
// their timestamp. See CorrectFrameTime.
const (
	timeCorruptionSentinel uint64 = 0xF000_0000_0000_0000
	timeCorruptionDelta    uint64 = 0xFFFF_FFF9_03DA_0000
)

// SamplePeriodNS is the fixed ADC sampling period for every waveform
// sample, in nanoseconds.
const SamplePeriodNS = 8

// Frame is one triggered waveform buffer: a trigger timestamp and a
// little-endian signed-16-bit sample payload.
type Frame struct {
	// Time is the raw (possibly corrupted) trigger timestamp in
	// nanoseconds. Use CorrectFrameTime before comparing timestamps
	// across frames.
	Time uint64
	// Data is the little-endian int16 sample payload. Length must be
	// even; an odd length is a malformed frame.
	Data []byte
}

// Block is a fixed-duration (1s) acquisition window containing frames.
type Block struct {
	Frames []Frame
}

// Channel is one detector pixel's acquisition data.
type Channel struct {
	// ID is the pixel index, 0..NumChannels-1.
	ID     uint8
	Blocks []Block
}

// Point is one acquisition run at a fixed HV setting.
type Point struct {
	Channels []Channel
}

// CorrectFrameTime undoes a known hardware timestamp corruption: some
// triggers have a large constant added to their timestamp. The
// correction must be applied once, at the boundary where frames are
// mapped by timestamp, and never again downstream.
func CorrectFrameTime(t uint64) uint64 {
	if t > timeCorruptionSentinel {
		return t - timeCorruptionDelta
	}
	return t
}
