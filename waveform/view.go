/*
NAME
  view.go

DESCRIPTION
  view.go decodes the little-endian int16 byte payload of a raw frame
  into a sample slice, and assembles per-point frame maps keyed by
  corrected trigger timestamp. Decoding is a single pass per frame (not
  per sample) to avoid copying inside any hot processing loop.
*/

// Package waveform maps raw, framed byte payloads onto signed-16-bit
// sample spans and groups them by corrected frame timestamp.
package waveform

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/knumass/processing/rsb"
)

// ErrMalformedFrame is returned when a frame's byte payload cannot be
// interpreted as a whole number of little-endian int16 samples.
var ErrMalformedFrame = errors.New("waveform: frame payload has odd byte length")

// ErrChannelOutOfRange is returned when a channel id exceeds the
// detector's known pixel count.
var ErrChannelOutOfRange = errors.New("waveform: channel id out of range")

// Decode converts a frame's raw byte payload into a slice of signed
// 16-bit samples, little-endian. It fails with ErrMalformedFrame when
// the byte length is odd.
func Decode(f rsb.Frame) ([]int16, error) {
	if len(f.Data)%2 != 0 {
		return nil, errors.Wrapf(ErrMalformedFrame, "length %d", len(f.Data))
	}
	n := len(f.Data) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(f.Data[i*2 : i*2+2]))
	}
	return samples, nil
}

// Frame is the decoded waveform for every channel that fired at a given
// corrected timestamp: a mapping from channel index to its sample span.
type Frame map[uint8][]int16

// Frames maps a corrected frame-start timestamp (ns) to the waveforms
// that fired at that time across all channels.
type Frames map[uint64]Frame

// Extract remaps a raw point's frames into Frames: corrected timestamp
// to channel-to-samples. It fails fast (and stops) with the first
// malformed frame or out-of-range channel id encountered; the caller
// should treat that as fatal for the whole point, per the module's
// error taxonomy.
func Extract(point *rsb.Point) (Frames, error) {
	out := make(Frames)
	for _, channel := range point.Channels {
		if channel.ID >= rsb.NumChannels {
			return nil, errors.Wrapf(ErrChannelOutOfRange, "channel %d", channel.ID)
		}
		for _, block := range channel.Blocks {
			for _, frame := range block.Frames {
				samples, err := Decode(frame)
				if err != nil {
					return nil, err
				}
				t := rsb.CorrectFrameTime(frame.Time)
				entry, ok := out[t]
				if !ok {
					entry = make(Frame)
					out[t] = entry
				}
				entry[channel.ID] = samples
			}
		}
	}
	return out, nil
}
