/*
NAME
  histogram.go

DESCRIPTION
  histogram.go implements the fixed-range, fixed-bin-width per-channel
  histogram used throughout the pipeline: for the preprocess baseline
  estimate, the bad-block trigger-density check, and the final
  amplitude spectrum. Channel storage is a sparse map, since many
  channels may never receive an entry (e.g. under a skip filter).
*/

// Package histogram provides a fixed-range per-channel binned counter
// and its CSV rendering.
package histogram

import "sort"

// Histogram holds per-channel bin counts over a fixed half-open range
// [Min, Max), split into Bins equal-width buckets.
type Histogram struct {
	Min, Max float64
	Bins     int
	Step     float64

	channels map[uint8][]float64
}

// New allocates a histogram over the half-open range [min, max)
// divided into bins equal-width buckets. Per-channel storage is
// allocated lazily on first use.
func New(min, max float64, bins int) *Histogram {
	return &Histogram{
		Min:      min,
		Max:      max,
		Bins:     bins,
		Step:     (max - min) / float64(bins),
		channels: make(map[uint8][]float64),
	}
}

func (h *Histogram) ensure(ch uint8) []float64 {
	row, ok := h.channels[ch]
	if !ok {
		row = make([]float64, h.Bins)
		h.channels[ch] = row
	}
	return row
}

// Add increments the bin containing x for channel ch. x strictly
// within (Min, Max) is counted; both endpoints are excluded. Values
// outside the range are silently dropped.
func (h *Histogram) Add(ch uint8, x float64) {
	if x <= h.Min || x >= h.Max {
		return
	}
	row := h.ensure(ch)
	bin := int((x - h.Min) / h.Step)
	if bin < 0 {
		bin = 0
	}
	if bin >= h.Bins {
		bin = h.Bins - 1
	}
	row[bin]++
}

// AddBatch is equivalent to calling Add for every value in xs, except
// that the left endpoint Min is included (x >= Min && x < Max) rather
// than excluded. This discrepancy with Add is intentional and must be
// preserved: it matches the historical behaviour of the two call sites
// (per-sample vs. bulk ingestion) that this histogram was grounded on.
func (h *Histogram) AddBatch(ch uint8, xs []float64) {
	for _, x := range xs {
		idx := (x - h.Min) / h.Step
		if idx >= 0 && idx < float64(h.Bins) {
			h.ensure(ch)[int(idx)]++
		}
	}
}

// Channels returns the sorted list of channel indices that have
// received at least one entry.
func (h *Histogram) Channels() []uint8 {
	chans := make([]uint8, 0, len(h.channels))
	for ch := range h.channels {
		chans = append(chans, ch)
	}
	sort.Slice(chans, func(i, j int) bool { return chans[i] < chans[j] })
	return chans
}

// Counts returns the bin counts for channel ch, or nil if the channel
// has never received an entry.
func (h *Histogram) Counts(ch uint8) []float64 {
	return h.channels[ch]
}

// BinCenter returns the centre value of bin i.
func (h *Histogram) BinCenter(i int) float64 {
	return h.Min + h.Step*float64(i) + h.Step/2
}

// Window is an open interval (Lo, Hi) used to restrict Events to a
// sub-range of the histogram's domain.
type Window struct {
	Lo, Hi float64
}

// Events counts, per channel, the number of entries in bins whose
// centre lies strictly inside window. A nil window counts the whole
// range.
func (h *Histogram) Events(window *Window) map[uint8]float64 {
	out := make(map[uint8]float64, len(h.channels))
	for ch, row := range h.channels {
		var total float64
		for i, c := range row {
			if window != nil {
				center := h.BinCenter(i)
				if !(center > window.Lo && center < window.Hi) {
					continue
				}
			}
			total += c
		}
		out[ch] = total
	}
	return out
}

// MergeChannels returns per-bin sums across every present channel;
// channels without entries contribute zero.
func (h *Histogram) MergeChannels() []float64 {
	merged := make([]float64, h.Bins)
	for _, row := range h.channels {
		for i, c := range row {
			merged[i] += c
		}
	}
	return merged
}
