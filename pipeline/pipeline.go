/*
NAME
  pipeline.go

DESCRIPTION
  pipeline.go wires the three stages together for a single point:
  waveform extraction, preprocess, process, and postprocess, in that
  order, plus the final events-to-histogram reduction. It also
  provides a batch helper used by tests and offline tooling to run the
  pipeline over many points and summarise per-channel amplitudes.
*/

// Package pipeline orchestrates preprocess, process and postprocess
// for a single acquisition point and reduces the result into a
// histogram.
package pipeline

import (
	"context"
	"io"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/knumass/processing/histogram"
	"github.com/knumass/processing/postprocess"
	"github.com/knumass/processing/preprocess"
	"github.com/knumass/processing/process"
	"github.com/knumass/processing/rsb"
	"github.com/knumass/processing/waveform"
)

// Meta is the acquisition metadata a caller supplies alongside a raw
// point.
type Meta = preprocess.Meta

// Result is one point's complete pipeline output.
type Result struct {
	Events     process.NumassEvents
	Preprocess *preprocess.Preprocess
}

// ExtractPoint runs the full pipeline over a single point: waveform
// extraction, preprocess, event extraction, and postprocessing.
// Cancellation is checked cooperatively at each stage boundary; no
// stage itself blocks. log may be nil.
func ExtractPoint(
	ctx context.Context,
	point *rsb.Point,
	meta Meta,
	processParams process.ProcessParams,
	postParams postprocess.PostProcessParams,
	log logging.Logger,
) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frames, err := waveform.Extract(point)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: extract waveforms")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pre := preprocess.FromPoint(frames, point, meta, processParams.Algorithm, log)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var baseline [7]float32
	if pre.Baseline != nil {
		baseline = *pre.Baseline
	}
	events := process.ExtractPoint(frames, baseline, processParams)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	events = postprocess.PostProcess(events, pre, postParams)

	return &Result{Events: events, Preprocess: pre}, nil
}

// EventsToHistogram reduces a point's postprocessed events into a
// per-channel amplitude histogram. Only EventKind records contribute.
func EventsToHistogram(events process.NumassEvents, min, max float64, bins int) *histogram.Histogram {
	h := histogram.New(min, max, bins)
	for _, frameEvents := range events {
		for _, e := range frameEvents {
			if e.Event.Kind == process.EventKind {
				h.Add(e.Event.Channel, float64(e.Event.Amplitude))
			}
		}
	}
	return h
}

// BatchOptions configures ProcessAll's diagnostic logging.
type BatchOptions struct {
	// LogPath, if set, rotates the batch's diagnostic log through
	// lumberjack instead of discarding it.
	LogPath   string
	MaxSizeMB int
}

// ProcessAll runs ExtractPoint over every point (points are
// independent; no shared mutable state crosses point boundaries, so
// callers may equally well fan this out themselves) and additionally
// returns the mean reconstructed amplitude per channel across the
// whole batch, as a quick point-level sanity check.
func ProcessAll(
	ctx context.Context,
	points []*rsb.Point,
	metas []Meta,
	processParams process.ProcessParams,
	postParams postprocess.PostProcessParams,
	opts BatchOptions,
) ([]*Result, map[uint8]float64, error) {
	var diag io.Writer = io.Discard
	if opts.LogPath != "" {
		diag = &lumberjack.Logger{Filename: opts.LogPath, MaxSize: opts.MaxSizeMB}
	}
	log := logging.New(logging.Info, diag, true)

	results := make([]*Result, len(points))
	amplitudes := make(map[uint8][]float64)

	for i, point := range points {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		res, err := ExtractPoint(ctx, point, metas[i], processParams, postParams, log)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "pipeline: point %d", i)
		}
		results[i] = res

		for _, frameEvents := range res.Events {
			for _, e := range frameEvents {
				if e.Event.Kind == process.EventKind {
					amplitudes[e.Event.Channel] = append(amplitudes[e.Event.Channel], float64(e.Event.Amplitude))
				}
			}
		}
	}

	means := make(map[uint8]float64, len(amplitudes))
	for ch, xs := range amplitudes {
		means[ch] = stat.Mean(xs, nil)
	}

	return results, means, nil
}
