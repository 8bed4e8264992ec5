// Package pack implements the stage that turns a payload into frames.
package pack

import (
	"context"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/pipeline"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// Stage compresses (optionally) and encodes payloads.
type Stage struct {
	geometry framecodec.Geometry
	opts     framecodec.EncoderOptions
	logger   ports.Logger
}

// New creates a pack stage. The encoder options are validated up front so
// Execute only fails on cancellation.
func New(g framecodec.Geometry, opts framecodec.EncoderOptions, logger ports.Logger) (*Stage, error) {
	if _, err := framecodec.NewEncoder(g, opts); err != nil {
		return nil, err
	}
	return &Stage{
		geometry: g,
		opts:     opts,
		logger:   logger.WithComponent("pack"),
	}, nil
}

// Execute builds the frame sequence for input.Payload.
func (s *Stage) Execute(ctx context.Context, input pipeline.PackInput) (pipeline.PackResult, error) {
	result := pipeline.PackResult{Stored: input.Payload}

	opts := s.opts
	if input.Compress {
		result.Stored = Compress(input.Payload)
		result.Compressed = true
		opts.Flags |= framecodec.FlagZstd
		s.logger.Debug("Compressed %d bytes to %d bytes", len(input.Payload), len(result.Stored))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	enc, err := framecodec.NewEncoder(s.geometry, opts)
	if err != nil {
		return result, err
	}

	result.Header = enc.Header(len(result.Stored))
	result.Frames = enc.Encode(result.Stored)
	s.logger.Debug("Packed %d bytes into %d frames of %s", len(result.Stored), len(result.Frames), s.geometry)
	return result, nil
}

var _ pipeline.Stage[pipeline.PackInput, pipeline.PackResult] = (*Stage)(nil)
