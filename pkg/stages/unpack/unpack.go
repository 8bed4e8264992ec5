// Package unpack implements the stage that recovers a payload from a
// stored frame sequence.
package unpack

import (
	"context"
	"fmt"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/pipeline"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
	"github.com/One-eyed-warrior/data2video/pkg/stages/pack"
)

// Stage retrieves, decodes and decompresses payloads.
type Stage struct {
	transport ports.FrameTransport
	decoder   *framecodec.Decoder
	logger    ports.Logger
}

// New creates an unpack stage.
func New(transport ports.FrameTransport, decoder *framecodec.Decoder, logger ports.Logger) *Stage {
	return &Stage{
		transport: transport,
		decoder:   decoder,
		logger:    logger.WithComponent("unpack"),
	}
}

// Execute decodes the sequence stored under input.Handle.
func (s *Stage) Execute(ctx context.Context, input pipeline.UnpackInput) (pipeline.UnpackResult, error) {
	result := pipeline.UnpackResult{}

	frames, err := s.transport.Retrieve(ctx, input.Handle)
	if err != nil {
		return result, fmt.Errorf("retrieve frames: %w", err)
	}
	result.Frames = frames
	s.logger.Debug("Retrieved %d frames from %s", len(frames), input.Handle)

	stored, h, err := s.decoder.DecodeWithHeader(frames)
	if err != nil {
		return result, err
	}
	result.Header = h
	result.StoredLength = len(stored)

	compressed := input.Compressed
	if h.Format == framecodec.HeaderTagged {
		compressed = h.Compressed()
	}
	if !compressed {
		result.Payload = stored
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	payload, err := pack.Decompress(stored)
	if err != nil {
		return result, err
	}
	s.logger.Debug("Decompressed %d bytes to %d bytes", len(stored), len(payload))

	result.Payload = payload
	result.Compressed = true
	return result, nil
}

var _ pipeline.Stage[pipeline.UnpackInput, pipeline.UnpackResult] = (*Stage)(nil)
