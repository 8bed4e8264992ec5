// Package verify implements the self-check that reads a stored sequence
// back and compares it with the bytes that were framed.
package verify

import (
	"context"
	"fmt"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/pipeline"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// Stage verifies a persisted frame sequence.
type Stage struct {
	transport ports.FrameTransport
	decoder   *framecodec.Decoder
	logger    ports.Logger
}

// New creates a verify stage.
func New(transport ports.FrameTransport, decoder *framecodec.Decoder, logger ports.Logger) *Stage {
	return &Stage{
		transport: transport,
		decoder:   decoder,
		logger:    logger.WithComponent("verify"),
	}
}

// Execute retrieves input.Handle and checks that it decodes to input.Stored.
func (s *Stage) Execute(ctx context.Context, input pipeline.VerifyInput) (pipeline.VerifyResult, error) {
	result := pipeline.VerifyResult{}

	frames, err := s.transport.Retrieve(ctx, input.Handle)
	if err != nil {
		return result, fmt.Errorf("retrieve frames: %w", err)
	}
	result.FrameCount = len(frames)

	if err := framecodec.Verify(s.decoder, input.Stored, frames); err != nil {
		return result, err
	}

	result.Bytes = len(input.Stored)
	s.logger.Debug("Verified %d bytes in %d frames", result.Bytes, result.FrameCount)
	return result, nil
}

var _ pipeline.Stage[pipeline.VerifyInput, pipeline.VerifyResult] = (*Stage)(nil)
