// Package persist implements the stage that hands frames to a transport.
package persist

import (
	"context"
	"fmt"
	"image"

	"github.com/One-eyed-warrior/data2video/pkg/pipeline"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// DefaultMaxDebugFrames limits how many frames go to the debug sink.
const DefaultMaxDebugFrames = 60

// Stage persists frame sequences and mirrors them to the debug sink.
type Stage struct {
	transport      ports.FrameTransport
	renderer       ports.Renderer
	sink           ports.DebugSink
	logger         ports.Logger
	MaxDebugFrames int
}

// New creates a persist stage.
func New(transport ports.FrameTransport, renderer ports.Renderer, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		transport:      transport,
		renderer:       renderer,
		sink:           sink,
		logger:         logger.WithComponent("persist"),
		MaxDebugFrames: DefaultMaxDebugFrames,
	}
}

// Execute stores input.Frames under input.Target.
func (s *Stage) Execute(ctx context.Context, input pipeline.PersistInput) (pipeline.PersistResult, error) {
	result := pipeline.PersistResult{FrameCount: len(input.Frames)}

	s.logger.Debug("Persisting %d frames to %s", len(input.Frames), input.Target)
	handle, err := s.transport.Persist(ctx, input.Target, input.Frames)
	if err != nil {
		return result, fmt.Errorf("persist frames: %w", err)
	}
	result.Handle = handle

	if s.sink.Enabled() {
		result.DebugFrames = s.saveDebug(input)
	}
	return result, nil
}

// saveDebug writes the leading frames and a contact sheet. Failures are
// logged and do not fail the stage.
func (s *Stage) saveDebug(input pipeline.PersistInput) int {
	n := len(input.Frames)
	if s.MaxDebugFrames > 0 && n > s.MaxDebugFrames {
		n = s.MaxDebugFrames
	}

	images := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		f := input.Frames[i]
		if err := s.sink.SaveFrame(i, f); err != nil {
			s.logger.Warn("Failed to save debug frame %d: %v", i, err)
		}
		images = append(images, f)
	}

	if len(images) > 0 && s.renderer != nil {
		sheet := s.renderer.ContactSheet(images, ports.DefaultContactSheetOptions())
		if err := s.sink.SaveContactSheet(sheet); err != nil {
			s.logger.Warn("Failed to save contact sheet: %v", err)
		}
	}

	s.logger.Debug("Saved %d debug frames", n)
	return n
}

var _ pipeline.Stage[pipeline.PersistInput, pipeline.PersistResult] = (*Stage)(nil)
