package ports

import (
	"context"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
)

// VideoDecoder reads every frame of a lossless video back as raw RGB.
type VideoDecoder interface {
	// ReadFrames decodes all frames of the video at path. Frames must have
	// the given geometry.
	ReadFrames(ctx context.Context, path string, geometry framecodec.Geometry) ([]framecodec.Frame, error)
}
