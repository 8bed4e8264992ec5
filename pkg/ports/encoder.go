package ports

import (
	"context"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
)

// VideoEncoder packs frames into a lossless video container.
type VideoEncoder interface {
	// Begin starts a new video with the given frame geometry and rate.
	Begin(ctx context.Context, geometry framecodec.Geometry, fps float64, opts EncoderOptions) error

	// EncodeFrame appends one frame.
	EncodeFrame(frame framecodec.Frame) error

	// End finalizes the container and returns its bytes.
	End() ([]byte, error)
}

// EncoderOptions configures video encoding.
type EncoderOptions struct {
	Codec     string // ffv1 or x264rgb
	Container string // mkv, avi or mp4
	Threads   int    // 0 lets the encoder decide
}
