package mocks

import (
	"context"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder. By default
// End returns the concatenated pixel bytes of every encoded frame.
type VideoEncoder struct {
	BeginFunc       func(ctx context.Context, geometry framecodec.Geometry, fps float64, opts ports.EncoderOptions) error
	EncodeFrameFunc func(frame framecodec.Frame) error
	EndFunc         func() ([]byte, error)

	// Recorded calls for verification
	BeginCalled bool
	Geometry    framecodec.Geometry
	FPS         float64
	Options     ports.EncoderOptions
	Frames      []framecodec.Frame
	EndCalled   bool
}

func (m *VideoEncoder) Begin(ctx context.Context, geometry framecodec.Geometry, fps float64, opts ports.EncoderOptions) error {
	m.BeginCalled = true
	m.Geometry = geometry
	m.FPS = fps
	m.Options = opts
	m.Frames = nil
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, geometry, fps, opts)
	}
	return nil
}

func (m *VideoEncoder) EncodeFrame(frame framecodec.Frame) error {
	m.Frames = append(m.Frames, frame)
	if m.EncodeFrameFunc != nil {
		return m.EncodeFrameFunc(frame)
	}
	return nil
}

func (m *VideoEncoder) End() ([]byte, error) {
	m.EndCalled = true
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	return framecodec.Flatten(m.Frames), nil
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)

// VideoDecoder is a mock implementation of ports.VideoDecoder. By default
// it splits the file contents into frames of the requested geometry,
// mirroring the default VideoEncoder output.
type VideoDecoder struct {
	FS             ports.FileSystem
	ReadFramesFunc func(ctx context.Context, path string, geometry framecodec.Geometry) ([]framecodec.Frame, error)

	ReadPaths []string
}

func (m *VideoDecoder) ReadFrames(ctx context.Context, path string, geometry framecodec.Geometry) ([]framecodec.Frame, error) {
	m.ReadPaths = append(m.ReadPaths, path)
	if m.ReadFramesFunc != nil {
		return m.ReadFramesFunc(ctx, path, geometry)
	}
	data, err := m.FS.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := geometry.Capacity()
	frames := make([]framecodec.Frame, 0, len(data)/c)
	for off := 0; off+c <= len(data); off += c {
		f := framecodec.NewFrame(geometry)
		copy(f.Pix, data[off:off+c])
		frames = append(frames, f)
	}
	return frames, nil
}

var _ ports.VideoDecoder = (*VideoDecoder)(nil)
