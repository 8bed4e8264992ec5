// Package videotransport implements ports.FrameTransport as a lossless
// video file: frames are encoded with a ports.VideoEncoder, written to
// disk, and read back with a ports.VideoDecoder.
package videotransport

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/One-eyed-warrior/data2video/pkg/adapters/codecdetect"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/ffmpegencoder"
	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

var (
	// ErrLossyTransport is returned when a container could alter frames.
	ErrLossyTransport = errors.New("videotransport: container is not lossless")

	// ErrFrameCount is returned when the container does not hold the number
	// of frames that was written.
	ErrFrameCount = errors.New("videotransport: frame count mismatch")

	// ErrNotFound is returned when the handle names no file.
	ErrNotFound = errors.New("videotransport: video not found")
)

// Options configures a Transport.
type Options struct {
	Geometry framecodec.Geometry
	Codec    string  // ffv1 (default) or x264rgb
	FPS      float64 // default 1
	Threads  int
}

// Transport stores frame sequences as video files. The handle is the
// file path; its extension selects the container.
type Transport struct {
	encoder ports.VideoEncoder
	decoder ports.VideoDecoder
	fs      ports.FileSystem
	logger  ports.Logger
	codec   ffmpegencoder.Codec
	opts    Options
}

// New validates the configuration and creates a Transport. Codecs that
// are not lossless are refused here, before any frame is written.
func New(encoder ports.VideoEncoder, decoder ports.VideoDecoder, fs ports.FileSystem, logger ports.Logger, opts Options) (*Transport, error) {
	if err := opts.Geometry.Validate(); err != nil {
		return nil, err
	}
	codec, err := ffmpegencoder.ParseCodec(opts.Codec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLossyTransport, err)
	}
	if opts.FPS <= 0 {
		opts.FPS = 1
	}
	return &Transport{
		encoder: encoder,
		decoder: decoder,
		fs:      fs,
		logger:  logger.WithComponent("videotransport"),
		codec:   codec,
		opts:    opts,
	}, nil
}

// Codec returns the configured codec.
func (t *Transport) Codec() ffmpegencoder.Codec {
	return t.codec
}

// Persist encodes frames into the video file at target.
func (t *Transport) Persist(ctx context.Context, target string, frames []framecodec.Frame) (ports.Handle, error) {
	container := containerOf(target)
	if container == "" {
		container = t.codec.Containers()[0]
		target += "." + container
	}
	if err := t.codec.CheckContainer(container); err != nil {
		return "", err
	}

	t.logger.Debug("Encoding %d frames as %s/%s at %g fps", len(frames), t.codec, container, t.opts.FPS)
	encOpts := ports.EncoderOptions{
		Codec:     string(t.codec),
		Container: container,
		Threads:   t.opts.Threads,
	}
	if err := t.encoder.Begin(ctx, t.opts.Geometry, t.opts.FPS, encOpts); err != nil {
		return "", fmt.Errorf("begin encoding: %w", err)
	}

	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			t.encoder.End()
			return "", err
		}
		if err := t.encoder.EncodeFrame(frame); err != nil {
			t.encoder.End()
			return "", fmt.Errorf("encode frame %d: %w", i, err)
		}
	}

	data, err := t.encoder.End()
	if err != nil {
		return "", fmt.Errorf("end encoding: %w", err)
	}

	if container == "mp4" {
		if err := t.checkMP4(data, len(frames)); err != nil {
			return "", err
		}
	}

	if err := t.fs.WriteFile(target, data); err != nil {
		return "", fmt.Errorf("write video: %w", err)
	}
	t.logger.Debug("Video written: %s (%d bytes)", target, len(data))

	return ports.Handle(target), nil
}

// Retrieve decodes every frame of the video named by handle.
func (t *Transport) Retrieve(ctx context.Context, handle ports.Handle) ([]framecodec.Frame, error) {
	path := string(handle)
	exists, err := t.fs.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("stat video: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	expected := -1
	if containerOf(path) == "mp4" {
		data, err := t.fs.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read video: %w", err)
		}
		info, err := t.inspectMP4(data)
		if err != nil {
			return nil, err
		}
		expected = info.SampleCount
	}

	t.logger.Debug("Decoding frames from %s", path)
	frames, err := t.decoder.ReadFrames(ctx, path, t.opts.Geometry)
	if err != nil {
		return nil, fmt.Errorf("decode video: %w", err)
	}
	if expected >= 0 && len(frames) != expected {
		return nil, fmt.Errorf("%w: container holds %d samples, decoded %d frames", ErrFrameCount, expected, len(frames))
	}

	return frames, nil
}

// checkMP4 rejects MP4 output that is not lossless H.264 or lost frames.
func (t *Transport) checkMP4(data []byte, written int) error {
	info, err := t.inspectMP4(data)
	if err != nil {
		return err
	}
	if info.SampleCount >= 0 && info.SampleCount != written {
		return fmt.Errorf("%w: wrote %d frames, container holds %d", ErrFrameCount, written, info.SampleCount)
	}
	return nil
}

func (t *Transport) inspectMP4(data []byte) (codecdetect.Info, error) {
	info, err := codecdetect.InspectBytes(data)
	if err != nil {
		return info, fmt.Errorf("inspect mp4: %w", err)
	}
	if !info.Lossless() {
		return info, fmt.Errorf("%w: %s profile %d", ErrLossyTransport, info.Codec, info.Profile)
	}
	if info.Width != t.opts.Geometry.Width || info.Height != t.opts.Geometry.Height {
		return info, fmt.Errorf("%w: video is %dx%d, expected %s",
			framecodec.ErrGeometryMismatch, info.Width, info.Height, t.opts.Geometry)
	}
	return info, nil
}

func containerOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

var _ ports.FrameTransport = (*Transport)(nil)
