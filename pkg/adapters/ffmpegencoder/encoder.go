// Package ffmpegencoder implements ports.VideoEncoder by piping raw RGB
// frames into an ffmpeg process that writes a lossless container.
package ffmpegencoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// Encoder drives one ffmpeg process per video.
type Encoder struct {
	// Preset is passed to libx264rgb; it does not affect losslessness.
	Preset string

	mu         sync.Mutex
	geometry   framecodec.Geometry
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
	tempPath   string
	frameCount int
}

// New creates an encoder.
func New() *Encoder {
	return &Encoder{}
}

// Begin starts ffmpeg reading rgb24 frames of the given geometry from stdin.
func (e *Encoder) Begin(ctx context.Context, geometry framecodec.Geometry, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := geometry.Validate(); err != nil {
		return err
	}
	codec, err := ParseCodec(opts.Codec)
	if err != nil {
		return err
	}
	container := opts.Container
	if container == "" {
		container = codec.Containers()[0]
	}
	if err := codec.CheckContainer(container); err != nil {
		return err
	}
	if fps <= 0 {
		fps = 1
	}

	ffmpegPath, err := FindFFmpeg()
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp("", "ffmpegencode_*."+container)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	e.tempPath = tmpFile.Name()
	tmpFile.Close()

	args := []string{
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", geometry.String(),
		"-r", fmt.Sprintf("%g", fps),
		"-i", "pipe:0",
	}
	args = append(args, codec.args(e.Preset, opts.Threads)...)
	args = append(args, e.tempPath)

	e.stderr.Reset()
	e.cmd = exec.CommandContext(ctx, ffmpegPath, args...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		e.cleanup()
		return fmt.Errorf("stdin pipe: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		e.cleanup()
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	e.geometry = geometry
	e.frameCount = 0
	return nil
}

// EncodeFrame writes the frame's pixel bytes to ffmpeg.
func (e *Encoder) EncodeFrame(frame framecodec.Frame) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return ErrNotInitialized
	}
	if frame.Geometry() != e.geometry || len(frame.Pix) != e.geometry.Capacity() {
		return fmt.Errorf("%w: frame %d is %dx%d", ErrFrameGeometry, e.frameCount, frame.Width, frame.Height)
	}

	if _, err := e.stdin.Write(frame.Pix); err != nil {
		return fmt.Errorf("write frame %d: %w\nstderr: %s", e.frameCount, err, e.stderr.String())
	}
	e.frameCount++
	return nil
}

// End closes ffmpeg's input, waits for it and returns the container bytes.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return nil, ErrNotInitialized
	}
	defer e.cleanup()

	e.stdin.Close()
	e.stdin = nil

	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, e.stderr.String())
	}

	data, err := os.ReadFile(e.tempPath)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return data, nil
}

// FrameCount returns the number of frames written since Begin.
func (e *Encoder) FrameCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameCount
}

func (e *Encoder) cleanup() {
	if e.stdin != nil {
		e.stdin.Close()
		e.stdin = nil
	}
	if e.tempPath != "" {
		os.Remove(e.tempPath)
		e.tempPath = ""
	}
}

var _ ports.VideoEncoder = (*Encoder)(nil)
