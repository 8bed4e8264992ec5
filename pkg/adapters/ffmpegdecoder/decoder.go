// Package ffmpegdecoder implements ports.VideoDecoder by reading rgb24
// frames from an ffmpeg process.
package ffmpegdecoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/One-eyed-warrior/data2video/pkg/adapters/ffmpegencoder"
	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

var (
	// ErrPartialFrame is returned when ffmpeg's output ends inside a frame.
	ErrPartialFrame = errors.New("ffmpegdecoder: partial trailing frame")

	// ErrUnknownGeometry is returned when ffmpeg does not report the size
	// of the input video stream.
	ErrUnknownGeometry = errors.New("ffmpegdecoder: video size not reported")
)

// streamPattern matches the first video stream line ffmpeg logs for an
// input, e.g. "Stream #0:0: Video: ffv1 (FFV1 / 0x31564646), bgr0, 24x10, ...".
var streamPattern = regexp.MustCompile(`Stream #0:\d+.*?: Video: .*?[ ,](\d+)x(\d+)[ ,\[]`)

// Decoder runs ffmpeg once per video. It is stateless.
type Decoder struct{}

// New creates a decoder. ffmpeg is located with ffmpegencoder.FindFFmpeg so
// both directions honour the same --ffmpeg setting.
func New() *Decoder {
	return &Decoder{}
}

// ReadFrames decodes every frame of the video at path. Frame timing is
// passed through so ffmpeg neither drops nor duplicates frames.
func (d *Decoder) ReadFrames(ctx context.Context, path string, geometry framecodec.Geometry) ([]framecodec.Frame, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}

	ffmpegPath, err := ffmpegencoder.FindFFmpeg()
	if err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-hide_banner",
		"-nostats",
		"-v", "info",
		"-i", path,
		"-map", "0:v:0",
		"-vsync", "passthrough",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	frames, readErr := readFrames(stdout, geometry)
	if readErr != nil {
		// Drain so ffmpeg is not blocked on a full pipe.
		io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()

	if waitErr != nil {
		return nil, fmt.Errorf("ffmpeg decoding failed: %w\nstderr: %s", waitErr, stderr.String())
	}
	if err := checkGeometry(stderr.String(), geometry); err != nil {
		return nil, err
	}
	if readErr != nil {
		return nil, readErr
	}
	return frames, nil
}

// checkGeometry compares the input stream size ffmpeg logged with the
// expected geometry. rawvideo output would otherwise slice a differently
// sized video into wrong frames without any error.
func checkGeometry(log string, geometry framecodec.Geometry) error {
	m := streamPattern.FindStringSubmatch(log)
	if m == nil {
		return ErrUnknownGeometry
	}
	width, _ := strconv.Atoi(m[1])
	height, _ := strconv.Atoi(m[2])
	if width != geometry.Width || height != geometry.Height {
		return fmt.Errorf("%w: video is %dx%d, expected %s", framecodec.ErrGeometryMismatch, width, height, geometry)
	}
	return nil
}

// readFrames splits a raw rgb24 stream into frames of the given geometry.
func readFrames(r io.Reader, geometry framecodec.Geometry) ([]framecodec.Frame, error) {
	var frames []framecodec.Frame
	for {
		f := framecodec.NewFrame(geometry)
		n, err := io.ReadFull(r, f.Pix)
		switch {
		case err == io.EOF:
			return frames, nil
		case err == io.ErrUnexpectedEOF:
			return nil, fmt.Errorf("%w: frame %d has %d of %d bytes", ErrPartialFrame, len(frames), n, len(f.Pix))
		case err != nil:
			return nil, fmt.Errorf("read frame %d: %w", len(frames), err)
		}
		frames = append(frames, f)
	}
}

var _ ports.VideoDecoder = (*Decoder)(nil)
