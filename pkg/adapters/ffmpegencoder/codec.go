package ffmpegencoder

import (
	"fmt"
	"strings"
)

// Codec names a lossless video codec the encoder can drive.
type Codec string

const (
	// CodecFFV1 is FFV1 with planar RGB, the default.
	CodecFFV1 Codec = "ffv1"

	// CodecX264RGB is libx264rgb at -qp 0 (High 4:4:4 Predictive, lossless).
	CodecX264RGB Codec = "x264rgb"
)

// ParseCodec accepts only lossless codec names. Everything else, including
// ordinary "h264" or "av1", is ErrLossyCodec.
func ParseCodec(s string) (Codec, error) {
	switch Codec(strings.ToLower(s)) {
	case "", CodecFFV1:
		return CodecFFV1, nil
	case CodecX264RGB:
		return CodecX264RGB, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrLossyCodec, s)
	}
}

// Containers lists the containers the codec can be muxed into; the first
// one is the default.
func (c Codec) Containers() []string {
	switch c {
	case CodecX264RGB:
		return []string{"mp4", "mkv"}
	default:
		return []string{"mkv", "avi"}
	}
}

// CheckContainer reports whether container can carry the codec.
func (c Codec) CheckContainer(container string) error {
	container = strings.ToLower(strings.TrimPrefix(container, "."))
	for _, allowed := range c.Containers() {
		if container == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot be stored in .%s", ErrUnsupportedContainer, c, container)
}

// args returns the ffmpeg output options for the codec.
func (c Codec) args(preset string, threads int) []string {
	var args []string
	switch c {
	case CodecX264RGB:
		if preset == "" {
			preset = "medium"
		}
		args = []string{
			"-c:v", "libx264rgb",
			"-qp", "0",
			"-preset", preset,
			"-pix_fmt", "rgb24",
		}
	default:
		args = []string{
			"-c:v", "ffv1",
			"-level", "3",
			"-g", "1",
			"-pix_fmt", "bgr0",
		}
	}
	if threads > 0 {
		args = append(args, "-threads", fmt.Sprint(threads))
	}
	return args
}
