package ffmpegencoder

import "errors"

var (
	// ErrNotInitialized is returned when encoder methods are called before Begin.
	ErrNotInitialized = errors.New("ffmpegencoder: encoder not initialized")

	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpegencoder: ffmpeg not found")

	// ErrLossyCodec is returned for codecs that cannot store RGB frames bit-exactly.
	ErrLossyCodec = errors.New("ffmpegencoder: codec is not lossless")

	// ErrUnsupportedContainer is returned when the container cannot carry the codec.
	ErrUnsupportedContainer = errors.New("ffmpegencoder: unsupported container")

	// ErrFrameGeometry is returned when a frame does not match the size given to Begin.
	ErrFrameGeometry = errors.New("ffmpegencoder: frame geometry differs from stream")
)
