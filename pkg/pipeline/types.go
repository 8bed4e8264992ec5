package pipeline

import (
	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// =============================================================================
// Pack Stage Types
// =============================================================================

// PackInput is the payload to turn into frames.
type PackInput struct {
	Payload []byte

	// Compress runs the payload through zstd before framing.
	Compress bool
}

// PackResult holds the frames built from a payload.
type PackResult struct {
	Frames []framecodec.Frame

	// Header is the stream header written into the first frame.
	Header framecodec.Header

	// Stored is the byte string the frames carry: the payload itself, or
	// its compressed form.
	Stored []byte

	Compressed bool
}

// =============================================================================
// Persist Stage Types
// =============================================================================

// PersistInput names where to store a frame sequence.
type PersistInput struct {
	Target string
	Frames []framecodec.Frame
}

// PersistResult identifies the stored sequence.
type PersistResult struct {
	Handle     ports.Handle
	FrameCount int

	// DebugFrames is the number of frames written to the debug sink.
	DebugFrames int
}

// =============================================================================
// Unpack Stage Types
// =============================================================================

// UnpackInput identifies a stored sequence to decode.
type UnpackInput struct {
	Handle ports.Handle

	// Compressed selects zstd decompression for length headers, which
	// cannot carry the flag. Tagged headers decide on their own.
	Compressed bool
}

// UnpackResult holds the recovered payload.
type UnpackResult struct {
	Payload []byte
	Header  framecodec.Header
	Frames  []framecodec.Frame

	// StoredLength is the length of the framed byte string before
	// decompression.
	StoredLength int
	Compressed   bool
}

// =============================================================================
// Verify Stage Types
// =============================================================================

// VerifyInput is a stored sequence and the bytes it must carry.
type VerifyInput struct {
	Handle ports.Handle

	// Stored is the framed byte string (PackResult.Stored).
	Stored []byte
}

// VerifyResult reports a successful round trip.
type VerifyResult struct {
	FrameCount int
	Bytes      int
}
