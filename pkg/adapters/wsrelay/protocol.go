// Package wsrelay carries frame sequences over a websocket. Server stores
// uploaded sequences in a backing ports.FrameTransport; Client implements
// ports.FrameTransport against a remote Server.
//
// Each connection performs one operation. Control messages are JSON text
// messages; frames are binary messages holding a big-endian uint32 index
// followed by the frame's pixel bytes.
//
//	put:  client → {"type":"put"} · frame × N · {"type":"end"}
//	      server → {"type":"stored","handle":...} | {"type":"error"}
//	get:  client → {"type":"get","handle":...}
//	      server → {"type":"frames"} · frame × N · {"type":"end"} | {"type":"error"}
package wsrelay

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
)

// Message types.
const (
	TypePut    = "put"
	TypeGet    = "get"
	TypeFrames = "frames"
	TypeEnd    = "end"
	TypeStored = "stored"
	TypeError  = "error"
)

// indexSize is the size of the frame index prefix of a binary message.
const indexSize = 4

// controlReadLimit bounds control messages.
const controlReadLimit = 64 << 10

// maxFrameCapacity bounds the geometry a peer may announce.
const maxFrameCapacity = 64 << 20

// maxSequenceBytes bounds the pixel bytes of one announced sequence.
const maxSequenceBytes = 64 << 30

// maxFrames is the largest count the uint32 frame index can address.
const maxFrames = 1 << 32

// preallocFrames caps the frame slice reserved before frames arrive.
const preallocFrames = 1024

var (
	// ErrOutOfOrder is returned when a frame index skips ahead.
	ErrOutOfOrder = errors.New("wsrelay: frame out of order")

	// ErrDuplicateFrame is returned when a frame index repeats.
	ErrDuplicateFrame = errors.New("wsrelay: duplicate frame")

	// ErrMissingFrames is returned when fewer frames arrive than announced.
	ErrMissingFrames = errors.New("wsrelay: missing frames")

	// ErrTooManyFrames is returned when more frames arrive than announced.
	ErrTooManyFrames = errors.New("wsrelay: more frames than announced")

	// ErrFrameSize is returned when a frame message has the wrong length.
	ErrFrameSize = errors.New("wsrelay: frame size mismatch")

	// ErrProtocol is returned for unexpected or malformed messages.
	ErrProtocol = errors.New("wsrelay: protocol error")

	// ErrRemote wraps errors reported by the peer.
	ErrRemote = errors.New("wsrelay: remote error")
)

// Control is the JSON control message.
type Control struct {
	Type   string `json:"type"`
	Target string `json:"target,omitempty"`
	Handle string `json:"handle,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Frames int    `json:"frames,omitempty"`
	Error  string `json:"error,omitempty"`
}

// geometry validates the announced frame size.
func (c Control) geometry() (framecodec.Geometry, error) {
	g := framecodec.Geometry{Width: c.Width, Height: c.Height}
	if err := g.Validate(); err != nil {
		return g, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if g.Capacity() > maxFrameCapacity {
		return g, fmt.Errorf("%w: geometry %s too large", ErrProtocol, g)
	}
	if c.Frames < 0 {
		return g, fmt.Errorf("%w: negative frame count", ErrProtocol)
	}
	if c.Frames > maxFrames || c.Frames > maxSequenceBytes/g.Capacity() {
		return g, fmt.Errorf("%w: %d frames of %s too large", ErrProtocol, c.Frames, g)
	}
	return g, nil
}

// encodeFrame builds the binary message for frame index.
func encodeFrame(index int, f framecodec.Frame) []byte {
	msg := make([]byte, indexSize+len(f.Pix))
	binary.BigEndian.PutUint32(msg, uint32(index))
	copy(msg[indexSize:], f.Pix)
	return msg
}

// frameReceiver checks incoming frame messages against the announced
// geometry and count.
type frameReceiver struct {
	geometry framecodec.Geometry
	expected int
	frames   []framecodec.Frame
}

func newFrameReceiver(g framecodec.Geometry, count int) *frameReceiver {
	return &frameReceiver{
		geometry: g,
		expected: count,
		frames:   make([]framecodec.Frame, 0, min(count, preallocFrames)),
	}
}

// add accepts the next frame message. Frames must arrive as 0, 1, 2, ...
func (r *frameReceiver) add(msg []byte) error {
	if len(msg) != indexSize+r.geometry.Capacity() {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(msg), indexSize+r.geometry.Capacity())
	}
	index := int(binary.BigEndian.Uint32(msg))
	next := len(r.frames)
	switch {
	case index < next:
		return fmt.Errorf("%w: %d", ErrDuplicateFrame, index)
	case index > next:
		return fmt.Errorf("%w: got %d, want %d", ErrOutOfOrder, index, next)
	case next >= r.expected:
		return fmt.Errorf("%w: %d announced", ErrTooManyFrames, r.expected)
	}

	f := framecodec.NewFrame(r.geometry)
	copy(f.Pix, msg[indexSize:])
	r.frames = append(r.frames, f)
	return nil
}

// finish checks that every announced frame arrived.
func (r *frameReceiver) finish() ([]framecodec.Frame, error) {
	if len(r.frames) != r.expected {
		return nil, fmt.Errorf("%w: got %d of %d", ErrMissingFrames, len(r.frames), r.expected)
	}
	return r.frames, nil
}
