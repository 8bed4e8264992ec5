package ports

import (
	"context"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
)

// Handle identifies a persisted frame sequence. Its meaning depends on the
// transport: a container path, a frame directory, or a relay session ID.
type Handle string

// FrameTransport persists frame sequences and retrieves them later.
//
// Implementations must be lossless and must preserve frame order and frame
// count. A transport that cannot guarantee this has to refuse the
// configuration rather than return altered frames.
type FrameTransport interface {
	// Persist stores frames under target and returns the handle to retrieve them.
	Persist(ctx context.Context, target string, frames []framecodec.Frame) (Handle, error)

	// Retrieve returns the frames stored under handle, in order.
	Retrieve(ctx context.Context, handle Handle) ([]framecodec.Frame, error)
}
