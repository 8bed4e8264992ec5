package orchestrator

import (
	"time"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/manifest"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// EncodeResult contains the results of an Encode run for summary generation.
type EncodeResult struct {
	RunID  string
	Handle ports.Handle

	Geometry      framecodec.Geometry
	Header        framecodec.Header
	PayloadLength int
	StoredLength  int
	Compressed    bool
	FrameCount    int
	SHA256        []byte

	ManifestPath string
	Verified     bool
	DebugFrames  int

	Duration time.Duration
}

// DecodeResult contains the results of a Decode run.
type DecodeResult struct {
	RunID      string
	Handle     ports.Handle
	OutputPath string

	Header        framecodec.Header
	PayloadLength int
	Compressed    bool
	FrameCount    int

	// ManifestFound is set when a sidecar manifest was used.
	ManifestFound bool
	// DigestChecked is set when the payload matched the manifest digest.
	DigestChecked bool

	Duration time.Duration
}

// VerifyReport is the outcome of comparing a stored payload with a file.
type VerifyReport struct {
	Handle        ports.Handle
	InputLength   int
	PayloadLength int
	FrameCount    int

	Match bool
	// FirstDifference is the first differing offset, or -1.
	FirstDifference int

	Duration time.Duration
}

// InspectReport describes a stored frame sequence.
type InspectReport struct {
	Handle   ports.Handle
	Geometry framecodec.Geometry
	Header   framecodec.Header
	Manifest *manifest.Manifest

	FrameCount    int
	PayloadLength int
	StoredLength  int
	Compressed    bool

	// Capacity is FrameCount times the per-frame capacity.
	Capacity     int
	PaddingBytes int
	SHA256       []byte

	ContactSheetFrames int
}

// Utilization returns the share of frame capacity holding header and data.
func (r InspectReport) Utilization() float64 {
	if r.Capacity == 0 {
		return 0
	}
	return float64(r.Capacity-r.PaddingBytes) / float64(r.Capacity)
}
