// Package summarizer provides summary generation for encode and decode runs.
package summarizer

import "time"

// Summary contains all data collected during one run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	Operation   string // "encode" or "decode"

	Run       RunInfo
	Payload   PayloadInfo
	Frames    FrameInfo
	Transport TransportInfo
	Checks    CheckInfo
}

// RunInfo identifies the run and its files.
type RunInfo struct {
	ID       string
	Input    string
	Output   string
	Handle   string
	Duration time.Duration
}

// PayloadInfo describes the payload bytes.
type PayloadInfo struct {
	Length       int64
	StoredLength int64 // framed bytes after compression
	Compressed   bool
	SHA256       string
}

// FrameInfo describes the frame sequence.
type FrameInfo struct {
	Width  int
	Height int
	Count  int
	Header string
}

// Capacity returns the bytes carried per frame.
func (f FrameInfo) Capacity() int {
	return f.Width * f.Height * 3
}

// TransportInfo describes where the frames went.
type TransportInfo struct {
	Kind  string
	Codec string
	FPS   float64
}

// CheckInfo lists the integrity checks that passed.
type CheckInfo struct {
	Verified      bool
	ManifestPath  string
	DigestChecked bool
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary(operation string) *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
		Operation:   operation,
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder for the given operation.
func NewBuilder(operation string) *Builder {
	return &Builder{
		summary: NewSummary(operation),
	}
}

// WithRun sets run information.
func (b *Builder) WithRun(run RunInfo) *Builder {
	b.summary.Run = run
	return b
}

// WithPayload sets payload information.
func (b *Builder) WithPayload(payload PayloadInfo) *Builder {
	b.summary.Payload = payload
	return b
}

// WithFrames sets frame sequence information.
func (b *Builder) WithFrames(frames FrameInfo) *Builder {
	b.summary.Frames = frames
	return b
}

// WithTransport sets transport information.
func (b *Builder) WithTransport(transport TransportInfo) *Builder {
	b.summary.Transport = transport
	return b
}

// WithChecks sets the integrity check results.
func (b *Builder) WithChecks(checks CheckInfo) *Builder {
	b.summary.Checks = checks
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
