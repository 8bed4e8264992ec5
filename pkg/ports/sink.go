package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveFrame saves one encoded frame as an image.
	SaveFrame(index int, img image.Image) error

	// SaveContactSheet saves the overview of all frames.
	SaveContactSheet(img image.Image) error

	// SaveManifest saves a copy of the run manifest.
	SaveManifest(data []byte) error
}
