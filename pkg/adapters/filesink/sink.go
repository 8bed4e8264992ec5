// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// Sink saves debug output under a base directory:
//
//	frames/frame-0000.png
//	contact-sheet.png
//	manifest.cbor
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveFrame saves one encoded frame as PNG.
func (s *Sink) SaveFrame(index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", index))
	return s.fs.WriteFile(path, data)
}

// SaveContactSheet saves the frame overview as PNG.
func (s *Sink) SaveContactSheet(img image.Image) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG)
	if err != nil {
		return fmt.Errorf("encode contact sheet: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "contact-sheet.png"), data)
}

// SaveManifest saves a copy of the run manifest.
func (s *Sink) SaveManifest(data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "manifest.cbor"), data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
