// Package framecodec converts arbitrary byte payloads into fixed-size RGB
// frames and back.
//
// The payload is prefixed with a header carrying its length, the resulting
// stream is cut into chunks of Width*Height*3 bytes, and each chunk fills one
// frame in row-major order with channels R, G, B. Bytes past the end of the
// stream are zero. Decoding concatenates the frames in order, reads the
// header and returns exactly the declared number of bytes.
package framecodec

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultWidth and DefaultHeight give the "original" preset,
	// 62208 bytes per frame.
	DefaultWidth  = 192
	DefaultHeight = 108

	// BytesPerPixel is the number of 8-bit channels stored per pixel.
	BytesPerPixel = 3
)

// Geometry is the fixed frame size shared by encoder and decoder.
type Geometry struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// DefaultGeometry returns the 192x108 geometry.
func DefaultGeometry() Geometry {
	return Geometry{Width: DefaultWidth, Height: DefaultHeight}
}

// PixelCount returns Width*Height.
func (g Geometry) PixelCount() int {
	return g.Width * g.Height
}

// Capacity returns the number of stream bytes one frame carries.
func (g Geometry) Capacity() int {
	return g.PixelCount() * BytesPerPixel
}

// FrameCount returns ceil(streamLen / Capacity()).
func (g Geometry) FrameCount(streamLen int) int {
	c := g.Capacity()
	if c <= 0 {
		return 0
	}
	return (streamLen + c - 1) / c
}

// Validate reports whether the geometry can carry data.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, g.Width, g.Height)
	}
	return nil
}

// String formats the geometry as WxH.
func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// ParseGeometry parses a WxH string such as "192x108".
func ParseGeometry(s string) (Geometry, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Geometry{}, fmt.Errorf("%w: %q", ErrInvalidGeometry, s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: %q", ErrInvalidGeometry, s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return Geometry{}, fmt.Errorf("%w: %q", ErrInvalidGeometry, s)
	}
	g := Geometry{Width: width, Height: height}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}
