package ports

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Renderer abstracts image encoding and the debug visualizations.
type Renderer interface {
	// DecodeImage decodes image data into an image.Image.
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// EncodeImage encodes an image losslessly in the specified format.
	EncodeImage(img image.Image, format ImageFormat) ([]byte, error)

	// ResizeImage scales an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image

	// ContactSheet lays out images as labelled thumbnails on one canvas.
	ContactSheet(images []image.Image, opts ContactSheetOptions) image.Image
}

// ContactSheetOptions controls the contact sheet layout.
type ContactSheetOptions struct {
	Columns    int // thumbnails per row
	ThumbWidth int // thumbnail width; height keeps the aspect ratio
	Gap        int // spacing between thumbnails and around the edge
	Label      bool
	Background color.Color
	LabelColor color.Color
}

// DefaultContactSheetOptions returns a 6-column sheet of 192px thumbnails.
func DefaultContactSheetOptions() ContactSheetOptions {
	return ContactSheetOptions{
		Columns:    6,
		ThumbWidth: 192,
		Gap:        8,
		Label:      true,
		Background: color.RGBA{R: 30, G: 30, B: 30, A: 255},
		LabelColor: color.White,
	}
}

// ImageFormat specifies a lossless image encoding.
type ImageFormat int

const (
	FormatPNG ImageFormat = iota
	FormatBMP
	FormatTIFF
)

// Extension returns the file extension without the dot.
func (f ImageFormat) Extension() string {
	switch f {
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return "png"
	}
}

// String implements fmt.Stringer.
func (f ImageFormat) String() string {
	return f.Extension()
}

// ParseImageFormat parses png, bmp, tif or tiff.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return FormatPNG, fmt.Errorf("unsupported image format: %q", s)
	}
}
