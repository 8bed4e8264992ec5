// Package ggrenderer implements ports.Renderer with gg and golang.org/x/image.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

const labelHeight = 16

// Renderer implements ports.Renderer.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// DecodeImage decodes PNG, BMP or TIFF data.
func (r *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	reader := bytes.NewReader(data)

	switch format {
	case ports.FormatPNG:
		return png.Decode(reader)
	case ports.FormatBMP:
		return bmp.Decode(reader)
	case ports.FormatTIFF:
		return tiff.Decode(reader)
	default:
		img, _, err := image.Decode(reader)
		return img, err
	}
}

// EncodeImage encodes img without loss. Frames are converted to RGBA
// first so the encoders take their fast paths.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat) ([]byte, error) {
	switch src := img.(type) {
	case framecodec.Frame:
		img = src.ToRGBA()
	case *framecodec.Frame:
		img = src.ToRGBA()
	}

	var buf bytes.Buffer
	switch format {
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	case ports.FormatBMP:
		if err := bmp.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode BMP: %w", err)
		}
	case ports.FormatTIFF:
		if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, fmt.Errorf("encode TIFF: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// ResizeImage scales img with nearest-neighbour sampling so individual data
// pixels stay visible in thumbnails.
func (r *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ContactSheet draws images as a grid of thumbnails, each labelled with its
// index.
func (r *Renderer) ContactSheet(images []image.Image, opts ports.ContactSheetOptions) image.Image {
	def := ports.DefaultContactSheetOptions()
	if opts.Columns <= 0 {
		opts.Columns = def.Columns
	}
	if opts.ThumbWidth <= 0 {
		opts.ThumbWidth = def.ThumbWidth
	}
	if opts.Gap < 0 {
		opts.Gap = 0
	}
	if opts.Background == nil {
		opts.Background = def.Background
	}
	if opts.LabelColor == nil {
		opts.LabelColor = def.LabelColor
	}

	tw, th := opts.ThumbWidth, opts.ThumbWidth
	if len(images) > 0 {
		b := images[0].Bounds()
		if b.Dx() > 0 {
			th = max(1, tw*b.Dy()/b.Dx())
		}
	}
	lh := 0
	if opts.Label {
		lh = labelHeight
	}

	cols := min(opts.Columns, max(1, len(images)))
	rows := (len(images) + cols - 1) / cols
	width := opts.Gap + cols*(tw+opts.Gap)
	height := opts.Gap + rows*(th+lh+opts.Gap)
	if rows == 0 {
		height = 2 * opts.Gap
	}

	dc := gg.NewContext(max(1, width), max(1, height))
	dc.SetColor(opts.Background)
	dc.Clear()

	for i, img := range images {
		x := opts.Gap + (i%cols)*(tw+opts.Gap)
		y := opts.Gap + (i/cols)*(th+lh+opts.Gap)
		dc.DrawImage(r.ResizeImage(img, tw, th), x, y)

		if opts.Label {
			dc.SetColor(opts.LabelColor)
			dc.DrawStringAnchored(fmt.Sprintf("#%d", i), float64(x+tw/2), float64(y+th+lh/2), 0.5, 0.5)
		}
	}

	return dc.Image()
}

var _ ports.Renderer = (*Renderer)(nil)
