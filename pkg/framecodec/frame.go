package framecodec

import (
	"image"
	"image/color"
)

// Frame is one W×H grid of RGB pixels. Pix holds Width*Height*3 bytes in
// row-major order with channels R, G, B.
//
// Frame implements image.Image so it can be passed to encoders and
// renderers directly; every pixel is opaque.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// NewFrame returns an all-black frame of the given geometry.
func NewFrame(g Geometry) Frame {
	return Frame{
		Width:  g.Width,
		Height: g.Height,
		Pix:    make([]byte, g.Capacity()),
	}
}

// Geometry returns the frame dimensions.
func (f Frame) Geometry() Geometry {
	return Geometry{Width: f.Width, Height: f.Height}
}

// ColorModel implements image.Image.
func (f Frame) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At implements image.Image.
func (f Frame) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.RGBA{}
	}
	i := (y*f.Width + x) * BytesPerPixel
	if i+2 >= len(f.Pix) {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: 255}
}

// ToRGBA returns the frame as an opaque *image.RGBA.
func (f Frame) ToRGBA() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	n := f.Width * f.Height
	for p := 0; p < n && p*BytesPerPixel+2 < len(f.Pix); p++ {
		src := f.Pix[p*BytesPerPixel:]
		dst := img.Pix[p*4:]
		dst[0] = src[0]
		dst[1] = src[1]
		dst[2] = src[2]
		dst[3] = 255
	}
	return img
}

// FrameFromImage extracts the RGB channels of img. Alpha is discarded.
func FrameFromImage(img image.Image) Frame {
	switch src := img.(type) {
	case Frame:
		return src
	case *Frame:
		return *src
	case *image.RGBA:
		return fromPix(src.Bounds(), src.Pix, src.Stride)
	case *image.NRGBA:
		return fromPix(src.Bounds(), src.Pix, src.Stride)
	}

	b := img.Bounds()
	f := NewFrame(Geometry{Width: b.Dx(), Height: b.Dy()})
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			f.Pix[i] = c.R
			f.Pix[i+1] = c.G
			f.Pix[i+2] = c.B
			i += BytesPerPixel
		}
	}
	return f
}

// fromPix copies the RGB channels out of a 4-byte-per-pixel buffer whose
// origin is at bounds.Min.
func fromPix(bounds image.Rectangle, pix []byte, stride int) Frame {
	w, h := bounds.Dx(), bounds.Dy()
	f := NewFrame(Geometry{Width: w, Height: h})
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+w*4]
		out := f.Pix[y*w*BytesPerPixel:]
		for x := 0; x < w; x++ {
			out[x*3] = row[x*4]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}
	return f
}
