package framecodec

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestFrame_ImageConversion(t *testing.T) {
	f := NewFrame(Geometry{Width: 3, Height: 2})
	for i := range f.Pix {
		f.Pix[i] = byte(i * 11)
	}

	rgba := f.ToRGBA()
	if rgba.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("unexpected bounds %v", rgba.Bounds())
	}
	if got := rgba.RGBAAt(1, 1); got != (color.RGBA{R: 132, G: 143, B: 154, A: 255}) {
		t.Errorf("unexpected pixel %v", got)
	}

	back := FrameFromImage(rgba)
	if !bytes.Equal(back.Pix, f.Pix) {
		t.Errorf("RGBA round trip mismatch")
	}

	// Generic path through image.Image.
	nrgba := image.NewNRGBA(f.Bounds())
	draw.Draw(nrgba, nrgba.Bounds(), f, image.Point{}, draw.Src)
	if got := FrameFromImage(nrgba); !bytes.Equal(got.Pix, f.Pix) {
		t.Errorf("NRGBA round trip mismatch")
	}

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{Y: 77})
	if got := FrameFromImage(gray); !bytes.Equal(got.Pix, []byte{77, 77, 77}) {
		t.Errorf("expected gray pixel, got %v", got.Pix)
	}
}

func TestFrame_SubImageOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(2, 2, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	sub := img.SubImage(image.Rect(2, 2, 4, 4)).(*image.RGBA)
	f := FrameFromImage(sub)
	if f.Width != 2 || f.Height != 2 {
		t.Fatalf("expected 2x2, got %dx%d", f.Width, f.Height)
	}
	if !bytes.Equal(f.Pix[:3], []byte{1, 2, 3}) {
		t.Errorf("expected first pixel 1,2,3, got %v", f.Pix[:3])
	}
}
