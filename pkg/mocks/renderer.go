package mocks

import (
	"image"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer. Without overrides
// it "encodes" a frame as its raw pixel bytes prefixed by a 4-byte size,
// so mock-backed stores stay lossless.
type Renderer struct {
	DecodeImageFunc  func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image
	ContactSheetFunc func(images []image.Image, opts ports.ContactSheetOptions) image.Image

	ContactSheetCalls int
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	if len(data) < 4 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0)), nil
	}
	w := int(data[0])<<8 | int(data[1])
	h := int(data[2])<<8 | int(data[3])
	return framecodec.Frame{Width: w, Height: h, Pix: append([]byte(nil), data[4:]...)}, nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format)
	}
	f := framecodec.FrameFromImage(img)
	out := []byte{byte(f.Width >> 8), byte(f.Width), byte(f.Height >> 8), byte(f.Height)}
	return append(out, f.Pix...), nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) ContactSheet(images []image.Image, opts ports.ContactSheetOptions) image.Image {
	m.ContactSheetCalls++
	if m.ContactSheetFunc != nil {
		return m.ContactSheetFunc(images, opts)
	}
	return image.NewRGBA(image.Rect(0, 0, len(images), 1))
}

var _ ports.Renderer = (*Renderer)(nil)
