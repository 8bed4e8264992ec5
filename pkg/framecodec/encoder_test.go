package framecodec

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"
)

func newTestEncoder(t *testing.T, g Geometry, opts EncoderOptions) *Encoder {
	t.Helper()
	enc, err := NewEncoder(g, opts)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	return enc
}

func TestEncoder_ConcreteScenario(t *testing.T) {
	enc := newTestEncoder(t, DefaultGeometry(), EncoderOptions{})

	frames := enc.Encode([]byte("AB"))
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].Width != 192 || frames[0].Height != 108 {
		t.Errorf("expected 192x108 frame, got %dx%d", frames[0].Width, frames[0].Height)
	}

	buf := Flatten(frames)
	if len(buf) != 62208 {
		t.Fatalf("expected 62208 bytes, got %d", len(buf))
	}

	want := []byte{0, 0, 0, 0, 0, 0, 0, 2, 0x41, 0x42}
	if !bytes.Equal(buf[:10], want) {
		t.Errorf("expected prefix %v, got %v", want, buf[:10])
	}
	for i, b := range buf[10:] {
		if b != 0 {
			t.Fatalf("expected zero padding, got %#x at offset %d", b, i+10)
		}
	}
}

func TestEncoder_EmptyPayload(t *testing.T) {
	enc := newTestEncoder(t, DefaultGeometry(), EncoderOptions{})

	frames := enc.Encode(nil)
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if got := binary.BigEndian.Uint64(Flatten(frames)[:8]); got != 0 {
		t.Errorf("expected header length 0, got %d", got)
	}
}

func TestEncoder_FrameCountLaw(t *testing.T) {
	g := DefaultGeometry()
	c := g.Capacity()
	enc := newTestEncoder(t, g, EncoderOptions{Workers: 4})

	lengths := []int{0, 1, c - 9, c - 8, c - 7, c - 1, c, c + 1, 2 * c, 2*c - 8, 3*c + 17}
	for _, n := range lengths {
		want := (n + 8 + c - 1) / c
		frames := enc.Encode(make([]byte, n))
		if len(frames) != want {
			t.Errorf("len %d: expected %d frames, got %d", n, want, len(frames))
		}
		if enc.FrameCount(n) != want {
			t.Errorf("len %d: FrameCount returned %d, want %d", n, enc.FrameCount(n), want)
		}
	}
}

func TestEncoder_HeaderIntegrity(t *testing.T) {
	enc := newTestEncoder(t, Geometry{Width: 4, Height: 3}, EncoderOptions{})

	for _, n := range []int{0, 1, 5, 36, 100, 1000} {
		buf := Flatten(enc.Encode(make([]byte, n)))
		if got := binary.BigEndian.Uint64(buf[:8]); got != uint64(n) {
			t.Errorf("len %d: header says %d", n, got)
		}
	}
}

func TestEncoder_StreamLayout(t *testing.T) {
	// 2x2 frames carry 12 bytes, so the header spans into the second frame.
	g := Geometry{Width: 2, Height: 2}
	enc := newTestEncoder(t, g, EncoderOptions{Workers: 3})

	payload := []byte("hello, frames")
	frames := enc.Encode(payload)

	stream := append(enc.Header(len(payload)).Marshal(), payload...)
	buf := Flatten(frames)
	if len(buf) != len(frames)*g.Capacity() {
		t.Fatalf("expected %d bytes, got %d", len(frames)*g.Capacity(), len(buf))
	}
	if !bytes.Equal(buf[:len(stream)], stream) {
		t.Errorf("flattened buffer does not start with the framed stream")
	}
	for i, b := range buf[len(stream):] {
		if b != 0 {
			t.Errorf("expected zero padding at %d, got %#x", len(stream)+i, b)
		}
	}
}

func TestEncoder_PartialTrailingPixel(t *testing.T) {
	g := Geometry{Width: 3, Height: 1}
	enc := newTestEncoder(t, g, EncoderOptions{})

	// 8-byte header + 2 bytes leaves one byte in the last pixel's group.
	frames := enc.Encode([]byte{0xAA, 0xBB})
	buf := Flatten(frames)
	if buf[8] != 0xAA || buf[9] != 0xBB {
		t.Errorf("trailing payload bytes lost: %v", buf[8:10])
	}
	if buf[10] != 0 || buf[11] != 0 {
		t.Errorf("expected zero fill after payload, got %v", buf[10:])
	}

	px := frames[1].At(0, 0)
	r, g2, b, _ := px.RGBA()
	if r>>8 != 0xBB || g2 != 0 || b != 0 {
		t.Errorf("unexpected pixel %v", px)
	}
}

func TestEncoder_ParallelMatchesSequential(t *testing.T) {
	g := Geometry{Width: 16, Height: 9}
	payload := make([]byte, 20*g.Capacity()+5)
	rand.New(rand.NewSource(1)).Read(payload)

	seq := newTestEncoder(t, g, EncoderOptions{Workers: 1}).Encode(payload)
	par := newTestEncoder(t, g, EncoderOptions{Workers: 8}).Encode(payload)

	if len(seq) != len(par) {
		t.Fatalf("frame count differs: %d vs %d", len(seq), len(par))
	}
	for i := range seq {
		if !bytes.Equal(seq[i].Pix, par[i].Pix) {
			t.Fatalf("frame %d differs between sequential and parallel encoding", i)
		}
	}
}

func TestEncoder_TaggedHeader(t *testing.T) {
	g := Geometry{Width: 8, Height: 8}
	enc := newTestEncoder(t, g, EncoderOptions{Header: HeaderTagged, Flags: FlagZstd})

	buf := Flatten(enc.Encode([]byte("xyz")))
	if !bytes.Equal(buf[:4], Magic[:]) {
		t.Errorf("expected magic, got %q", buf[:4])
	}
	if buf[4] != FormatVersion {
		t.Errorf("expected version %d, got %d", FormatVersion, buf[4])
	}
	if buf[5] != FlagZstd {
		t.Errorf("expected flags %d, got %d", FlagZstd, buf[5])
	}
	if w := binary.BigEndian.Uint16(buf[6:8]); w != 8 {
		t.Errorf("expected width 8, got %d", w)
	}
	if l := binary.BigEndian.Uint64(buf[12:20]); l != 3 {
		t.Errorf("expected length 3, got %d", l)
	}
	if string(buf[20:23]) != "xyz" {
		t.Errorf("expected payload after header, got %q", buf[20:23])
	}
}

func TestNewEncoder_Validation(t *testing.T) {
	tests := []struct {
		name string
		g    Geometry
		opts EncoderOptions
	}{
		{"zero width", Geometry{Width: 0, Height: 10}, EncoderOptions{}},
		{"negative height", Geometry{Width: 10, Height: -1}, EncoderOptions{}},
		{"tagged too wide", Geometry{Width: 70000, Height: 1}, EncoderOptions{Header: HeaderTagged}},
		{"unknown header", Geometry{Width: 1, Height: 1}, EncoderOptions{Header: HeaderFormat(42)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEncoder(tt.g, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func BenchmarkEncoder_Encode(b *testing.B) {
	enc, _ := NewEncoder(DefaultGeometry(), EncoderOptions{})
	payload := make([]byte, 4<<20)
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		enc.Encode(payload)
	}
}
