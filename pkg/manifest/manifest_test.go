package manifest

import (
	"errors"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/mocks"
)

func sample() Manifest {
	payload := []byte("hello, frames")
	return Manifest{
		Geometry:      framecodec.DefaultGeometry(),
		HeaderFormat:  framecodec.HeaderTagged,
		Compressed:    true,
		FrameCount:    1,
		PayloadLength: int64(len(payload)),
		SHA256:        Digest(payload),
		StoredLength:  9,
		Transport:     "video",
		Codec:         "ffv1",
		RunID:         "run-1",
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	m := sample()
	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Version != Version {
		t.Errorf("expected version %d, got %d", Version, got.Version)
	}
	if got.Geometry != m.Geometry || got.HeaderFormat != m.HeaderFormat || !got.Compressed {
		t.Errorf("layout fields differ: %+v", got)
	}
	if got.DigestHex() != m.DigestHex() {
		t.Errorf("digest differs")
	}
	if !got.CreatedAt.Equal(m.CreatedAt) {
		t.Errorf("expected %v, got %v", m.CreatedAt, got.CreatedAt)
	}
	if got.Codec != "ffv1" || got.RunID != "run-1" {
		t.Errorf("unexpected metadata %+v", got)
	}
}

func TestUnmarshal_UnsupportedVersion(t *testing.T) {
	data, err := cbor.Marshal(map[int]int{1: Version + 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestUnmarshal_Garbage(t *testing.T) {
	if _, err := Unmarshal([]byte{0xff, 0x00}); err == nil {
		t.Error("expected decode error")
	}
}

func TestCheckPayload(t *testing.T) {
	m := sample()
	if err := m.CheckPayload([]byte("hello, frames")); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := m.CheckPayload([]byte("hello, framez")); !errors.Is(err, ErrDigestMismatch) {
		t.Errorf("expected ErrDigestMismatch, got %v", err)
	}
	if err := m.CheckPayload([]byte("short")); !errors.Is(err, ErrDigestMismatch) {
		t.Errorf("expected length mismatch, got %v", err)
	}
}

func TestCheckFrames(t *testing.T) {
	m := sample()
	if err := m.CheckFrames(1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := m.CheckFrames(2); !errors.Is(err, ErrFrameCountMismatch) {
		t.Errorf("expected ErrFrameCountMismatch, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	fs := mocks.NewFileSystem()

	if _, ok, err := Load(fs, "out.mkv"); ok || err != nil {
		t.Fatalf("expected no manifest, got ok=%v err=%v", ok, err)
	}

	if err := Save(fs, "out.mkv", sample()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, ok := fs.GetFile("out.mkv.manifest.cbor"); !ok {
		t.Fatal("manifest not written next to handle")
	}

	m, ok, err := Load(fs, "out.mkv")
	if err != nil || !ok {
		t.Fatalf("Load failed: ok=%v err=%v", ok, err)
	}
	if m.FrameCount != 1 {
		t.Errorf("expected 1 frame, got %d", m.FrameCount)
	}
}
