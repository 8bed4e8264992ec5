package videotransport

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/One-eyed-warrior/data2video/pkg/adapters/ffmpegdecoder"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/ffmpegencoder"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/logger"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/osfilesystem"
	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/mocks"
)

func encodePayload(t *testing.T, g framecodec.Geometry, payload []byte) []framecodec.Frame {
	t.Helper()
	enc, err := framecodec.NewEncoder(g, framecodec.EncoderOptions{})
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	return enc.Encode(payload)
}

func TestNew_RejectsLossyCodec(t *testing.T) {
	fs := mocks.NewFileSystem()
	_, err := New(&mocks.VideoEncoder{}, &mocks.VideoDecoder{FS: fs}, fs, logger.NewNoop(), Options{
		Geometry: framecodec.DefaultGeometry(),
		Codec:    "h264",
	})
	if !errors.Is(err, ErrLossyTransport) {
		t.Errorf("expected ErrLossyTransport, got %v", err)
	}
}

func TestTransport_PersistRetrieve(t *testing.T) {
	fs := mocks.NewFileSystem()
	enc := &mocks.VideoEncoder{}
	dec := &mocks.VideoDecoder{FS: fs}
	g := framecodec.Geometry{Width: 8, Height: 4}

	tr, err := New(enc, dec, fs, logger.NewNoop(), Options{Geometry: g})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	frames := encodePayload(t, g, bytes.Repeat([]byte("video"), 40))
	handle, err := tr.Persist(context.Background(), "out/payload.mkv", frames)
	if err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	if handle != "out/payload.mkv" {
		t.Errorf("unexpected handle %s", handle)
	}

	if enc.FPS != 1 {
		t.Errorf("expected default 1 fps, got %g", enc.FPS)
	}
	if enc.Options.Codec != "ffv1" || enc.Options.Container != "mkv" {
		t.Errorf("unexpected encoder options %+v", enc.Options)
	}
	if len(enc.Frames) != len(frames) {
		t.Errorf("expected %d frames encoded, got %d", len(frames), len(enc.Frames))
	}

	got, err := tr.Retrieve(context.Background(), handle)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if !bytes.Equal(framecodec.Flatten(got), framecodec.Flatten(frames)) {
		t.Error("retrieved frames differ")
	}
}

func TestTransport_DefaultContainer(t *testing.T) {
	fs := mocks.NewFileSystem()
	tr, err := New(&mocks.VideoEncoder{}, &mocks.VideoDecoder{FS: fs}, fs, logger.NewNoop(), Options{
		Geometry: framecodec.Geometry{Width: 2, Height: 2},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	handle, err := tr.Persist(context.Background(), "payload", nil)
	if err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	if handle != "payload.mkv" {
		t.Errorf("expected payload.mkv, got %s", handle)
	}
}

func TestTransport_ContainerMismatch(t *testing.T) {
	fs := mocks.NewFileSystem()
	tr, _ := New(&mocks.VideoEncoder{}, &mocks.VideoDecoder{FS: fs}, fs, logger.NewNoop(), Options{
		Geometry: framecodec.Geometry{Width: 2, Height: 2},
		Codec:    "ffv1",
	})

	_, err := tr.Persist(context.Background(), "payload.mp4", nil)
	if !errors.Is(err, ffmpegencoder.ErrUnsupportedContainer) {
		t.Errorf("expected ErrUnsupportedContainer, got %v", err)
	}
}

func TestTransport_MP4MustBeInspectable(t *testing.T) {
	fs := mocks.NewFileSystem()
	g := framecodec.Geometry{Width: 2, Height: 2}
	tr, _ := New(&mocks.VideoEncoder{}, &mocks.VideoDecoder{FS: fs}, fs, logger.NewNoop(), Options{
		Geometry: g,
		Codec:    "x264rgb",
	})

	// The mock encoder emits raw bytes, which is not an MP4 file.
	if _, err := tr.Persist(context.Background(), "payload.mp4", encodePayload(t, g, []byte("x"))); err == nil {
		t.Error("expected inspection error")
	}
	if _, ok := fs.GetFile("payload.mp4"); ok {
		t.Error("rejected video must not be written")
	}
}

func TestTransport_RetrieveMissing(t *testing.T) {
	fs := mocks.NewFileSystem()
	tr, _ := New(&mocks.VideoEncoder{}, &mocks.VideoDecoder{FS: fs}, fs, logger.NewNoop(), Options{
		Geometry: framecodec.DefaultGeometry(),
	})

	if _, err := tr.Retrieve(context.Background(), "missing.mkv"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTransport_EncoderFailureEndsStream(t *testing.T) {
	fs := mocks.NewFileSystem()
	enc := &mocks.VideoEncoder{
		EncodeFrameFunc: func(frame framecodec.Frame) error { return errors.New("pipe closed") },
	}
	g := framecodec.Geometry{Width: 2, Height: 2}
	tr, _ := New(enc, &mocks.VideoDecoder{FS: fs}, fs, logger.NewNoop(), Options{Geometry: g})

	if _, err := tr.Persist(context.Background(), "x.mkv", encodePayload(t, g, nil)); err == nil {
		t.Fatal("expected error")
	}
	if !enc.EndCalled {
		t.Error("encoder must be ended after a failed frame")
	}
}

func TestTransport_FFmpegRoundTrip(t *testing.T) {
	if !ffmpegencoder.IsFFmpegAvailable() {
		t.Skip("ffmpeg not available")
	}

	g := framecodec.DefaultGeometry()
	fs := osfilesystem.New()
	payload := bytes.Repeat([]byte{0x00, 0x7F, 0xFF, 0x10, 0xEF}, 30000)
	frames := encodePayload(t, g, payload)

	for _, tc := range []struct{ codec, ext string }{{"ffv1", "avi"}, {"ffv1", "mkv"}, {"x264rgb", "mp4"}} {
		t.Run(tc.codec+"/"+tc.ext, func(t *testing.T) {
			enc := ffmpegencoder.New()
			enc.Preset = "ultrafast"
			tr, err := New(enc, ffmpegdecoder.New(), fs, logger.NewNoop(), Options{Geometry: g, Codec: tc.codec})
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			handle, err := tr.Persist(context.Background(), filepath.Join(t.TempDir(), "output."+tc.ext), frames)
			if err != nil {
				if tc.codec == "x264rgb" {
					t.Skipf("libx264rgb unavailable: %v", err)
				}
				t.Fatalf("Persist failed: %v", err)
			}

			got, err := tr.Retrieve(context.Background(), handle)
			if err != nil {
				t.Fatalf("Retrieve failed: %v", err)
			}

			dec, _ := framecodec.NewDecoder(g, framecodec.DecoderOptions{})
			if err := framecodec.Verify(dec, payload, got); err != nil {
				t.Errorf("Verify failed: %v", err)
			}
		})
	}
}
