package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/One-eyed-warrior/data2video/pkg/adapters/logger"
	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/manifest"
	"github.com/One-eyed-warrior/data2video/pkg/mocks"
	"github.com/One-eyed-warrior/data2video/pkg/pipeline"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
	"github.com/One-eyed-warrior/data2video/pkg/stages/pack"
	"github.com/One-eyed-warrior/data2video/pkg/stages/persist"
	"github.com/One-eyed-warrior/data2video/pkg/stages/unpack"
	"github.com/One-eyed-warrior/data2video/pkg/stages/verify"
)

var testGeometry = framecodec.Geometry{Width: 8, Height: 6}

type fixture struct {
	orch      *Orchestrator
	fs        *mocks.FileSystem
	transport *mocks.FrameTransport
	sink      *mocks.DebugSink
	renderer  *mocks.Renderer
}

func newFixture(t *testing.T, header framecodec.HeaderFormat, debug bool) *fixture {
	t.Helper()
	log := logger.NewNoop()
	fs := mocks.NewFileSystem()
	transport := mocks.NewFrameTransport()
	sink := mocks.NewDebugSink(debug)
	renderer := &mocks.Renderer{}

	packStage, err := pack.New(testGeometry, framecodec.EncoderOptions{Header: header}, log)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := framecodec.NewDecoder(testGeometry, framecodec.DecoderOptions{})
	if err != nil {
		t.Fatal(err)
	}

	orch := New(
		packStage,
		persist.New(transport, renderer, sink, log),
		unpack.New(transport, dec, log),
		verify.New(transport, dec, log),
		fs,
		renderer,
		sink,
		log,
	)
	orch.newID = func() string { return "run-1" }
	orch.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return &fixture{orch: orch, fs: fs, transport: transport, sink: sink, renderer: renderer}
}

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*13 + i/7)
	}
	return b
}

func TestOrchestrator_EncodeDecode(t *testing.T) {
	tests := []struct {
		name     string
		header   framecodec.HeaderFormat
		compress bool
		size     int
	}{
		{"empty", framecodec.HeaderLength, false, 0},
		{"one frame", framecodec.HeaderLength, false, 100},
		{"multi frame tagged", framecodec.HeaderTagged, false, 1000},
		{"compressed tagged", framecodec.HeaderTagged, true, 5000},
		{"compressed length", framecodec.HeaderLength, true, 5000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.header, false)
			data := payload(tc.size)
			f.fs.WriteFile("in.bin", data)

			enc, err := f.orch.Encode(context.Background(), EncodeConfig{
				InputPath:     "in.bin",
				Target:        "out",
				Geometry:      testGeometry,
				Compress:      tc.compress,
				Verify:        true,
				WriteManifest: true,
			})
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if !enc.Verified {
				t.Error("expected verified result")
			}
			if enc.Handle != "out" || enc.PayloadLength != tc.size || enc.RunID != "run-1" {
				t.Errorf("unexpected encode result %+v", enc)
			}
			if enc.ManifestPath != "out.manifest.cbor" {
				t.Errorf("unexpected manifest path %q", enc.ManifestPath)
			}

			dec, err := f.orch.Decode(context.Background(), DecodeConfig{
				Handle:     enc.Handle,
				OutputPath: "out.bin",
				Geometry:   testGeometry,
			})
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			got, _ := f.fs.GetFile("out.bin")
			if !bytes.Equal(got, data) {
				t.Error("decoded output differs from input")
			}
			if !dec.ManifestFound || !dec.DigestChecked {
				t.Errorf("expected manifest checks, got %+v", dec)
			}
			if dec.Compressed != tc.compress {
				t.Errorf("expected compressed=%v", tc.compress)
			}
			if dec.FrameCount != enc.FrameCount {
				t.Errorf("frame count %d != %d", dec.FrameCount, enc.FrameCount)
			}
		})
	}
}

func TestOrchestrator_EncodeFrameCount(t *testing.T) {
	f := newFixture(t, framecodec.HeaderLength, false)
	// 144-byte frames: 8 header bytes + 280 payload bytes need 2 frames.
	f.fs.WriteFile("in.bin", payload(280))

	res, err := f.orch.Encode(context.Background(), EncodeConfig{InputPath: "in.bin", Target: "out", Geometry: testGeometry})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if res.FrameCount != 2 {
		t.Errorf("expected 2 frames, got %d", res.FrameCount)
	}
	if res.Verified || res.ManifestPath != "" {
		t.Error("verify and manifest should be off")
	}
	if f.transport.RetrieveCalls != 0 {
		t.Error("no retrieve expected without verify")
	}
}

func TestOrchestrator_EncodeMissingInput(t *testing.T) {
	f := newFixture(t, framecodec.HeaderLength, false)
	if _, err := f.orch.Encode(context.Background(), EncodeConfig{InputPath: "missing", Geometry: testGeometry}); err == nil {
		t.Error("expected read error")
	}
	if f.transport.PersistCalls != 0 {
		t.Error("nothing should be persisted")
	}
}

func TestOrchestrator_VerifyDetectsLossyTransport(t *testing.T) {
	f := newFixture(t, framecodec.HeaderLength, false)
	f.fs.WriteFile("in.bin", payload(500))

	// Corrupt frames on the way in, as a lossy codec would.
	store := mocks.NewFrameTransport()
	f.transport.PersistFunc = func(ctx context.Context, target string, frames []framecodec.Frame) (ports.Handle, error) {
		frames[1].Pix[3] ^= 0x80
		return store.Persist(ctx, target, frames)
	}
	f.transport.RetrieveFunc = store.Retrieve

	_, err := f.orch.Encode(context.Background(), EncodeConfig{
		InputPath: "in.bin", Target: "out", Geometry: testGeometry, Verify: true,
	})
	if !errors.Is(err, framecodec.ErrVerificationFailed) {
		t.Errorf("expected ErrVerificationFailed, got %v", err)
	}
}

func TestOrchestrator_DecodeManifestMismatch(t *testing.T) {
	f := newFixture(t, framecodec.HeaderLength, false)
	f.fs.WriteFile("in.bin", payload(300))

	_, err := f.orch.Encode(context.Background(), EncodeConfig{
		InputPath: "in.bin", Target: "out", Geometry: testGeometry, WriteManifest: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// A truncated sequence is caught by the header, so the manifest is
	// tampered with instead.
	m, _, _ := manifest.Load(f.fs, "out")
	m.FrameCount++
	manifest.Save(f.fs, "out", m)

	_, err = f.orch.Decode(context.Background(), DecodeConfig{Handle: "out", OutputPath: "o", Geometry: testGeometry})
	if !errors.Is(err, manifest.ErrFrameCountMismatch) {
		t.Errorf("expected ErrFrameCountMismatch, got %v", err)
	}

	m.FrameCount--
	m.SHA256[0] ^= 0xff
	manifest.Save(f.fs, "out", m)
	_, err = f.orch.Decode(context.Background(), DecodeConfig{Handle: "out", OutputPath: "o", Geometry: testGeometry})
	if !errors.Is(err, manifest.ErrDigestMismatch) {
		t.Errorf("expected ErrDigestMismatch, got %v", err)
	}

	res, err := f.orch.Decode(context.Background(), DecodeConfig{Handle: "out", OutputPath: "o", Geometry: testGeometry, IgnoreManifest: true})
	if err != nil {
		t.Fatalf("decode without manifest failed: %v", err)
	}
	if res.ManifestFound {
		t.Error("manifest should be ignored")
	}
}

func TestOrchestrator_DecodeManifestGeometry(t *testing.T) {
	f := newFixture(t, framecodec.HeaderLength, false)
	manifest.Save(f.fs, "out", manifest.Manifest{Geometry: framecodec.Geometry{Width: 6, Height: 8}})

	_, err := f.orch.Decode(context.Background(), DecodeConfig{Handle: "out", OutputPath: "o", Geometry: testGeometry})
	if !errors.Is(err, ErrManifestGeometry) {
		t.Errorf("expected ErrManifestGeometry, got %v", err)
	}
}

func TestOrchestrator_Verify(t *testing.T) {
	f := newFixture(t, framecodec.HeaderTagged, false)
	data := payload(700)
	f.fs.WriteFile("in.bin", data)

	if _, err := f.orch.Encode(context.Background(), EncodeConfig{InputPath: "in.bin", Target: "out", Geometry: testGeometry}); err != nil {
		t.Fatal(err)
	}

	report, err := f.orch.Verify(context.Background(), VerifyConfig{
		InputPath:    "in.bin",
		DecodeConfig: DecodeConfig{Handle: "out", Geometry: testGeometry},
	})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !report.Match || report.FirstDifference != -1 {
		t.Errorf("unexpected report %+v", report)
	}

	data[123] ^= 1
	f.fs.WriteFile("changed.bin", data)
	report, err = f.orch.Verify(context.Background(), VerifyConfig{
		InputPath:    "changed.bin",
		DecodeConfig: DecodeConfig{Handle: "out", Geometry: testGeometry},
	})
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	if report.FirstDifference != 123 {
		t.Errorf("expected difference at 123, got %d", report.FirstDifference)
	}
}

func TestOrchestrator_Inspect(t *testing.T) {
	f := newFixture(t, framecodec.HeaderTagged, true)
	f.fs.WriteFile("in.bin", payload(200))

	if _, err := f.orch.Encode(context.Background(), EncodeConfig{
		InputPath: "in.bin", Target: "out", Geometry: testGeometry, WriteManifest: true,
	}); err != nil {
		t.Fatal(err)
	}
	if f.sink.Manifest == nil {
		t.Error("expected manifest copy in debug sink")
	}

	report, err := f.orch.Inspect(context.Background(), InspectConfig{Handle: "out", Geometry: testGeometry, ContactSheet: true})
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	// 20 header bytes + 200 payload bytes in two 144-byte frames.
	if report.FrameCount != 2 || report.Capacity != 288 || report.PaddingBytes != 68 {
		t.Errorf("unexpected report %+v", report)
	}
	if report.Header.Format != framecodec.HeaderTagged || report.Header.Width != 8 {
		t.Errorf("unexpected header %+v", report.Header)
	}
	if report.Manifest == nil || report.Manifest.RunID != "run-1" {
		t.Error("expected manifest in report")
	}
	if report.ContactSheetFrames != 2 {
		t.Errorf("expected contact sheet of 2 frames, got %d", report.ContactSheetFrames)
	}
	if u := report.Utilization(); u < 0.76 || u > 0.77 {
		t.Errorf("unexpected utilization %f", u)
	}
}

func TestOrchestrator_StageError(t *testing.T) {
	f := newFixture(t, framecodec.HeaderLength, false)
	f.fs.WriteFile("in.bin", payload(10))

	failing := pipeline.StageFunc[pipeline.PackInput, pipeline.PackResult](
		func(ctx context.Context, input pipeline.PackInput) (pipeline.PackResult, error) {
			return pipeline.PackResult{}, errors.New("boom")
		},
	)
	f.orch.packStage = failing

	_, err := f.orch.Encode(context.Background(), EncodeConfig{InputPath: "in.bin", Target: "out", Geometry: testGeometry})
	if err == nil {
		t.Fatal("expected error")
	}
	if f.transport.PersistCalls != 0 {
		t.Error("persist should not run after a pack failure")
	}
}

func TestFirstDifference(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", -1},
		{"abc", "abc", -1},
		{"abc", "abd", 2},
		{"abc", "ab", 2},
		{"", "x", 0},
	}
	for _, tc := range tests {
		if got := firstDifference([]byte(tc.a), []byte(tc.b)); got != tc.want {
			t.Errorf("firstDifference(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
