package unpack

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/One-eyed-warrior/data2video/pkg/adapters/logger"
	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/mocks"
	"github.com/One-eyed-warrior/data2video/pkg/pipeline"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
	"github.com/One-eyed-warrior/data2video/pkg/stages/pack"
)

var geometry = framecodec.Geometry{Width: 6, Height: 4}

// store packs payload and puts the frames into transport under "h".
func store(t *testing.T, transport *mocks.FrameTransport, header framecodec.HeaderFormat, payload []byte, compress bool) {
	t.Helper()
	packer, err := pack.New(geometry, framecodec.EncoderOptions{Header: header}, logger.NewNoop())
	if err != nil {
		t.Fatal(err)
	}
	res, err := packer.Execute(context.Background(), pipeline.PackInput{Payload: payload, Compress: compress})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := transport.Persist(context.Background(), "h", res.Frames); err != nil {
		t.Fatal(err)
	}
}

func newStage(t *testing.T, transport ports.FrameTransport) *Stage {
	t.Helper()
	dec, err := framecodec.NewDecoder(geometry, framecodec.DecoderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return New(transport, dec, logger.NewNoop())
}

func TestStage_Execute(t *testing.T) {
	tests := []struct {
		name     string
		header   framecodec.HeaderFormat
		compress bool
		hint     bool
	}{
		{"length plain", framecodec.HeaderLength, false, false},
		{"tagged plain", framecodec.HeaderTagged, false, false},
		{"tagged zstd flag", framecodec.HeaderTagged, true, false},
		{"length zstd from manifest", framecodec.HeaderLength, true, true},
	}

	payload := bytes.Repeat([]byte("frame data "), 40)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			transport := mocks.NewFrameTransport()
			store(t, transport, tc.header, payload, tc.compress)

			result, err := newStage(t, transport).Execute(context.Background(),
				pipeline.UnpackInput{Handle: "h", Compressed: tc.hint})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(result.Payload, payload) {
				t.Error("payload mismatch")
			}
			if result.Compressed != tc.compress {
				t.Errorf("expected compressed=%v", tc.compress)
			}
			if result.Header.Format != tc.header {
				t.Errorf("expected header %v, got %v", tc.header, result.Header.Format)
			}
		})
	}
}

func TestStage_RetrieveError(t *testing.T) {
	transport := mocks.NewFrameTransport()
	_, err := newStage(t, transport).Execute(context.Background(), pipeline.UnpackInput{Handle: "missing"})
	if err == nil {
		t.Error("expected retrieve error")
	}
}

func TestStage_Truncated(t *testing.T) {
	transport := mocks.NewFrameTransport()
	store(t, transport, framecodec.HeaderLength, make([]byte, 500), false)

	frames := transport.Stored("h")
	transport.Persist(context.Background(), "h", frames[:len(frames)-1])

	_, err := newStage(t, transport).Execute(context.Background(), pipeline.UnpackInput{Handle: "h"})
	if !errors.Is(err, framecodec.ErrTruncatedPayload) {
		t.Errorf("expected ErrTruncatedPayload, got %v", err)
	}
}

func TestStage_CompressedHintOnPlainData(t *testing.T) {
	transport := mocks.NewFrameTransport()
	store(t, transport, framecodec.HeaderLength, []byte("plain"), false)

	_, err := newStage(t, transport).Execute(context.Background(), pipeline.UnpackInput{Handle: "h", Compressed: true})
	if !errors.Is(err, pack.ErrDecompress) {
		t.Errorf("expected ErrDecompress, got %v", err)
	}
}

func TestStage_TaggedHeaderOverridesHint(t *testing.T) {
	transport := mocks.NewFrameTransport()
	store(t, transport, framecodec.HeaderTagged, []byte("plain"), false)

	result, err := newStage(t, transport).Execute(context.Background(), pipeline.UnpackInput{Handle: "h", Compressed: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result.Payload) != "plain" || result.Compressed {
		t.Errorf("unexpected result %q compressed=%v", result.Payload, result.Compressed)
	}
}
