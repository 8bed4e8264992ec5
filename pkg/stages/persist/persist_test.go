package persist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/One-eyed-warrior/data2video/pkg/adapters/logger"
	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/mocks"
	"github.com/One-eyed-warrior/data2video/pkg/pipeline"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

func frames(n int) []framecodec.Frame {
	out := make([]framecodec.Frame, n)
	for i := range out {
		out[i] = framecodec.NewFrame(framecodec.Geometry{Width: 2, Height: 2})
		out[i].Pix[0] = byte(i)
	}
	return out
}

func TestStage_Execute(t *testing.T) {
	transport := mocks.NewFrameTransport()
	sink := mocks.NewDebugSink(false)
	renderer := &mocks.Renderer{}

	stage := New(transport, renderer, sink, logger.NewNoop())
	result, err := stage.Execute(context.Background(), pipeline.PersistInput{Target: "out", Frames: frames(3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Handle != "out" || result.FrameCount != 3 {
		t.Errorf("unexpected result %+v", result)
	}
	if got := transport.Stored("out"); len(got) != 3 {
		t.Errorf("expected 3 stored frames, got %d", len(got))
	}
	if sink.FrameCount() != 0 || renderer.ContactSheetCalls != 0 {
		t.Error("disabled sink should not receive frames")
	}
}

func TestStage_DebugSink(t *testing.T) {
	transport := mocks.NewFrameTransport()
	sink := mocks.NewDebugSink(true)
	renderer := &mocks.Renderer{}

	stage := New(transport, renderer, sink, logger.NewNoop())
	stage.MaxDebugFrames = 2

	result, err := stage.Execute(context.Background(), pipeline.PersistInput{Target: "out", Frames: frames(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DebugFrames != 2 || sink.FrameCount() != 2 {
		t.Errorf("expected 2 debug frames, got %d/%d", result.DebugFrames, sink.FrameCount())
	}
	if sink.ContactSheet == nil {
		t.Error("expected a contact sheet")
	}
	if renderer.ContactSheetCalls != 1 {
		t.Errorf("expected 1 contact sheet call, got %d", renderer.ContactSheetCalls)
	}
}

func TestStage_TransportError(t *testing.T) {
	transport := mocks.NewFrameTransport()
	transport.PersistFunc = func(ctx context.Context, target string, frames []framecodec.Frame) (ports.Handle, error) {
		return "", errors.New("disk full")
	}
	sink := mocks.NewDebugSink(true)

	stage := New(transport, &mocks.Renderer{}, sink, logger.NewNoop())
	_, err := stage.Execute(context.Background(), pipeline.PersistInput{Target: "out", Frames: frames(1)})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected transport error, got %v", err)
	}
	if sink.FrameCount() != 0 {
		t.Error("debug frames should not be written when persist fails")
	}
}
