package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// FrameTransport is an in-memory ports.FrameTransport. Stored frames are
// deep copies so tests can corrupt them through Stored without touching
// the caller's slices.
type FrameTransport struct {
	mu     sync.Mutex
	stored map[ports.Handle][]framecodec.Frame

	PersistFunc  func(ctx context.Context, target string, frames []framecodec.Frame) (ports.Handle, error)
	RetrieveFunc func(ctx context.Context, handle ports.Handle) ([]framecodec.Frame, error)

	PersistCalls  int
	RetrieveCalls int
}

// NewFrameTransport creates an empty in-memory transport.
func NewFrameTransport() *FrameTransport {
	return &FrameTransport{stored: make(map[ports.Handle][]framecodec.Frame)}
}

func (m *FrameTransport) Persist(ctx context.Context, target string, frames []framecodec.Frame) (ports.Handle, error) {
	m.mu.Lock()
	m.PersistCalls++
	m.mu.Unlock()
	if m.PersistFunc != nil {
		return m.PersistFunc(ctx, target, frames)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored[ports.Handle(target)] = cloneFrames(frames)
	return ports.Handle(target), nil
}

func (m *FrameTransport) Retrieve(ctx context.Context, handle ports.Handle) ([]framecodec.Frame, error) {
	m.mu.Lock()
	m.RetrieveCalls++
	m.mu.Unlock()
	if m.RetrieveFunc != nil {
		return m.RetrieveFunc(ctx, handle)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	frames, ok := m.stored[handle]
	if !ok {
		return nil, fmt.Errorf("handle not found: %s", handle)
	}
	return cloneFrames(frames), nil
}

// Stored returns the frames held under handle (for test manipulation).
func (m *FrameTransport) Stored(handle ports.Handle) []framecodec.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored[handle]
}

func cloneFrames(frames []framecodec.Frame) []framecodec.Frame {
	out := make([]framecodec.Frame, len(frames))
	for i, f := range frames {
		out[i] = framecodec.Frame{Width: f.Width, Height: f.Height, Pix: append([]byte(nil), f.Pix...)}
	}
	return out
}

var _ ports.FrameTransport = (*FrameTransport)(nil)
