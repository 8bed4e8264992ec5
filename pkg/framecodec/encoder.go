package framecodec

import (
	"runtime"
	"sync"
)

// EncoderOptions configures an Encoder.
type EncoderOptions struct {
	// Header selects the header layout. HeaderAuto means HeaderLength.
	Header HeaderFormat

	// Flags is stored in tagged headers and ignored for length headers.
	Flags uint8

	// Workers is the number of goroutines building frames.
	// Zero or negative means runtime.NumCPU().
	Workers int
}

// Encoder turns payloads into frame sequences. It holds no mutable state
// and is safe for concurrent use.
type Encoder struct {
	geometry Geometry
	header   HeaderFormat
	flags    uint8
	workers  int
}

// NewEncoder creates an encoder for the given geometry.
func NewEncoder(g Geometry, opts EncoderOptions) (*Encoder, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	header := opts.Header
	switch header {
	case HeaderAuto:
		header = HeaderLength
	case HeaderLength:
	case HeaderTagged:
		if err := checkTaggedGeometry(g); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidHeaderFormat
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Encoder{
		geometry: g,
		header:   header,
		flags:    opts.Flags,
		workers:  workers,
	}, nil
}

// Geometry returns the frame geometry.
func (e *Encoder) Geometry() Geometry {
	return e.geometry
}

// HeaderFormat returns the header layout written by the encoder.
func (e *Encoder) HeaderFormat() HeaderFormat {
	return e.header
}

// FrameCount returns the number of frames Encode produces for a payload of
// payloadLen bytes.
func (e *Encoder) FrameCount(payloadLen int) int {
	return e.geometry.FrameCount(payloadLen + e.header.Size())
}

// Header returns the header the encoder writes for a payload of payloadLen bytes.
func (e *Encoder) Header(payloadLen int) Header {
	h := Header{
		Format: e.header,
		Length: uint64(payloadLen),
	}
	if e.header == HeaderTagged {
		h.Flags = e.flags
		h.Width = e.geometry.Width
		h.Height = e.geometry.Height
	}
	return h
}

// Encode converts payload into frames. It never fails: every byte string,
// including the empty one, has a frame sequence.
func (e *Encoder) Encode(payload []byte) []Frame {
	header := e.Header(len(payload)).Marshal()
	n := e.geometry.FrameCount(len(header) + len(payload))
	frames := make([]Frame, n)

	workers := e.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := range frames {
			frames[i] = e.buildFrame(header, payload, i)
		}
		return frames
	}

	jobs := make(chan int, n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				// Each worker writes only the slot of its own chunk index.
				frames[idx] = e.buildFrame(header, payload, idx)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return frames
}

// buildFrame fills frame index with chunk index of header ++ payload.
// Unused bytes, including the missing channels of a trailing partial
// pixel, stay zero.
func (e *Encoder) buildFrame(header, payload []byte, index int) Frame {
	frame := NewFrame(e.geometry)
	c := e.geometry.Capacity()
	start := index * c
	end := start + c
	total := len(header) + len(payload)
	if end > total {
		end = total
	}

	off := 0
	if start < len(header) {
		hEnd := end
		if hEnd > len(header) {
			hEnd = len(header)
		}
		off = copy(frame.Pix, header[start:hEnd])
	}

	pStart := start - len(header)
	if pStart < 0 {
		pStart = 0
	}
	pEnd := end - len(header)
	if pEnd > pStart {
		copy(frame.Pix[off:], payload[pStart:pEnd])
	}

	return frame
}
