package framecodec

// DecoderOptions configures a Decoder.
type DecoderOptions struct {
	// Header selects the expected header layout. HeaderAuto detects it.
	Header HeaderFormat
}

// Decoder reconstructs payloads from frame sequences. It holds no mutable
// state and is safe for concurrent use.
type Decoder struct {
	geometry Geometry
	header   HeaderFormat
}

// NewDecoder creates a decoder for the given geometry.
func NewDecoder(g Geometry, opts DecoderOptions) (*Decoder, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	switch opts.Header {
	case HeaderAuto, HeaderLength, HeaderTagged:
	default:
		return nil, ErrInvalidHeaderFormat
	}
	return &Decoder{geometry: g, header: opts.Header}, nil
}

// Geometry returns the frame geometry the decoder accepts.
func (d *Decoder) Geometry() Geometry {
	return d.geometry
}

// Decode returns the payload carried by frames.
func (d *Decoder) Decode(frames []Frame) ([]byte, error) {
	payload, _, err := d.DecodeWithHeader(frames)
	return payload, err
}

// DecodeWithHeader returns the payload together with the parsed header.
// Bytes after the declared payload are never inspected.
func (d *Decoder) DecodeWithHeader(frames []Frame) ([]byte, Header, error) {
	h, err := d.ReadHeader(frames)
	if err != nil {
		return nil, Header{}, err
	}

	available := uint64(len(frames)*d.geometry.Capacity() - h.Size())
	if h.Length > available {
		return nil, h, decodeErr(ErrTruncatedPayload, -1,
			"header declares %d bytes, frames hold %d", h.Length, available)
	}

	payload := make([]byte, h.Length)
	readStream(frames, d.geometry.Capacity(), h.Size(), payload)
	return payload, h, nil
}

// ReadHeader validates frame geometry and parses the stream header.
func (d *Decoder) ReadHeader(frames []Frame) (Header, error) {
	if err := d.checkFrames(frames); err != nil {
		return Header{}, err
	}

	c := d.geometry.Capacity()
	total := len(frames) * c

	format := d.header
	if format == HeaderAuto {
		prefix := make([]byte, min(total, len(Magic)))
		readStream(frames, c, 0, prefix)
		format = DetectHeaderFormat(prefix)
	}

	size := format.Size()
	if total < size {
		return Header{}, decodeErr(ErrTruncatedHeader, -1,
			"need %d bytes, frames hold %d", size, total)
	}

	raw := make([]byte, size)
	readStream(frames, c, 0, raw)
	h, err := parseHeader(raw, format)
	if err != nil {
		return Header{}, err
	}

	if h.Format == HeaderTagged && (h.Width != d.geometry.Width || h.Height != d.geometry.Height) {
		return Header{}, decodeErr(ErrGeometryMismatch, -1,
			"stream written for %dx%d, decoder expects %s", h.Width, h.Height, d.geometry)
	}
	return h, nil
}

// checkFrames rejects frames whose size differs from the decoder geometry.
func (d *Decoder) checkFrames(frames []Frame) error {
	c := d.geometry.Capacity()
	for i, f := range frames {
		if f.Width != d.geometry.Width || f.Height != d.geometry.Height {
			return decodeErr(ErrGeometryMismatch, i,
				"got %dx%d, want %s", f.Width, f.Height, d.geometry)
		}
		if len(f.Pix) != c {
			return decodeErr(ErrGeometryMismatch, i,
				"got %d pixel bytes, want %d", len(f.Pix), c)
		}
	}
	return nil
}

// readStream copies len(dst) bytes starting at stream offset off, walking
// the frames in order.
func readStream(frames []Frame, capacity, off int, dst []byte) {
	for len(dst) > 0 {
		idx := off / capacity
		if idx >= len(frames) {
			return
		}
		n := copy(dst, frames[idx].Pix[off%capacity:])
		dst = dst[n:]
		off += n
	}
}

// Flatten concatenates the pixel bytes of all frames in order.
func Flatten(frames []Frame) []byte {
	size := 0
	for _, f := range frames {
		size += len(f.Pix)
	}
	out := make([]byte, 0, size)
	for _, f := range frames {
		out = append(out, f.Pix...)
	}
	return out
}
