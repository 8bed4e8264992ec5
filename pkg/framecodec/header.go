package framecodec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// HeaderFormat selects the layout of the stream header.
type HeaderFormat int

const (
	// HeaderAuto lets the decoder detect the format from the magic. Encoders
	// treat it as HeaderLength.
	HeaderAuto HeaderFormat = iota

	// HeaderLength is the bare 8-byte big-endian payload length.
	HeaderLength

	// HeaderTagged carries magic, version, flags and geometry before the length.
	HeaderTagged
)

const (
	// LengthHeaderSize is the size of a HeaderLength header.
	LengthHeaderSize = 8

	// TaggedHeaderSize is the size of a HeaderTagged header.
	TaggedHeaderSize = 20

	// FormatVersion is the tagged header version written by this package.
	FormatVersion = 1

	// FlagZstd marks a payload that was zstd-compressed before framing.
	FlagZstd uint8 = 1 << 0
)

// Magic opens every tagged header.
var Magic = [4]byte{'D', '2', 'V', 'F'}

// String returns the configuration name of the format.
func (f HeaderFormat) String() string {
	switch f {
	case HeaderAuto:
		return "auto"
	case HeaderLength:
		return "length"
	case HeaderTagged:
		return "tagged"
	default:
		return "unknown"
	}
}

// ParseHeaderFormat parses "auto", "length" or "tagged".
func ParseHeaderFormat(s string) (HeaderFormat, error) {
	switch s {
	case "", "auto":
		return HeaderAuto, nil
	case "length":
		return HeaderLength, nil
	case "tagged":
		return HeaderTagged, nil
	default:
		return HeaderAuto, fmt.Errorf("%w: %q", ErrInvalidHeaderFormat, s)
	}
}

// Size returns the encoded header size. HeaderAuto has no fixed size and
// reports the length header size.
func (f HeaderFormat) Size() int {
	if f == HeaderTagged {
		return TaggedHeaderSize
	}
	return LengthHeaderSize
}

// Header is the decoded stream header.
type Header struct {
	Format HeaderFormat
	Flags  uint8
	Width  int
	Height int
	Length uint64
}

// Size returns the number of stream bytes the header occupies.
func (h Header) Size() int {
	return h.Format.Size()
}

// Compressed reports whether FlagZstd is set.
func (h Header) Compressed() bool {
	return h.Flags&FlagZstd != 0
}

// Marshal encodes the header.
func (h Header) Marshal() []byte {
	if h.Format != HeaderTagged {
		b := make([]byte, LengthHeaderSize)
		binary.BigEndian.PutUint64(b, h.Length)
		return b
	}

	b := make([]byte, TaggedHeaderSize)
	copy(b[0:4], Magic[:])
	b[4] = FormatVersion
	b[5] = h.Flags
	binary.BigEndian.PutUint16(b[6:8], uint16(h.Width))
	binary.BigEndian.PutUint16(b[8:10], uint16(h.Height))
	// b[10:12] reserved
	binary.BigEndian.PutUint64(b[12:20], h.Length)
	return b
}

// DetectHeaderFormat inspects the first bytes of a stream. A length header
// whose top four bytes spell the magic would declare more than 4.9e18
// bytes, so the check cannot misfire on real data.
func DetectHeaderFormat(prefix []byte) HeaderFormat {
	if len(prefix) >= len(Magic) && bytes.Equal(prefix[:len(Magic)], Magic[:]) {
		return HeaderTagged
	}
	return HeaderLength
}

// parseHeader decodes a header of the given concrete format from b, which
// must hold at least format.Size() bytes.
func parseHeader(b []byte, format HeaderFormat) (Header, error) {
	if format != HeaderTagged {
		return Header{
			Format: HeaderLength,
			Length: binary.BigEndian.Uint64(b[:LengthHeaderSize]),
		}, nil
	}

	if !bytes.Equal(b[0:4], Magic[:]) {
		return Header{}, decodeErr(ErrBadMagic, -1, "got %q", b[0:4])
	}
	if b[4] != FormatVersion {
		return Header{}, decodeErr(ErrUnsupportedVersion, -1, "version %d", b[4])
	}
	return Header{
		Format: HeaderTagged,
		Flags:  b[5],
		Width:  int(binary.BigEndian.Uint16(b[6:8])),
		Height: int(binary.BigEndian.Uint16(b[8:10])),
		Length: binary.BigEndian.Uint64(b[12:20]),
	}, nil
}

// checkTaggedGeometry reports whether g fits the 16-bit fields of a tagged header.
func checkTaggedGeometry(g Geometry) error {
	if g.Width > math.MaxUint16 || g.Height > math.MaxUint16 {
		return fmt.Errorf("%w: %s exceeds tagged header limit", ErrInvalidGeometry, g)
	}
	return nil
}
