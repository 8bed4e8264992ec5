package framecodec

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGeometry is returned for non-positive or unrepresentable frame sizes.
	ErrInvalidGeometry = errors.New("framecodec: invalid geometry")

	// ErrInvalidHeaderFormat is returned when an encoder is asked for a header format it cannot write.
	ErrInvalidHeaderFormat = errors.New("framecodec: invalid header format")

	// ErrTruncatedHeader is returned when the frames hold fewer bytes than the header needs.
	ErrTruncatedHeader = errors.New("framecodec: truncated header")

	// ErrTruncatedPayload is returned when the header declares more bytes than the frames hold.
	ErrTruncatedPayload = errors.New("framecodec: truncated payload")

	// ErrGeometryMismatch is returned when a frame does not have the decoder's dimensions.
	ErrGeometryMismatch = errors.New("framecodec: geometry mismatch")

	// ErrBadMagic is returned when a tagged header does not start with the format magic.
	ErrBadMagic = errors.New("framecodec: bad magic")

	// ErrUnsupportedVersion is returned for tagged headers written by an unknown format version.
	ErrUnsupportedVersion = errors.New("framecodec: unsupported format version")

	// ErrVerificationFailed is returned when decoded bytes differ from the original payload.
	ErrVerificationFailed = errors.New("framecodec: verification failed")
)

// DecodeError describes why a frame sequence could not be decoded.
// It wraps one of the package sentinel errors; match it with errors.Is.
type DecodeError struct {
	Err    error
	Frame  int // index of the offending frame, -1 when not frame specific
	Detail string
}

func (e *DecodeError) Error() string {
	msg := e.Err.Error()
	if e.Frame >= 0 {
		msg = fmt.Sprintf("%s (frame %d)", msg, e.Frame)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(err error, frame int, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Err: err, Frame: frame, Detail: fmt.Sprintf(format, args...)}
}
