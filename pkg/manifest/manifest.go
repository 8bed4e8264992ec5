// Package manifest describes an encoded payload in a small CBOR sidecar
// stored next to the frames. Decoding uses it to cross-check the frame
// count and the payload digest.
package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// Version is the manifest format version written by Marshal.
const Version = 1

// Extension is appended to a handle to name its manifest.
const Extension = ".manifest.cbor"

var (
	// ErrUnsupportedVersion is returned for manifests from a newer format.
	ErrUnsupportedVersion = errors.New("manifest: unsupported version")

	// ErrDigestMismatch is returned when decoded bytes do not match the recorded digest.
	ErrDigestMismatch = errors.New("manifest: digest mismatch")

	// ErrFrameCountMismatch is returned when the transport returns a different number of frames.
	ErrFrameCountMismatch = errors.New("manifest: frame count mismatch")
)

// Manifest records how a payload was encoded.
type Manifest struct {
	Version       int                     `cbor:"1,keyasint"`
	Geometry      framecodec.Geometry     `cbor:"2,keyasint"`
	HeaderFormat  framecodec.HeaderFormat `cbor:"3,keyasint"`
	Compressed    bool                    `cbor:"4,keyasint"`
	FrameCount    int                     `cbor:"5,keyasint"`
	PayloadLength int64                   `cbor:"6,keyasint"`
	SHA256        []byte                  `cbor:"7,keyasint"`
	StoredLength  int64                   `cbor:"8,keyasint"`
	Transport     string                  `cbor:"9,keyasint,omitempty"`
	Codec         string                  `cbor:"10,keyasint,omitempty"`
	RunID         string                  `cbor:"11,keyasint,omitempty"`
	CreatedAt     time.Time               `cbor:"12,keyasint"`
}

var encMode = func() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Marshal encodes m, stamping the current format version.
func Marshal(m Manifest) ([]byte, error) {
	m.Version = Version
	data, err := encMode.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("manifest: encode: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a manifest written by Marshal.
func Unmarshal(data []byte) (Manifest, error) {
	var m Manifest
	if err := cbor.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("manifest: decode: %w", err)
	}
	if m.Version < 1 || m.Version > Version {
		return Manifest{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, m.Version)
	}
	return m, nil
}

// PathFor returns the manifest path for a transport handle.
func PathFor(handle ports.Handle) string {
	return string(handle) + Extension
}

// Digest returns the SHA-256 of data.
func Digest(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// DigestHex returns the hex form of the recorded digest.
func (m Manifest) DigestHex() string {
	return hex.EncodeToString(m.SHA256)
}

// CheckFrames compares the recorded frame count against n.
func (m Manifest) CheckFrames(n int) error {
	if m.FrameCount != n {
		return fmt.Errorf("%w: recorded %d, got %d", ErrFrameCountMismatch, m.FrameCount, n)
	}
	return nil
}

// CheckPayload compares data against the recorded length and digest.
func (m Manifest) CheckPayload(data []byte) error {
	if int64(len(data)) != m.PayloadLength {
		return fmt.Errorf("%w: recorded %d bytes, got %d", ErrDigestMismatch, m.PayloadLength, len(data))
	}
	if len(m.SHA256) == 0 {
		return nil
	}
	if !bytes.Equal(Digest(data), m.SHA256) {
		return fmt.Errorf("%w: recorded %s", ErrDigestMismatch, m.DigestHex())
	}
	return nil
}

// Save writes m next to handle.
func Save(fs ports.FileSystem, handle ports.Handle, m Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	return fs.WriteFile(PathFor(handle), data)
}

// Load reads the manifest stored next to handle. The boolean is false when
// no manifest exists.
func Load(fs ports.FileSystem, handle ports.Handle) (Manifest, bool, error) {
	path := PathFor(handle)
	exists, err := fs.Exists(path)
	if err != nil {
		return Manifest{}, false, err
	}
	if !exists {
		return Manifest{}, false, nil
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return Manifest{}, false, err
	}
	m, err := Unmarshal(data)
	if err != nil {
		return Manifest{}, false, err
	}
	return m, true, nil
}
