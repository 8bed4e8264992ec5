// Package codecdetect inspects MP4 containers with mp4ff to decide whether
// a video track can carry frames bit-exactly.
package codecdetect

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecUnknown Codec = "unknown"
)

// ProfileHigh444Predictive is the H.264 profile_idc of lossless-capable
// 4:4:4 streams written by libx264rgb.
const ProfileHigh444Predictive = 244

// ErrNoVideoTrack is returned when the file has no video track.
var ErrNoVideoTrack = errors.New("codecdetect: no video track found")

// Info describes the first video track of an MP4 file.
type Info struct {
	Codec       Codec
	Profile     int // H.264 profile_idc, 0 for other codecs
	Width       int
	Height      int
	SampleCount int // -1 when unknown (fragmented files)
	Fragmented  bool
}

// Lossless reports whether the track uses a codec profile that can store
// RGB frames without loss. Only H.264 High 4:4:4 Predictive qualifies.
func (i Info) Lossless() bool {
	return i.Codec == CodecH264 && i.Profile == ProfileHigh444Predictive
}

// InspectBytes inspects MP4 data held in memory.
func InspectBytes(data []byte) (Info, error) {
	return Inspect(bytes.NewReader(data))
}

// Inspect decodes the box structure read from r.
func Inspect(r io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("seek: %w", err)
	}

	return inspectFile(mp4File)
}

func inspectFile(mp4File *mp4.File) (Info, error) {
	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		for _, trak := range mp4File.Init.Moov.Traks {
			if info, ok := inspectTrack(trak); ok {
				info.Fragmented = true
				info.SampleCount = -1
				return info, nil
			}
		}
	}

	if mp4File.Moov != nil {
		for _, trak := range mp4File.Moov.Traks {
			if info, ok := inspectTrack(trak); ok {
				return info, nil
			}
		}
	}

	return Info{Codec: CodecUnknown}, ErrNoVideoTrack
}

func inspectTrack(trak *mp4.TrakBox) (Info, bool) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
		return Info{}, false
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return Info{}, false
	}
	stbl := trak.Mdia.Minf.Stbl

	info := Info{Codec: CodecUnknown}
	if stbl.Stsz != nil {
		info.SampleCount = int(stbl.Stsz.SampleNumber)
	}

	for _, child := range stbl.Stsd.Children {
		vse, ok := child.(*mp4.VisualSampleEntryBox)
		if ok {
			info.Width = int(vse.Width)
			info.Height = int(vse.Height)
		}

		switch child.Type() {
		case "avc1", "avc3":
			info.Codec = CodecH264
			if ok && vse.AvcC != nil {
				info.Profile = int(vse.AvcC.AVCProfileIndication)
			}
		case "hvc1", "hev1":
			info.Codec = CodecHEVC
		case "av01":
			info.Codec = CodecAV1
		}
		if info.Codec != CodecUnknown {
			break
		}
	}

	return info, true
}
