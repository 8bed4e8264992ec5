// Package orchestrator coordinates the pipeline stages for the encode,
// decode, verify and inspect operations.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/manifest"
	"github.com/One-eyed-warrior/data2video/pkg/pipeline"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

var (
	// ErrManifestGeometry is returned when a manifest was written for a
	// different frame size than the decoder is configured with.
	ErrManifestGeometry = errors.New("orchestrator: manifest geometry differs from configuration")

	// ErrMismatch is returned by Verify when the stored payload differs
	// from the input file.
	ErrMismatch = errors.New("orchestrator: stored payload differs from input")
)

// EncodeConfig configures an Encode run.
type EncodeConfig struct {
	InputPath string
	Target    string

	Geometry framecodec.Geometry
	Compress bool

	// Verify reads the stored sequence back after persisting.
	Verify bool

	// WriteManifest stores a sidecar manifest next to the handle.
	WriteManifest bool

	// Transport and Codec are recorded in the manifest.
	Transport string
	Codec     string
}

// DecodeConfig configures a Decode run.
type DecodeConfig struct {
	Handle     ports.Handle
	OutputPath string
	Geometry   framecodec.Geometry

	// Compressed forces decompression when no manifest says so.
	Compressed bool

	// IgnoreManifest skips the sidecar cross-checks.
	IgnoreManifest bool
}

// VerifyConfig configures a Verify run.
type VerifyConfig struct {
	InputPath string
	DecodeConfig
}

// InspectConfig configures an Inspect run.
type InspectConfig struct {
	Handle   ports.Handle
	Geometry framecodec.Geometry

	// ContactSheet saves an overview of the frames to the debug sink.
	ContactSheet bool
	// MaxSheetFrames limits the frames on the contact sheet.
	MaxSheetFrames int
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	packStage    pipeline.Stage[pipeline.PackInput, pipeline.PackResult]
	persistStage pipeline.Stage[pipeline.PersistInput, pipeline.PersistResult]
	unpackStage  pipeline.Stage[pipeline.UnpackInput, pipeline.UnpackResult]
	verifyStage  pipeline.Stage[pipeline.VerifyInput, pipeline.VerifyResult]
	fs           ports.FileSystem
	renderer     ports.Renderer
	sink         ports.DebugSink
	logger       ports.Logger

	now   func() time.Time
	newID func() string
}

// New creates a new Orchestrator.
func New(
	packStage pipeline.Stage[pipeline.PackInput, pipeline.PackResult],
	persistStage pipeline.Stage[pipeline.PersistInput, pipeline.PersistResult],
	unpackStage pipeline.Stage[pipeline.UnpackInput, pipeline.UnpackResult],
	verifyStage pipeline.Stage[pipeline.VerifyInput, pipeline.VerifyResult],
	fs ports.FileSystem,
	renderer ports.Renderer,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		packStage:    packStage,
		persistStage: persistStage,
		unpackStage:  unpackStage,
		verifyStage:  verifyStage,
		fs:           fs,
		renderer:     renderer,
		sink:         sink,
		logger:       logger,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Encode reads the input file, turns it into frames and stores them.
func (o *Orchestrator) Encode(ctx context.Context, config EncodeConfig) (EncodeResult, error) {
	started := o.now()
	result := EncodeResult{RunID: o.newID(), Geometry: config.Geometry}

	o.logger.Info("Reading %s", config.InputPath)
	payload, err := o.fs.ReadFile(config.InputPath)
	if err != nil {
		o.logger.Error("Failed to read input: %v", err)
		return result, fmt.Errorf("read input: %w", err)
	}
	result.PayloadLength = len(payload)
	result.SHA256 = manifest.Digest(payload)

	// 1. Pack
	packed, err := o.packStage.Execute(ctx, pipeline.PackInput{Payload: payload, Compress: config.Compress})
	if err != nil {
		o.logger.Error("Failed to pack payload: %v", err)
		return result, fmt.Errorf("pack stage: %w", err)
	}
	result.FrameCount = len(packed.Frames)
	result.StoredLength = len(packed.Stored)
	result.Compressed = packed.Compressed
	result.Header = packed.Header
	o.logger.Info("Packed %d bytes into %d frames", len(payload), len(packed.Frames))

	// 2. Persist
	persisted, err := o.persistStage.Execute(ctx, pipeline.PersistInput{Target: config.Target, Frames: packed.Frames})
	if err != nil {
		o.logger.Error("Failed to persist frames: %v", err)
		return result, fmt.Errorf("persist stage: %w", err)
	}
	result.Handle = persisted.Handle
	result.DebugFrames = persisted.DebugFrames
	o.logger.Info("Frames stored as %s", persisted.Handle)

	// 3. Manifest
	if config.WriteManifest {
		m := manifest.Manifest{
			Geometry:      config.Geometry,
			HeaderFormat:  packed.Header.Format,
			Compressed:    packed.Compressed,
			FrameCount:    len(packed.Frames),
			PayloadLength: int64(len(payload)),
			SHA256:        result.SHA256,
			StoredLength:  int64(len(packed.Stored)),
			Transport:     config.Transport,
			Codec:         config.Codec,
			RunID:         result.RunID,
			CreatedAt:     started.UTC(),
		}
		if err := o.saveManifest(persisted.Handle, m); err != nil {
			o.logger.Error("Failed to write manifest: %v", err)
			return result, fmt.Errorf("write manifest: %w", err)
		}
		result.ManifestPath = manifest.PathFor(persisted.Handle)
	}

	// 4. Verify
	if config.Verify {
		o.logger.Info("Verifying stored frames")
		if _, err := o.verifyStage.Execute(ctx, pipeline.VerifyInput{Handle: persisted.Handle, Stored: packed.Stored}); err != nil {
			o.logger.Error("Verification failed: %v", err)
			return result, fmt.Errorf("verify stage: %w", err)
		}
		result.Verified = true
	}

	result.Duration = o.now().Sub(started)
	o.logger.Info("Encode completed in %s", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (o *Orchestrator) saveManifest(handle ports.Handle, m manifest.Manifest) error {
	if err := manifest.Save(o.fs, handle, m); err != nil {
		return err
	}
	if o.sink.Enabled() {
		if data, err := manifest.Marshal(m); err == nil {
			if err := o.sink.SaveManifest(data); err != nil {
				o.logger.Warn("Failed to save debug manifest: %v", err)
			}
		}
	}
	return nil
}

// Decode recovers the payload stored under config.Handle and writes it to
// config.OutputPath.
func (o *Orchestrator) Decode(ctx context.Context, config DecodeConfig) (DecodeResult, error) {
	started := o.now()
	result := DecodeResult{RunID: o.newID(), Handle: config.Handle}

	payload, unpacked, err := o.unpack(ctx, config, &result)
	if err != nil {
		return result, err
	}

	o.logger.Info("Writing %d bytes to %s", len(payload), config.OutputPath)
	if err := o.fs.WriteFile(config.OutputPath, payload); err != nil {
		o.logger.Error("Failed to write output: %v", err)
		return result, fmt.Errorf("write output: %w", err)
	}
	result.OutputPath = config.OutputPath
	result.FrameCount = len(unpacked.Frames)

	result.Duration = o.now().Sub(started)
	o.logger.Info("Decode completed in %s", result.Duration.Round(time.Millisecond))
	return result, nil
}

// unpack runs the unpack stage with the manifest cross-checks.
func (o *Orchestrator) unpack(ctx context.Context, config DecodeConfig, result *DecodeResult) ([]byte, pipeline.UnpackResult, error) {
	var m manifest.Manifest
	if !config.IgnoreManifest {
		var ok bool
		var err error
		m, ok, err = manifest.Load(o.fs, config.Handle)
		if err != nil {
			o.logger.Error("Failed to read manifest: %v", err)
			return nil, pipeline.UnpackResult{}, fmt.Errorf("read manifest: %w", err)
		}
		if ok {
			o.logger.Info("Using manifest %s", manifest.PathFor(config.Handle))
			if m.Geometry != config.Geometry {
				return nil, pipeline.UnpackResult{}, fmt.Errorf("%w: manifest %s, configured %s", ErrManifestGeometry, m.Geometry, config.Geometry)
			}
			result.ManifestFound = true
		}
	}

	input := pipeline.UnpackInput{
		Handle:     config.Handle,
		Compressed: config.Compressed || (result.ManifestFound && m.Compressed),
	}
	unpacked, err := o.unpackStage.Execute(ctx, input)
	if err != nil {
		o.logger.Error("Failed to unpack frames: %v", err)
		return nil, unpacked, fmt.Errorf("unpack stage: %w", err)
	}
	result.Header = unpacked.Header
	result.Compressed = unpacked.Compressed
	result.PayloadLength = len(unpacked.Payload)
	o.logger.Info("Unpacked %d bytes from %d frames", len(unpacked.Payload), len(unpacked.Frames))

	if result.ManifestFound {
		if err := m.CheckFrames(len(unpacked.Frames)); err != nil {
			o.logger.Error("Manifest check failed: %v", err)
			return nil, unpacked, err
		}
		if err := m.CheckPayload(unpacked.Payload); err != nil {
			o.logger.Error("Manifest check failed: %v", err)
			return nil, unpacked, err
		}
		result.DigestChecked = true
	}
	return unpacked.Payload, unpacked, nil
}

// Verify decodes config.Handle and compares it with the input file.
func (o *Orchestrator) Verify(ctx context.Context, config VerifyConfig) (VerifyReport, error) {
	started := o.now()
	report := VerifyReport{Handle: config.Handle}

	input, err := o.fs.ReadFile(config.InputPath)
	if err != nil {
		o.logger.Error("Failed to read input: %v", err)
		return report, fmt.Errorf("read input: %w", err)
	}
	report.InputLength = len(input)

	var decoded DecodeResult
	payload, unpacked, err := o.unpack(ctx, config.DecodeConfig, &decoded)
	if err != nil {
		return report, err
	}
	report.FrameCount = len(unpacked.Frames)
	report.PayloadLength = len(payload)
	report.FirstDifference = firstDifference(input, payload)
	report.Duration = o.now().Sub(started)

	if report.FirstDifference >= 0 {
		o.logger.Error("Payload differs from input at offset %d", report.FirstDifference)
		return report, fmt.Errorf("%w: first difference at offset %d", ErrMismatch, report.FirstDifference)
	}
	report.Match = true
	o.logger.Info("Payload matches input (%d bytes)", len(input))
	return report, nil
}

// firstDifference returns the first offset at which a and b differ, or -1.
func firstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

// Inspect decodes config.Handle and reports header and frame statistics.
func (o *Orchestrator) Inspect(ctx context.Context, config InspectConfig) (InspectReport, error) {
	report := InspectReport{Handle: config.Handle, Geometry: config.Geometry}

	m, ok, err := manifest.Load(o.fs, config.Handle)
	if err != nil {
		o.logger.Warn("Ignoring unreadable manifest: %v", err)
	} else if ok {
		report.Manifest = &m
	}

	compressed := report.Manifest != nil && report.Manifest.Compressed
	unpacked, err := o.unpackStage.Execute(ctx, pipeline.UnpackInput{Handle: config.Handle, Compressed: compressed})
	if err != nil {
		o.logger.Error("Failed to unpack frames: %v", err)
		return report, fmt.Errorf("unpack stage: %w", err)
	}

	report.Header = unpacked.Header
	report.FrameCount = len(unpacked.Frames)
	report.PayloadLength = len(unpacked.Payload)
	report.StoredLength = unpacked.StoredLength
	report.Compressed = unpacked.Compressed
	report.Capacity = report.FrameCount * config.Geometry.Capacity()
	report.PaddingBytes = report.Capacity - unpacked.Header.Size() - unpacked.StoredLength
	report.SHA256 = manifest.Digest(unpacked.Payload)

	if config.ContactSheet && o.sink.Enabled() && report.FrameCount > 0 {
		n := report.FrameCount
		if config.MaxSheetFrames > 0 && n > config.MaxSheetFrames {
			n = config.MaxSheetFrames
		}
		images := make([]image.Image, n)
		for i := range images {
			images[i] = unpacked.Frames[i]
		}
		sheet := o.renderer.ContactSheet(images, ports.DefaultContactSheetOptions())
		if err := o.sink.SaveContactSheet(sheet); err != nil {
			o.logger.Warn("Failed to save contact sheet: %v", err)
		} else {
			report.ContactSheetFrames = n
		}
	}

	o.logger.Info("Inspected %s: %d frames, %d bytes", config.Handle, report.FrameCount, report.PayloadLength)
	return report, nil
}
