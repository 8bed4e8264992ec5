// Package data2video provides a high-level API for configuring payload to
// frame conversions.
package data2video

import (
	"fmt"
	"strings"

	"github.com/One-eyed-warrior/data2video/pkg/adapters/ffmpegencoder"
	"github.com/One-eyed-warrior/data2video/pkg/config"
	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/orchestrator"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// Preset names a frame geometry.
type Preset string

const (
	PresetOriginal Preset = "original"
	PresetHD       Preset = "hd"
	PresetFullHD   Preset = "fullhd"
)

// Presets lists the known presets in display order.
var Presets = []Preset{PresetOriginal, PresetHD, PresetFullHD}

// Geometry returns the frame size of the preset.
func (p Preset) Geometry() (framecodec.Geometry, error) {
	switch Preset(strings.ToLower(string(p))) {
	case "", PresetOriginal:
		return framecodec.DefaultGeometry(), nil
	case PresetHD:
		return framecodec.Geometry{Width: 1280, Height: 720}, nil
	case PresetFullHD:
		return framecodec.Geometry{Width: 1920, Height: 1080}, nil
	default:
		return framecodec.Geometry{}, fmt.Errorf("unknown preset: %q", p)
	}
}

// Config represents a resolved data2video configuration.
type Config struct {
	Preset   Preset
	Geometry framecodec.Geometry
	Header   framecodec.HeaderFormat
	Compress bool
	Workers  int // frame building goroutines (0 = NumCPU)

	Verify   bool // read back and compare after persisting
	Manifest bool // write <handle>.manifest.cbor

	// Transport
	Transport   string
	Codec       ffmpegencoder.Codec
	FPS         float64
	Threads     int
	ImageFormat ports.ImageFormat
	IndexWidth  int
	RelayURL    string
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
	err    error
}

// NewConfigBuilder creates a ConfigBuilder with the original 192x108 preset.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: defaults()}
}

// NewPresetConfigBuilder creates a ConfigBuilder for the named preset.
func NewPresetConfigBuilder(preset Preset) *ConfigBuilder {
	return NewConfigBuilder().WithPreset(preset)
}

func defaults() Config {
	return Config{
		Preset:   PresetOriginal,
		Geometry: framecodec.DefaultGeometry(),
		Header:   framecodec.HeaderTagged,

		Verify:   true,
		Manifest: true,

		Transport:   config.TransportVideo,
		Codec:       ffmpegencoder.CodecFFV1,
		FPS:         1,
		ImageFormat: ports.FormatPNG,
		IndexWidth:  5,
	}
}

// Build returns the final Config, or the first error recorded by a With
// call or by validation.
func (b *ConfigBuilder) Build() (Config, error) {
	if b.err != nil {
		return Config{}, b.err
	}
	cfg := b.config
	if err := cfg.Geometry.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.Header == framecodec.HeaderTagged && (cfg.Geometry.Width > 65535 || cfg.Geometry.Height > 65535) {
		return Config{}, fmt.Errorf("%w: %s exceeds tagged header limit", framecodec.ErrInvalidGeometry, cfg.Geometry)
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 1
	}
	if cfg.Workers < 0 {
		cfg.Workers = 0
	}
	return cfg, nil
}

func (b *ConfigBuilder) fail(err error) *ConfigBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// WithPreset sets the geometry from a preset.
func (b *ConfigBuilder) WithPreset(preset Preset) *ConfigBuilder {
	g, err := preset.Geometry()
	if err != nil {
		return b.fail(err)
	}
	b.config.Preset = preset
	b.config.Geometry = g
	return b
}

// WithGeometry sets an explicit frame size.
func (b *ConfigBuilder) WithGeometry(g framecodec.Geometry) *ConfigBuilder {
	b.config.Geometry = g
	return b
}

// WithHeader sets the header format written by the encoder.
func (b *ConfigBuilder) WithHeader(format framecodec.HeaderFormat) *ConfigBuilder {
	b.config.Header = format
	return b
}

// WithCompress enables zstd compression of the payload.
func (b *ConfigBuilder) WithCompress(compress bool) *ConfigBuilder {
	b.config.Compress = compress
	return b
}

// WithWorkers sets the number of frame building goroutines.
func (b *ConfigBuilder) WithWorkers(n int) *ConfigBuilder {
	b.config.Workers = n
	return b
}

// WithVerify enables the read-back check after persisting.
func (b *ConfigBuilder) WithVerify(verify bool) *ConfigBuilder {
	b.config.Verify = verify
	return b
}

// WithManifest enables the sidecar manifest.
func (b *ConfigBuilder) WithManifest(manifest bool) *ConfigBuilder {
	b.config.Manifest = manifest
	return b
}

// WithVideoTransport stores frames as a lossless video.
func (b *ConfigBuilder) WithVideoTransport(codec string, fps float64) *ConfigBuilder {
	c, err := ffmpegencoder.ParseCodec(codec)
	if err != nil {
		return b.fail(err)
	}
	b.config.Transport = config.TransportVideo
	b.config.Codec = c
	b.config.FPS = fps
	return b
}

// WithThreads sets the ffmpeg thread count (0 = ffmpeg default).
func (b *ConfigBuilder) WithThreads(n int) *ConfigBuilder {
	b.config.Threads = n
	return b
}

// WithFrameTransport stores frames as numbered image files.
func (b *ConfigBuilder) WithFrameTransport(format ports.ImageFormat, indexWidth int) *ConfigBuilder {
	b.config.Transport = config.TransportFrames
	return b.WithFrameFiles(format, indexWidth)
}

// WithFrameFiles sets the file format and index width of frame directories
// without selecting the transport. The relay server stores into one.
func (b *ConfigBuilder) WithFrameFiles(format ports.ImageFormat, indexWidth int) *ConfigBuilder {
	if indexWidth < 0 || indexWidth > 18 {
		return b.fail(fmt.Errorf("%w: index width %d out of range", config.ErrInvalid, indexWidth))
	}
	b.config.ImageFormat = format
	b.config.IndexWidth = indexWidth
	return b
}

// WithRelayTransport sends frames to a websocket relay.
func (b *ConfigBuilder) WithRelayTransport(url string) *ConfigBuilder {
	b.config.Transport = config.TransportRelay
	b.config.RelayURL = url
	return b
}

// Apply overlays a configuration file. Keys that only the file knows about
// (debug, logging) are left to the caller.
func (b *ConfigBuilder) Apply(c config.Config) *ConfigBuilder {
	if err := c.Validate(); err != nil {
		return b.fail(err)
	}

	if c.Preset != "" {
		b.WithPreset(Preset(c.Preset))
	}
	if g, ok := c.Geometry(); ok {
		b.WithGeometry(g)
	}

	header, _ := framecodec.ParseHeaderFormat(c.Header)
	b.WithHeader(header).
		WithCompress(c.Compress).
		WithWorkers(c.Workers).
		WithVerify(c.Verify).
		WithManifest(c.Manifest).
		WithThreads(c.Transport.Threads)

	if format, err := ports.ParseImageFormat(c.Transport.ImageFormat); err == nil {
		b.WithFrameFiles(format, c.Transport.IndexWidth)
	} else {
		b.fail(fmt.Errorf("%w: %v", config.ErrInvalid, err))
	}

	switch c.Transport.Kind {
	case config.TransportVideo:
		b.WithVideoTransport(c.Transport.Codec, c.Transport.FPS)
	case config.TransportFrames:
		b.config.Transport = config.TransportFrames
	case config.TransportRelay:
		b.WithRelayTransport(c.Transport.RelayURL)
	}
	return b
}

// EncoderOptions returns the frame encoder options.
func (c Config) EncoderOptions() framecodec.EncoderOptions {
	return framecodec.EncoderOptions{Header: c.Header, Workers: c.Workers}
}

// CodecName returns the codec recorded in manifests, empty for non-video
// transports.
func (c Config) CodecName() string {
	if c.Transport != config.TransportVideo {
		return ""
	}
	return string(c.Codec)
}

// ToEncodeConfig converts Config to orchestrator.EncodeConfig.
func (c Config) ToEncodeConfig(inputPath, target string) orchestrator.EncodeConfig {
	return orchestrator.EncodeConfig{
		InputPath:     inputPath,
		Target:        target,
		Geometry:      c.Geometry,
		Compress:      c.Compress,
		Verify:        c.Verify,
		WriteManifest: c.Manifest,
		Transport:     c.Transport,
		Codec:         c.CodecName(),
	}
}

// ToDecodeConfig converts Config to orchestrator.DecodeConfig. Compress
// forces decompression for sequences without a manifest.
func (c Config) ToDecodeConfig(handle ports.Handle, outputPath string) orchestrator.DecodeConfig {
	return orchestrator.DecodeConfig{
		Handle:         handle,
		OutputPath:     outputPath,
		Geometry:       c.Geometry,
		Compressed:     c.Compress,
		IgnoreManifest: !c.Manifest,
	}
}
