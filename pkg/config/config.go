// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/One-eyed-warrior/data2video/pkg/adapters/ffmpegencoder"
	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// Transport kinds.
const (
	TransportVideo  = "video"
	TransportFrames = "frames"
	TransportRelay  = "relay"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid configuration")

// Config represents the full configuration file.
type Config struct {
	// Geometry. Width and Height of zero keep the preset's frame size.
	Preset string `yaml:"preset"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`

	// Codec
	Header   string `yaml:"header"`
	Compress bool   `yaml:"compress"`
	Workers  int    `yaml:"workers"`

	// Safety
	Verify   bool `yaml:"verify"`
	Manifest bool `yaml:"manifest"`

	Transport TransportConfig `yaml:"transport"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`

	LogLevel string `yaml:"log_level"`
	FFmpeg   string `yaml:"ffmpeg"`
}

// TransportConfig selects and tunes the frame transport.
type TransportConfig struct {
	Kind string `yaml:"kind"`

	// Video
	Codec   string  `yaml:"codec"`
	FPS     float64 `yaml:"fps"`
	Threads int     `yaml:"threads"`

	// Frame directory
	ImageFormat string `yaml:"image_format"`
	IndexWidth  int    `yaml:"index_width"`

	// Relay
	RelayURL string `yaml:"relay_url"`
	Listen   string `yaml:"listen"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Preset: "original",

		Header:  "tagged",
		Workers: 0,

		Verify:   true,
		Manifest: true,

		Transport: TransportConfig{
			Kind:        TransportVideo,
			Codec:       string(ffmpegencoder.CodecFFV1),
			FPS:         1,
			ImageFormat: "png",
			IndexWidth:  5,
			Listen:      "127.0.0.1:8765",
		},

		DebugDir: "./debug",
		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Geometry returns the configured frame size, or false when the preset
// decides it.
func (c Config) Geometry() (framecodec.Geometry, bool) {
	if c.Width == 0 && c.Height == 0 {
		return framecodec.Geometry{}, false
	}
	return framecodec.Geometry{Width: c.Width, Height: c.Height}, true
}

// Validate checks field ranges and names.
func (c Config) Validate() error {
	if g, ok := c.Geometry(); ok {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if _, err := framecodec.ParseHeaderFormat(c.Header); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error", "quiet":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.LogLevel)
	}

	return c.Transport.Validate()
}

// Validate checks the transport section.
func (t TransportConfig) Validate() error {
	switch t.Kind {
	case TransportVideo:
		if _, err := ffmpegencoder.ParseCodec(t.Codec); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if t.FPS <= 0 {
			return fmt.Errorf("%w: fps must be positive", ErrInvalid)
		}
		if t.Threads < 0 {
			return fmt.Errorf("%w: threads must not be negative", ErrInvalid)
		}
	case TransportFrames:
		if _, err := ports.ParseImageFormat(t.ImageFormat); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if t.IndexWidth < 0 || t.IndexWidth > 18 {
			return fmt.Errorf("%w: index_width must be between 0 and 18", ErrInvalid)
		}
	case TransportRelay:
		if t.RelayURL == "" {
			return fmt.Errorf("%w: relay transport needs relay_url", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalid, t.Kind)
	}
	return nil
}
