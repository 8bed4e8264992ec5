package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/One-eyed-warrior/data2video/pkg/adapters/ffmpegdecoder"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/ffmpegencoder"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/filesink"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/framestore"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/ggrenderer"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/logger"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/nullsink"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/osfilesystem"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/videotransport"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/wsrelay"
	"github.com/One-eyed-warrior/data2video/pkg/config"
	"github.com/One-eyed-warrior/data2video/pkg/data2video"
	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/orchestrator"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
	"github.com/One-eyed-warrior/data2video/pkg/stages/pack"
	"github.com/One-eyed-warrior/data2video/pkg/stages/persist"
	"github.com/One-eyed-warrior/data2video/pkg/stages/unpack"
	"github.com/One-eyed-warrior/data2video/pkg/stages/verify"
)

// env holds everything a command needs.
type env struct {
	file     config.Config
	cfg      data2video.Config
	log      ports.Logger
	fs       *osfilesystem.FileSystem
	renderer *ggrenderer.Renderer
	sink     ports.DebugSink
	debugDir string
}

// loadEnv resolves the configuration: preset, then file, then flags.
func loadEnv(c *cli.Context) (*env, error) {
	file := config.Defaults()
	if path := c.String("config"); path != "" {
		var err error
		if file, err = config.LoadFromFile(path); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	overrideFile(c, &file)
	if err := file.Validate(); err != nil {
		return nil, err
	}

	builder := data2video.NewConfigBuilder().Apply(file)
	if c.IsSet("size") {
		g, err := framecodec.ParseGeometry(c.String("size"))
		if err != nil {
			return nil, err
		}
		builder.WithGeometry(g)
	}
	cfg, err := builder.Build()
	if err != nil {
		return nil, err
	}

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(file.LogLevel))
	}

	if file.FFmpeg != "" {
		ffmpegencoder.SetFFmpegPath(file.FFmpeg)
	}

	e := &env{
		file:     file,
		cfg:      cfg,
		log:      log,
		fs:       osfilesystem.New(),
		renderer: ggrenderer.New(),
		sink:     nullsink.New(),
		debugDir: file.DebugDir,
	}
	if file.Debug {
		if err := e.fs.MkdirAll(file.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		e.sink = filesink.New(file.DebugDir, e.fs, e.renderer)
	}
	return e, nil
}

// overrideFile copies explicitly given flags over the file configuration.
func overrideFile(c *cli.Context, f *config.Config) {
	if c.IsSet("preset") {
		f.Preset = c.String("preset")
		f.Width, f.Height = 0, 0
	}
	if c.IsSet("header") {
		f.Header = c.String("header")
	}
	if c.IsSet("compress") {
		f.Compress = c.Bool("compress")
	}
	if c.IsSet("workers") {
		f.Workers = c.Int("workers")
	}
	if c.IsSet("no-verify") {
		f.Verify = !c.Bool("no-verify")
	}
	if c.IsSet("no-manifest") {
		f.Manifest = !c.Bool("no-manifest")
	}
	if c.IsSet("transport") {
		f.Transport.Kind = c.String("transport")
	}
	if c.IsSet("codec") {
		f.Transport.Codec = c.String("codec")
	}
	if c.IsSet("fps") {
		f.Transport.FPS = c.Float64("fps")
	}
	if c.IsSet("threads") {
		f.Transport.Threads = c.Int("threads")
	}
	if c.IsSet("image-format") {
		f.Transport.ImageFormat = c.String("image-format")
	}
	if c.IsSet("index-width") {
		f.Transport.IndexWidth = c.Int("index-width")
	}
	if c.IsSet("relay") {
		f.Transport.RelayURL = c.String("relay")
		if !c.IsSet("transport") {
			f.Transport.Kind = config.TransportRelay
		}
	}
	if c.IsSet("listen") {
		f.Transport.Listen = c.String("listen")
	}
	if c.IsSet("debug") {
		f.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		f.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("log-level") {
		f.LogLevel = c.String("log-level")
	}
	if c.IsSet("ffmpeg") {
		f.FFmpeg = c.String("ffmpeg")
	}
}

// transport builds the configured frame transport.
func (e *env) transport() (ports.FrameTransport, error) {
	switch e.cfg.Transport {
	case config.TransportFrames:
		return e.frameStore(), nil
	case config.TransportRelay:
		return wsrelay.NewClient(e.cfg.RelayURL, e.cfg.Geometry, e.log), nil
	default:
		if !ffmpegencoder.IsFFmpegAvailable() {
			return nil, ffmpegencoder.ErrFFmpegNotFound
		}
		t, err := videotransport.New(ffmpegencoder.New(), ffmpegdecoder.New(), e.fs, e.log, videotransport.Options{
			Geometry: e.cfg.Geometry,
			Codec:    string(e.cfg.Codec),
			FPS:      e.cfg.FPS,
			Threads:  e.cfg.Threads,
		})
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}

func (e *env) frameStore() *framestore.Store {
	return framestore.New(e.fs, e.renderer, e.log, framestore.Options{
		Format:     e.cfg.ImageFormat,
		IndexWidth: e.cfg.IndexWidth,
		Workers:    e.cfg.Workers,
	})
}

// orchestrator wires the stages around transport.
func (e *env) orchestrator(transport ports.FrameTransport) (*orchestrator.Orchestrator, error) {
	packStage, err := pack.New(e.cfg.Geometry, e.cfg.EncoderOptions(), e.log)
	if err != nil {
		return nil, err
	}
	// Decoders always detect the header so either format can be read back.
	dec, err := framecodec.NewDecoder(e.cfg.Geometry, framecodec.DecoderOptions{Header: framecodec.HeaderAuto})
	if err != nil {
		return nil, err
	}

	return orchestrator.New(
		packStage,
		persist.New(transport, e.renderer, e.sink, e.log),
		unpack.New(transport, dec, e.log),
		verify.New(transport, dec, e.log),
		e.fs,
		e.renderer,
		e.sink,
		e.log,
	), nil
}
