// Package main provides the CLI entry point for data2video.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
)

var version = "dev"

// Flag categories.
const (
	catFrames    = "Frames"
	catTransport = "Transport"
	catSafety    = "Safety"
	catDebug     = "Debug"
	catLogging   = "Logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %s", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "data2video",
		Usage:    l10n.T("Store arbitrary files as lossless RGB video frames"),
		Version:  version,
		Flags:    globalFlags(),
		Commands: []*cli.Command{encodeCommand(), decodeCommand(), verifyCommand(), inspectCommand(), relayCommand()},
		Description: l10n.T("data2video packs any file into fixed-size RGB frames, stores them as a lossless video, " +
			"an image sequence or on a websocket relay, and restores the exact bytes."),
		EnableBashCompletion: true,
	}
}

// globalFlags are shared by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), EnvVars: []string{"DATA2VIDEO_CONFIG"}},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T(catLogging)},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T(catLogging)},
		&cli.StringFlag{Name: "ffmpeg", Usage: l10n.T("Path to ffmpeg executable (falls back to FFMPEG_PATH, then PATH)"), Category: l10n.T(catTransport)},
	}
}

// codecFlags select the frame layout.
func codecFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: l10n.T("Frame size preset (original, hd, fullhd)"), Category: l10n.T(catFrames)},
		&cli.StringFlag{Name: "size", Aliases: []string{"s"}, Usage: l10n.T("Frame size as WIDTHxHEIGHT (overrides preset)"), Category: l10n.T(catFrames)},
		&cli.StringFlag{Name: "header", Usage: l10n.T("Header format (auto, length, tagged)"), Category: l10n.T(catFrames)},
		&cli.BoolFlag{Name: "compress", Aliases: []string{"z"}, Usage: l10n.T("Compress the payload with zstd before framing"), Category: l10n.T(catFrames)},
		&cli.IntFlag{Name: "workers", Usage: l10n.T("Frame building goroutines (0 = number of CPUs)"), Category: l10n.T(catFrames)},
	}
}

// transportFlags select where frames are stored.
func transportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "transport", Aliases: []string{"t"}, Usage: l10n.T("Frame transport (video, frames, relay)"), Category: l10n.T(catTransport)},
		&cli.StringFlag{Name: "codec", Usage: l10n.T("Lossless video codec (ffv1, x264rgb)"), Category: l10n.T(catTransport)},
		&cli.Float64Flag{Name: "fps", Usage: l10n.T("Video frame rate"), Category: l10n.T(catTransport)},
		&cli.IntFlag{Name: "threads", Usage: l10n.T("ffmpeg encoder threads (0 = ffmpeg default)"), Category: l10n.T(catTransport)},
		&cli.StringFlag{Name: "image-format", Usage: l10n.T("Frame image format (png, bmp, tiff)"), Category: l10n.T(catTransport)},
		&cli.IntFlag{Name: "index-width", Usage: l10n.T("Digits in frame file names (0 = unpadded)"), Category: l10n.T(catTransport)},
		&cli.StringFlag{Name: "relay", Usage: l10n.T("Relay websocket URL (ws://host:port/)"), Category: l10n.T(catTransport)},
	}
}

// outputFlags control safety checks and debug output.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "no-manifest", Usage: l10n.T("Do not write or read the sidecar manifest"), Category: l10n.T(catSafety)},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)"), Category: l10n.T(catDebug)},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T(catDebug)},
		&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T(catDebug)},
	}
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     l10n.T("Encode a file into frames"),
		ArgsUsage: "<input>",
		Flags: concat(
			[]cli.Flag{&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output video file or frame directory (required)")}},
			codecFlags(), transportFlags(), outputFlags(),
			[]cli.Flag{&cli.BoolFlag{Name: "no-verify", Usage: l10n.T("Skip reading the frames back after storing them"), Category: l10n.T(catSafety)}},
		),
		Action: runEncode,
	}
}

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     l10n.T("Decode frames back into the original file"),
		ArgsUsage: "<handle>",
		Flags: concat(
			[]cli.Flag{&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output file path (required)")}},
			codecFlags(), transportFlags(), outputFlags(),
		),
		Action: runDecode,
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     l10n.T("Check that stored frames decode to a file"),
		ArgsUsage: "<input> <handle>",
		Flags:     concat(codecFlags(), transportFlags(), outputFlags()),
		Action:    runVerify,
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     l10n.T("Show header and frame statistics of stored frames"),
		ArgsUsage: "<handle>",
		Flags: concat(
			codecFlags(), transportFlags(),
			[]cli.Flag{
				&cli.StringFlag{Name: "contact-sheet", Usage: l10n.T("Directory to save a contact sheet PNG into"), Category: l10n.T(catDebug)},
				&cli.IntFlag{Name: "sheet-frames", Value: 60, Usage: l10n.T("Maximum frames on the contact sheet"), Category: l10n.T(catDebug)},
			},
		),
		Action: runInspect,
	}
}

func relayCommand() *cli.Command {
	return &cli.Command{
		Name:  "relay",
		Usage: l10n.T("Serve the websocket frame relay"),
		Flags: concat(
			[]cli.Flag{
				&cli.StringFlag{Name: "listen", Usage: l10n.T("Address to listen on"), Category: l10n.T(catTransport)},
				&cli.StringFlag{Name: "store", Value: "relay-store", Usage: l10n.T("Directory for relayed frame sequences"), Category: l10n.T(catTransport)},
				&cli.StringFlag{Name: "image-format", Usage: l10n.T("Frame image format (png, bmp, tiff)"), Category: l10n.T(catTransport)},
				&cli.IntFlag{Name: "index-width", Usage: l10n.T("Digits in frame file names (0 = unpadded)"), Category: l10n.T(catTransport)},
			},
			codecFlags(),
		),
		Action: runRelay,
	}
}
