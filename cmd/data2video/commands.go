package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/One-eyed-warrior/data2video/pkg/adapters/filesink"
	"github.com/One-eyed-warrior/data2video/pkg/adapters/wsrelay"
	"github.com/One-eyed-warrior/data2video/pkg/orchestrator"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
	"github.com/One-eyed-warrior/data2video/pkg/summarizer"
)

var errUsage = errors.New("wrong number of arguments")

func args(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("%w: %s %s", errUsage, c.Command.Name, c.Command.ArgsUsage)
	}
	return nil
}

func setup(c *cli.Context) (*env, *orchestrator.Orchestrator, error) {
	e, err := loadEnv(c)
	if err != nil {
		return nil, nil, err
	}
	transport, err := e.transport()
	if err != nil {
		return nil, nil, err
	}
	orch, err := e.orchestrator(transport)
	if err != nil {
		return nil, nil, err
	}
	return e, orch, nil
}

func runEncode(c *cli.Context) error {
	if err := args(c, 1); err != nil {
		return err
	}
	e, orch, err := setup(c)
	if err != nil {
		return err
	}

	input, output := c.Args().First(), c.String("output")
	e.log.Info("Encoding %s into %s (%s)", input, output, e.cfg.Geometry)

	result, err := orch.Encode(c.Context, e.cfg.ToEncodeConfig(input, output))
	if err != nil {
		return err
	}
	e.log.Info("Stored %d bytes in %d frames at %s", result.PayloadLength, result.FrameCount, result.Handle)

	if path := c.String("summary"); path != "" {
		s := summarizer.NewBuilder("encode").
			WithRun(summarizer.RunInfo{ID: result.RunID, Input: input, Handle: string(result.Handle), Duration: result.Duration}).
			WithPayload(summarizer.PayloadInfo{
				Length:       int64(result.PayloadLength),
				StoredLength: int64(result.StoredLength),
				Compressed:   result.Compressed,
				SHA256:       hex.EncodeToString(result.SHA256),
			}).
			WithFrames(summarizer.FrameInfo{
				Width:  result.Geometry.Width,
				Height: result.Geometry.Height,
				Count:  result.FrameCount,
				Header: result.Header.Format.String(),
			}).
			WithTransport(summarizer.TransportInfo{Kind: e.cfg.Transport, Codec: e.cfg.CodecName(), FPS: fpsOf(e)}).
			WithChecks(summarizer.CheckInfo{Verified: result.Verified, ManifestPath: result.ManifestPath}).
			Build()
		if err := writeSummary(e, path, s); err != nil {
			return err
		}
	}
	return nil
}

func runDecode(c *cli.Context) error {
	if err := args(c, 1); err != nil {
		return err
	}
	e, orch, err := setup(c)
	if err != nil {
		return err
	}

	handle, output := ports.Handle(c.Args().First()), c.String("output")
	e.log.Info("Decoding %s into %s", handle, output)

	result, err := orch.Decode(c.Context, e.cfg.ToDecodeConfig(handle, output))
	if err != nil {
		return err
	}
	e.log.Info("Restored %d bytes from %d frames", result.PayloadLength, result.FrameCount)

	if path := c.String("summary"); path != "" {
		s := summarizer.NewBuilder("decode").
			WithRun(summarizer.RunInfo{ID: result.RunID, Handle: string(handle), Output: output, Duration: result.Duration}).
			WithPayload(summarizer.PayloadInfo{Length: int64(result.PayloadLength), Compressed: result.Compressed}).
			WithFrames(summarizer.FrameInfo{
				Width:  e.cfg.Geometry.Width,
				Height: e.cfg.Geometry.Height,
				Count:  result.FrameCount,
				Header: result.Header.Format.String(),
			}).
			WithTransport(summarizer.TransportInfo{Kind: e.cfg.Transport, Codec: e.cfg.CodecName(), FPS: fpsOf(e)}).
			WithChecks(summarizer.CheckInfo{DigestChecked: result.DigestChecked}).
			Build()
		if err := writeSummary(e, path, s); err != nil {
			return err
		}
	}
	return nil
}

func runVerify(c *cli.Context) error {
	if err := args(c, 2); err != nil {
		return err
	}
	e, orch, err := setup(c)
	if err != nil {
		return err
	}

	input, handle := c.Args().Get(0), ports.Handle(c.Args().Get(1))
	report, err := orch.Verify(c.Context, orchestrator.VerifyConfig{
		InputPath:    input,
		DecodeConfig: e.cfg.ToDecodeConfig(handle, ""),
	})
	if err != nil {
		if errors.Is(err, orchestrator.ErrMismatch) {
			fmt.Fprintln(c.App.Writer, l10n.F("MISMATCH: %s differs from %s at offset %d (%d vs %d bytes)",
				handle, input, report.FirstDifference, report.PayloadLength, report.InputLength))
		}
		return err
	}
	fmt.Fprintln(c.App.Writer, l10n.F("OK: %s matches %s (%d bytes, %d frames)", handle, input, report.InputLength, report.FrameCount))
	return nil
}

func runInspect(c *cli.Context) error {
	if err := args(c, 1); err != nil {
		return err
	}
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	sheetDir := c.String("contact-sheet")
	if sheetDir != "" {
		if err := e.fs.MkdirAll(sheetDir); err != nil {
			return err
		}
		e.sink = filesink.New(sheetDir, e.fs, e.renderer)
	}
	transport, err := e.transport()
	if err != nil {
		return err
	}
	orch, err := e.orchestrator(transport)
	if err != nil {
		return err
	}

	handle := ports.Handle(c.Args().First())
	report, err := orch.Inspect(c.Context, orchestrator.InspectConfig{
		Handle:         handle,
		Geometry:       e.cfg.Geometry,
		ContactSheet:   sheetDir != "",
		MaxSheetFrames: c.Int("sheet-frames"),
	})
	if err != nil {
		return err
	}
	printReport(c, report)
	return nil
}

func printReport(c *cli.Context, r orchestrator.InspectReport) {
	w := c.App.Writer
	row := func(label string, value interface{}) {
		fmt.Fprintf(w, "%-18s %v\n", l10n.T(label)+":", value)
	}
	row("Handle", r.Handle)
	row("Frame Size", r.Geometry)
	row("Header", r.Header.Format)
	row("Frame Count", r.FrameCount)
	row("Payload Size", r.PayloadLength)
	row("Stored Size", r.StoredLength)
	row("Compressed", yesNo(r.Compressed))
	row("Capacity", r.Capacity)
	row("Padding", r.PaddingBytes)
	row("Utilization", fmt.Sprintf("%.1f%%", r.Utilization()*100))
	row("SHA-256", hex.EncodeToString(r.SHA256))
	if m := r.Manifest; m != nil {
		row("Manifest", m.RunID)
		row("Created", m.CreatedAt.Format(time.RFC3339))
		if m.Transport != "" {
			row("Transport", m.Transport)
		}
		if m.Codec != "" {
			row("Codec", m.Codec)
		}
	} else {
		row("Manifest", l10n.T("none"))
	}
	if r.ContactSheetFrames > 0 {
		row("Contact Sheet", l10n.F("%d frames", r.ContactSheetFrames))
	}
}

func yesNo(v bool) string {
	if v {
		return l10n.T("Yes")
	}
	return l10n.T("No")
}

func runRelay(c *cli.Context) error {
	e, err := loadEnv(c)
	if err != nil {
		return err
	}
	store := c.String("store")
	if err := e.fs.MkdirAll(store); err != nil {
		return err
	}

	relay := wsrelay.NewServer(e.frameStore(), e.log)
	relay.TargetFunc = func(id string) string { return filepath.Join(store, id) }

	srv := &http.Server{
		Addr:              e.file.Transport.Listen,
		Handler:           relay,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	e.log.Info("Relay listening on %s, storing into %s", srv.Addr, store)

	select {
	case err := <-errCh:
		return err
	case <-c.Context.Done():
	}

	e.log.Info("Interrupted, shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func fpsOf(e *env) float64 {
	if e.cfg.CodecName() == "" {
		return 0
	}
	return e.cfg.FPS
}

func writeSummary(e *env, path string, s *summarizer.Summary) error {
	formatter := summarizer.NewMarkdownFormatter(summarizer.WithVersion(version))
	if err := summarizer.NewWriter(formatter, e.fs).Write(path, s); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	e.log.Info("Summary saved to %s", path)
	return nil
}
