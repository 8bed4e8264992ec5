package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestLoadEnv_FrameFilesFromConfigForRelay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data2video.yaml")
	yaml := "transport:\n  kind: video\n  image_format: bmp\n  index_width: 3\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	set := flag.NewFlagSet("relay", flag.ContinueOnError)
	set.String("config", "", "")
	set.Bool("quiet", false, "")
	if err := set.Parse([]string{"--config", path, "--quiet"}); err != nil {
		t.Fatal(err)
	}

	e, err := loadEnv(cli.NewContext(newApp(), set, nil))
	if err != nil {
		t.Fatalf("loadEnv: %v", err)
	}
	if got := e.frameStore().FileName(7); got != "frame_007.bmp" {
		t.Errorf("FileName(7) = %q, want frame_007.bmp", got)
	}
}
