package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"data2video", "--quiet"}, args...))
	return out.String(), err
}

func TestCLI_FramesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.bin")
	payload := bytes.Repeat([]byte("data2video "), 9000)
	if err := os.WriteFile(input, payload, 0o644); err != nil {
		t.Fatal(err)
	}
	frames := filepath.Join(dir, "frames")
	output := filepath.Join(dir, "output.bin")
	summary := filepath.Join(dir, "summary.md")

	if _, err := run(t, "encode", "-t", "frames", "-s", "64x32", "-z", "--summary", summary, "-o", frames, input); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := os.Stat(frames + ".manifest.cbor"); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
	if data, err := os.ReadFile(summary); err != nil || !strings.Contains(string(data), "64x32") {
		t.Errorf("summary = %q, %v", data, err)
	}

	if _, err := run(t, "decode", "-t", "frames", "-s", "64x32", "-o", output, frames); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("decoded %d bytes, want %d", len(got), len(payload))
	}

	out, err := run(t, "verify", "-t", "frames", "-s", "64x32", input, frames)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(out, "OK") {
		t.Errorf("verify output = %q", out)
	}

	out, err = run(t, "inspect", "-t", "frames", "-s", "64x32", frames)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out, "tagged") {
		t.Errorf("inspect output = %q, want tagged header", out)
	}
}

func TestCLI_VerifyMismatch(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.bin")
	other := filepath.Join(dir, "other.bin")
	if err := os.WriteFile(input, []byte("hello, frames"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(other, []byte("hello, world!"), 0o644); err != nil {
		t.Fatal(err)
	}
	frames := filepath.Join(dir, "frames")

	if _, err := run(t, "encode", "-t", "frames", "-s", "16x16", "-o", frames, input); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := run(t, "verify", "-t", "frames", "-s", "16x16", other, frames)
	if err == nil {
		t.Fatal("verify succeeded for a different file")
	}
	if !strings.Contains(out, "MISMATCH") || !strings.Contains(out, "offset 7") {
		t.Errorf("verify output = %q", out)
	}
}

func TestCLI_ArgumentCount(t *testing.T) {
	if _, err := run(t, "decode", "-o", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("decode without a handle succeeded")
	}
}

func TestCLI_InvalidSize(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.bin")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "encode", "-t", "frames", "-s", "0x10", "-o", filepath.Join(dir, "f"), input); err == nil {
		t.Error("encode accepted a zero width")
	}
}
