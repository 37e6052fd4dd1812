package main

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCommandPrintsEffectiveConfig(t *testing.T) {
	out, err := execute(t, "config", "--window-size", "2048", "--max-bars", "0")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if !strings.Contains(out, "window_size: 2048") {
		t.Fatalf("expected flag override in output:\n%s", out)
	}
	if !strings.Contains(out, "max_bars: 256") || !strings.Contains(out, "# notice: max spectrum bars") {
		t.Fatalf("expected substituted default with notice:\n%s", out)
	}
}

func TestConfigCommandReadsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "specvid.yaml")
	writeFile(t, file, "render:\n  width: 640\n")
	out, err := execute(t, "config", "--config", file)
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	if !strings.Contains(out, "width: 640") {
		t.Fatalf("expected width from file:\n%s", out)
	}
}

func TestRenderRunsToCompletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")
	data := make([]int, 8000)
	for i := range data {
		data[i] = int(10000 * math.Sin(2*math.Pi*440*float64(i)/8000))
	}
	writeWAV(t, path, 8000, data)

	out, err := execute(t, "render", path,
		"--save-images=false",
		"--window-size", "256",
		"--output-dir", filepath.Join(dir, "frames"),
		"--ffmpeg", filepath.Join(dir, "no-ffmpeg"),
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("render error = %v\n%s", err, out)
	}
	for _, want := range []string{"tone  Total: 1.00 sec", "Current: 0.97 sec", "rendered 9 frames"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "video saved") {
		t.Fatalf("expected no export without saving:\n%s", out)
	}
}

func TestRenderReportsBadFiles(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.wav")
	writeFile(t, bad, "RIFX....")

	out, err := execute(t, "render", bad, "--save-images=false", "--log-level", "error")
	if err == nil {
		t.Fatalf("expected failure, got output:\n%s", out)
	}
	if !strings.Contains(out, "broken.wav: not a recognized container") {
		t.Fatalf("expected per-file error line:\n%s", out)
	}
}

func TestRenderNeedsPlayableInput(t *testing.T) {
	if _, err := execute(t, "render", filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error when nothing is playable")
	}
}
