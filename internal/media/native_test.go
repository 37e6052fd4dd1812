package media

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-audio/wav"
)

func readFixture(t *testing.T, path string) (*wav.Decoder, []int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return dec, buf.Data
}

func TestToWAVDownmixesDeepStereo(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.wav")
	dst := filepath.Join(dir, "out.wav")
	// interleaved L/R, 24-bit
	writeFixture(t, src, 22050, 24, 2, []int{
		1 << 16, 5,
		-(1 << 20), 5,
		8388607, 5,
	})

	if err := ToWAV(src, dst); err != nil {
		t.Fatalf("ToWAV() error = %v", err)
	}

	dec, data := readFixture(t, dst)
	if dec.NumChans != 1 || dec.BitDepth != 16 || dec.SampleRate != 22050 {
		t.Fatalf("expected 16-bit mono at 22050, got %d ch %d bit %d Hz", dec.NumChans, dec.BitDepth, dec.SampleRate)
	}
	if want := []int{256, -4096, 32767}; !reflect.DeepEqual(data, want) {
		t.Fatalf("expected first channel %v, got %v", want, data)
	}
	if NeedsTranscode(dst) {
		t.Fatal("expected converted file to be readable directly")
	}
}

func TestToWAVUnsupported(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.m4a")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := ToWAV(src, filepath.Join(dir, "out.wav"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestToWAVMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := ToWAV(filepath.Join(dir, "gone.mp3"), filepath.Join(dir, "out.wav")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestTo16(t *testing.T) {
	cases := []struct{ v, bps, want int }{
		{1 << 8, 24, 1},
		{100, 16, 100},
		{-1, 8, -256},
		{1 << 30, 32, 1 << 14},
		{40000, 16, 32767},
	}
	for _, c := range cases {
		if got := to16(c.v, c.bps); got != c.want {
			t.Fatalf("to16(%d, %d) = %d, want %d", c.v, c.bps, got, c.want)
		}
	}
	if floatTo16(2) != 32767 || floatTo16(-2) != -32768 {
		t.Fatal("expected float samples to clamp")
	}
}
