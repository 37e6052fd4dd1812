package render

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFrameName(t *testing.T) {
	if got := FrameName(0); got != "00000000.png" {
		t.Fatalf("expected 00000000.png, got %q", got)
	}
	if got := FrameName(1234); got != "00001234.png" {
		t.Fatalf("expected 00001234.png, got %q", got)
	}
}

func TestDirStorePrepareClearsPNGs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"00000001.png", "00000002.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := DirStore{Dir: dir}
	if errs := s.Prepare(); len(errs) != 0 {
		t.Fatalf("Prepare() errors = %v", errs)
	}
	if n, _ := s.Count(); n != 0 {
		t.Fatalf("expected no PNGs left, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Fatalf("expected non-PNG file to survive: %v", err)
	}
}

func TestDirStorePrepareCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if errs := (DirStore{Dir: dir}).Prepare(); len(errs) != 0 {
		t.Fatalf("Prepare() errors = %v", errs)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory to exist, err = %v", err)
	}
}

func TestDirStorePrepareReportsEachDeleteFailure(t *testing.T) {
	orig := storeRemove
	defer func() { storeRemove = orig }()
	storeRemove = func(string) error { return errors.New("busy") }

	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	errs := DirStore{Dir: dir}.Prepare()
	if len(errs) != 2 {
		t.Fatalf("expected 2 delete errors, got %v", errs)
	}
	var ioErr *IOError
	if !errors.As(errs[0], &ioErr) || ioErr.Op != "delete" {
		t.Fatalf("expected delete IOError, got %v", errs[0])
	}
}

func TestDirStoreSaveWritesPNG(t *testing.T) {
	s := DirStore{Dir: t.TempDir()}
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	if err := s.Save(7, img); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	f, err := os.Open(filepath.Join(s.Dir, "00000007.png"))
	if err != nil {
		t.Fatalf("expected frame file: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding saved frame: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("expected bounds %v, got %v", img.Bounds(), decoded.Bounds())
	}
}

func TestDirStoreSaveMissingDir(t *testing.T) {
	s := DirStore{Dir: filepath.Join(t.TempDir(), "missing")}
	err := s.Save(1, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "create" {
		t.Fatalf("expected create IOError, got %v", err)
	}
}
