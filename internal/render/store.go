package render

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// IOError reports a failed file operation on the frame directory.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

var (
	storeMkdirAll = os.MkdirAll
	storeRemove   = os.Remove
	storeCreate   = os.Create
)

// DirStore persists frames as zero-padded, sequentially numbered PNG files.
type DirStore struct {
	Dir string
}

// FrameName returns the file name for frame index i.
func FrameName(i int) string {
	return fmt.Sprintf("%08d.png", i)
}

// Pattern returns the printf-style input pattern matching FrameName.
func (s DirStore) Pattern() string {
	return filepath.Join(s.Dir, "%08d.png")
}

// Prepare creates the directory and deletes any PNG files left in it.
// Each failed deletion is reported separately; the rest still proceed.
func (s DirStore) Prepare() []error {
	if err := storeMkdirAll(s.Dir, 0o755); err != nil {
		return []error{&IOError{Op: "create", Path: s.Dir, Err: err}}
	}
	existing, err := filepath.Glob(filepath.Join(s.Dir, "*.png"))
	if err != nil {
		return []error{&IOError{Op: "list", Path: s.Dir, Err: err}}
	}
	var errs []error
	for _, f := range existing {
		if err := storeRemove(f); err != nil {
			errs = append(errs, &IOError{Op: "delete", Path: f, Err: err})
		}
	}
	return errs
}

// Save writes img as frame index i.
func (s DirStore) Save(i int, img image.Image) error {
	path := filepath.Join(s.Dir, FrameName(i))
	f, err := storeCreate(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	w := bufio.NewWriter(f)
	if err := png.Encode(w, img); err != nil {
		f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Count returns how many PNG files are currently in the directory.
func (s DirStore) Count() (int, error) {
	files, err := filepath.Glob(filepath.Join(s.Dir, "*.png"))
	if err != nil {
		return 0, err
	}
	return len(files), nil
}
