package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

func TestReadMetadataFallsBackToFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "My Song.wav")
	writeFixture(t, path, 8000, 16, 1, []int{0, 1, 2})

	m := ReadMetadata(path)
	if m.Title != "My Song" || m.Artist != "" {
		t.Fatalf("expected file-name title, got %+v", m)
	}
	if m.Label() != "My Song" {
		t.Fatalf("unexpected label %q", m.Label())
	}
}

func TestReadMetadataID3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	if err := os.WriteFile(path, []byte{0xff, 0xfb, 0x90, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open tag: %v", err)
	}
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(" Tone ")
	tag.SetArtist("Lab")
	tag.SetAlbum("Tests")
	if err := tag.Save(); err != nil {
		t.Fatalf("save tag: %v", err)
	}
	tag.Close()

	m := ReadMetadata(path)
	if m.Title != "Tone" || m.Artist != "Lab" || m.Album != "Tests" {
		t.Fatalf("unexpected metadata %+v", m)
	}
	if m.Label() != "Lab - Tone" {
		t.Fatalf("unexpected label %q", m.Label())
	}
}
