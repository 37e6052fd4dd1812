package ui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func tempTree(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		p := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
	return dir
}

func TestBrowserListsDirsThenAudio(t *testing.T) {
	dir := tempTree(t, "song.wav", "notes.txt", ".hidden.wav", "sub/inner.mp3")
	m := NewBrowser(dir)

	items := m.list.Items()
	if len(items) != 3 {
		t.Fatalf("expected .., sub, song; got %d items", len(items))
	}
	if d, ok := items[0].(dirItem); !ok || d.name != ".." {
		t.Fatalf("expected parent entry first, got %#v", items[0])
	}
	if d, ok := items[1].(dirItem); !ok || d.name != "sub" {
		t.Fatalf("expected sub directory, got %#v", items[1])
	}
	if a, ok := items[2].(audioItem); !ok || a.name != "song" || a.ext != ".wav" {
		t.Fatalf("expected song.wav, got %#v", items[2])
	}
}

func TestBrowserFileSelectionReturnsMessage(t *testing.T) {
	dir := tempTree(t, "song.wav")
	m := NewBrowser(dir)
	m.list.Select(1)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected selection command")
	}
	selected, ok := cmd().(BrowserSelectedMsg)
	if !ok {
		t.Fatalf("expected BrowserSelectedMsg, got %T", cmd())
	}
	if selected.Path != filepath.Join(m.Dir(), "song.wav") {
		t.Fatalf("unexpected path %q", selected.Path)
	}
}

func TestBrowserEntersAndLeavesDirectories(t *testing.T) {
	dir := tempTree(t, "sub/inner.mp3")
	m := NewBrowser(dir)
	m.list.Select(1)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if filepath.Base(m.Dir()) != "sub" {
		t.Fatalf("expected to enter sub, got %q", m.Dir())
	}
	if len(m.list.Items()) != 2 {
		t.Fatalf("expected .. and inner.mp3, got %d items", len(m.list.Items()))
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Dir() != dir {
		t.Fatalf("expected to return to %q, got %q", dir, m.Dir())
	}
}

func TestBrowserCancelReturnsMessage(t *testing.T) {
	m := NewBrowser(t.TempDir())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected cancel command")
	}
	if _, ok := cmd().(BrowserCancelledMsg); !ok {
		t.Fatalf("expected BrowserCancelledMsg, got %T", cmd())
	}
}

func TestBrowserUnreadableDirectory(t *testing.T) {
	m := NewBrowser(filepath.Join(t.TempDir(), "missing"))
	if m.Error() == nil {
		t.Fatal("expected directory error")
	}
}
