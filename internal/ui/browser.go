package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/specvid/internal/media"
)

// BrowserSelectedMsg is sent when the user picks an audio file.
type BrowserSelectedMsg struct {
	Path string
}

// BrowserCancelledMsg is sent when the user closes the browser.
type BrowserCancelledMsg struct{}

type audioItem struct {
	name string
	ext  string
}

func (i audioItem) Title() string       { return i.name }
func (i audioItem) Description() string { return i.ext }
func (i audioItem) FilterValue() string { return i.name }

type dirItem struct {
	name string
}

func (i dirItem) Title() string       { return i.name + "/" }
func (i dirItem) Description() string { return "directory" }
func (i dirItem) FilterValue() string { return i.name }

// BrowserModel is the file-open dialog: it lists audio files and
// directories and lets the user walk the tree.
type BrowserModel struct {
	list list.Model
	dir  string
	err  error
}

// NewBrowser creates a browser rooted at dir.
func NewBrowser(dir string) BrowserModel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(barGreen)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(barGreen)

	l := list.New(nil, delegate, 80, 20)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = headerStyle

	m := BrowserModel{list: l}
	m.chdir(dir)
	return m
}

// Dir returns the directory being listed.
func (m BrowserModel) Dir() string { return m.dir }

// Error returns the last directory read error, if any.
func (m BrowserModel) Error() error { return m.err }

func (m *BrowserModel) chdir(dir string) {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	items, err := scanDir(dir)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.dir = dir
	m.list.Title = "open audio: " + dir
	m.list.ResetFilter()
	m.list.SetItems(items)
	m.list.Select(0)
}

func scanDir(dir string) ([]list.Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory: %w", err)
	}

	var dirs, files []list.Item
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, dirItem{name: name})
			continue
		}
		ext := filepath.Ext(name)
		if !media.IsSupportedExt(ext) {
			continue
		}
		files = append(files, audioItem{name: strings.TrimSuffix(name, ext), ext: ext})
	}
	sort.SliceStable(dirs, func(i, j int) bool { return dirs[i].FilterValue() < dirs[j].FilterValue() })

	items := make([]list.Item, 0, len(dirs)+len(files)+1)
	if filepath.Dir(dir) != dir {
		items = append(items, dirItem{name: ".."})
	}
	items = append(items, dirs...)
	return append(items, files...), nil
}

func (m BrowserModel) Init() tea.Cmd { return nil }

func (m BrowserModel) Update(msg tea.Msg) (BrowserModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't intercept keys when filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			switch item := m.list.SelectedItem().(type) {
			case dirItem:
				m.chdir(filepath.Join(m.dir, item.name))
				return m, nil
			case audioItem:
				path := filepath.Join(m.dir, item.name+item.ext)
				return m, func() tea.Msg { return BrowserSelectedMsg{Path: path} }
			}
			return m, nil
		case "backspace":
			m.chdir(filepath.Dir(m.dir))
			return m, nil
		case "q", "esc":
			return m, func() tea.Msg { return BrowserCancelledMsg{} }
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) View() string {
	v := m.list.View()
	if m.err != nil {
		v += "\n  " + errorStyle.Render(m.err.Error())
	}
	return v
}
