package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/specvid/internal/media"
	"github.com/olivier-w/specvid/internal/pcm"
	"github.com/olivier-w/specvid/internal/player"
)

// Track is a decoded file ready to hand to the player.
type Track struct {
	Buffer    *pcm.Buffer
	AudioPath string // audio muxed into the exported video
	Meta      media.Metadata
}

// LoadFunc opens and decodes path.
type LoadFunc func(ctx context.Context, path string) (Track, error)

// tickMsg and frameMsg carry the session generation so that a stopped or
// restarted session's stale ticks are dropped.
type tickMsg struct{ gen int }

type frameMsg struct {
	gen int
	res player.TickResult
}

type loadedMsg struct {
	path  string
	track Track
	err   error
}

func tickCmd(gen int, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func frameCmd(ctx context.Context, p *player.Player, gen int) tea.Cmd {
	return func() tea.Msg {
		return frameMsg{gen: gen, res: p.Tick(ctx)}
	}
}

func loadCmd(ctx context.Context, load LoadFunc, path string) tea.Cmd {
	return func() tea.Msg {
		track, err := load(ctx, path)
		return loadedMsg{path: path, track: track, err: err}
	}
}
