package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/olivier-w/specvid/internal/player"
	"github.com/olivier-w/specvid/internal/spectrum"
	"github.com/olivier-w/specvid/internal/util"
	"github.com/olivier-w/specvid/internal/video"
)

const (
	fieldWindow = iota
	fieldBars
	fieldCount
)

// lines used by everything except the preview
const chromeLines = 16

// Options configures the control surface.
type Options struct {
	Player     *player.Player
	Load       LoadFunc
	Spectrum   spectrum.Config // initial field values
	SaveImages bool
	Preview    *video.Preview // nil disables the preview
	Dir        string         // browser start directory
	Initial    string         // file to load on start, if any
	Notices    []error        // shown on the first frame
	Logger     *zap.Logger
}

// Model is the Bubbletea model for the control surface.
type Model struct {
	ctx     context.Context
	player  *player.Player
	load    LoadFunc
	log     *zap.Logger
	preview *video.Preview
	initial string

	browser  BrowserModel
	browsing bool

	inputs      [fieldCount]textinput.Model
	focus       int // -1 when no field is focused
	lowFreqSkip int
	saveImages  bool
	showPreview bool

	spinner   spinner.Model
	progress  progress.Model
	smooth    smoother
	loading   bool
	exporting bool

	gen int // bumped on every start and stop

	// inFlight is set while the frame of generation inFlightGen is being
	// rendered. A stale frame never blocks the ticks of a newer session.
	inFlight    bool
	inFlightGen int

	title    string
	subtitle string
	current  time.Duration
	total    time.Duration
	frame    string
	notices  []notice
	status   string

	width    int
	height   int
	quitting bool
}

// New creates the control surface.
func New(ctx context.Context, opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 8
		ti.Width = 10
		inputs[i] = ti
	}
	inputs[fieldWindow].Placeholder = strconv.Itoa(spectrum.DefaultWindowSize)
	inputs[fieldWindow].SetValue(strconv.Itoa(opts.Spectrum.WindowSize))
	inputs[fieldBars].Placeholder = strconv.Itoa(spectrum.DefaultMaxBars)
	inputs[fieldBars].SetValue(strconv.Itoa(opts.Spectrum.MaxBars))

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	var notices []notice
	for _, n := range opts.Notices {
		notices = pushNotice(notices, notice{text: n.Error()})
	}

	return Model{
		ctx:         ctx,
		player:      opts.Player,
		load:        opts.Load,
		log:         log,
		preview:     opts.Preview,
		initial:     opts.Initial,
		browser:     NewBrowser(dir),
		inputs:      inputs,
		focus:       -1,
		lowFreqSkip: opts.Spectrum.LowFreqSkip,
		saveImages:  opts.SaveImages,
		showPreview: opts.Preview != nil,
		spinner:     s,
		progress:    progress.New(progress.WithSolidFill(string(barGreen)), progress.WithoutPercentage()),
		smooth:      newSmoother(opts.Player.Rates().DisplayFPS),
		notices:     notices,
		title:       "No file loaded",
		status:      "idle",
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("specvid")}
	if m.initial != "" {
		path := m.initial
		cmds = append(cmds, func() tea.Msg { return BrowserSelectedMsg{Path: path} })
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.handleMsg(msg)
	return next, cmd
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-24, 20), 60)
		m.browser, _ = m.browser.Update(msg)
		return m, nil

	case BrowserSelectedMsg:
		m.browsing = false
		return m.startLoad(msg.Path)

	case BrowserCancelledMsg:
		m.browsing = false
		return m, nil

	case loadedMsg:
		return m.finishLoad(msg), nil

	case spinner.TickMsg:
		if !m.loading && !m.exporting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		if msg.gen != m.gen || (m.inFlight && m.inFlightGen == m.gen) || m.player.State() != player.Playing {
			return m, nil
		}
		m.inFlight = true
		m.inFlightGen = m.gen
		var cmds []tea.Cmd
		if m.player.NextFinishes() && m.player.Saving() {
			m.exporting = true
			m.status = "exporting video"
			cmds = append(cmds, m.spinner.Tick)
		}
		cmds = append(cmds, frameCmd(m.ctx, m.player, m.gen))
		return m, tea.Batch(cmds...)

	case frameMsg:
		if msg.gen != m.gen {
			if msg.gen == m.inFlightGen {
				m.inFlight = false
			}
			return m, nil
		}
		m.inFlight = false
		return m.applyFrame(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.browsing {
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.browsing {
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}
	if m.focus >= 0 {
		return m.handleFieldKey(msg)
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "o":
		if m.loading {
			return m, nil
		}
		m.browsing = true
		return m, nil
	case "enter", " ":
		return m.toggle()
	case "s":
		m.saveImages = !m.saveImages
		return m, nil
	case "p":
		if m.preview != nil {
			m.showPreview = !m.showPreview
		}
		return m, nil
	case "tab":
		return m.focusField(fieldWindow)
	}
	return m, nil
}

func (m Model) handleFieldKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		if m.focus+1 < fieldCount {
			return m.focusField(m.focus + 1)
		}
		m.blur()
		return m, nil
	case "shift+tab":
		if m.focus > 0 {
			return m.focusField(m.focus - 1)
		}
		m.blur()
		return m, nil
	case "enter", "esc":
		m.blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) focusField(i int) (Model, tea.Cmd) {
	m.blur()
	m.focus = i
	return m, m.inputs[i].Focus()
}

func (m *Model) blur() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = -1
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.player.Stop()
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m Model) startLoad(path string) (Model, tea.Cmd) {
	m.player.Stop()
	m.gen++
	m.loading = true
	m.status = "loading " + filepath.Base(path)
	m.log.Info("loading", zap.String("path", path))
	return m, tea.Batch(m.spinner.Tick, loadCmd(m.ctx, m.load, path))
}

func (m Model) finishLoad(msg loadedMsg) Model {
	m.loading = false
	m.current = 0
	m.frame = ""
	m.smooth.reset()

	if msg.err != nil {
		m.player.Load(nil, "")
		m.title = "No file loaded"
		m.subtitle = ""
		m.total = 0
		m.status = "idle"
		m.notices = pushNotice(m.notices, notice{text: "Failed to load audio file: " + msg.err.Error(), err: true})
		m.log.Error("load failed", zap.String("path", msg.path), zap.Error(msg.err))
		return m
	}

	m.player.Load(msg.track.Buffer, msg.track.AudioPath)
	m.title = msg.track.Meta.Title
	if m.title == "" {
		m.title = filepath.Base(msg.path)
	}
	m.subtitle = msg.track.Meta.Artist
	if msg.track.Meta.Album != "" {
		m.subtitle = strings.TrimPrefix(m.subtitle+" - "+msg.track.Meta.Album, " - ")
	}
	m.total = m.player.Duration()
	m.status = "loaded"
	return m
}

func (m Model) toggle() (Model, tea.Cmd) {
	if m.loading || m.exporting {
		return m, nil
	}
	cfg, notices := spectrum.ParseConfig(m.inputs[fieldWindow].Value(), m.inputs[fieldBars].Value(), m.lowFreqSkip)

	playing, more, err := m.player.Toggle(cfg, m.saveImages)
	m.gen++
	if err != nil {
		if errors.Is(err, player.ErrNoAudio) {
			m.notices = pushNotice(m.notices, notice{text: "Please select a WAV file first.", err: true})
		} else {
			m.notices = pushNotice(m.notices, notice{text: err.Error(), err: true})
		}
		return m, nil
	}
	if !playing {
		m.status = "stopped"
		return m, nil
	}

	// Rewrite the fields with the values actually in use.
	eff := m.player.Config()
	m.inputs[fieldWindow].SetValue(strconv.Itoa(eff.WindowSize))
	m.inputs[fieldBars].SetValue(strconv.Itoa(eff.MaxBars))
	for _, n := range append(notices, more...) {
		m.notices = pushNotice(m.notices, notice{text: n.Error()})
	}
	m.current = 0
	m.smooth.reset()
	m.status = "playing"
	return m, tickCmd(m.gen, m.player.Rates().TickInterval())
}

func (m Model) applyFrame(msg frameMsg) (Model, tea.Cmd) {
	res := msg.res
	m.current = res.Position
	if m.total > 0 {
		m.smooth.step(m.current.Seconds() / m.total.Seconds())
	}
	if res.Frame != nil && m.preview != nil && m.showPreview {
		cols, rows := video.Fit(max(m.width-4, 1), m.previewRows(), res.Frame.Bounds().Dx(), res.Frame.Bounds().Dy())
		m.frame = m.preview.Render(res.Frame, cols, rows)
	}
	if res.SaveErr != nil {
		m.notices = pushNotice(m.notices, notice{text: res.SaveErr.Error(), err: true})
	}

	switch res.State {
	case player.Finished:
		m.exporting = false
		m.status = "finished"
		if res.ExportErr != nil {
			m.notices = pushNotice(m.notices, notice{text: res.ExportErr.Error(), err: true})
		} else if res.VideoPath != "" {
			m.notices = pushNotice(m.notices, notice{text: "Video saved to " + res.VideoPath})
		}
		return m, nil
	case player.Playing:
		return m, tickCmd(m.gen, m.player.Rates().TickInterval())
	}
	return m, nil
}

func (m Model) previewRows() int {
	if m.height <= 0 {
		return 12
	}
	return max(m.height-chromeLines-len(m.notices), 4)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.browsing {
		return m.browser.View()
	}

	var sb strings.Builder
	sb.WriteString("\n  " + headerStyle.Render("specvid") + "\n\n")
	sb.WriteString("  " + titleStyle.Render(m.title) + "\n")
	if m.subtitle != "" {
		sb.WriteString("  " + artistStyle.Render(m.subtitle) + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString("  " + labelStyle.Render("Window size") + m.inputs[fieldWindow].View() + "\n")
	sb.WriteString("  " + labelStyle.Render("Max bars") + m.inputs[fieldBars].View() + "\n")
	save := "[ ]"
	if m.saveImages {
		save = "[x]"
	}
	sb.WriteString("  " + labelStyle.Render("Save images") + save + "\n\n")

	current := timeStyle.Render("Current: " + util.FormatSeconds(m.current))
	total := timeStyle.Render("Total: " + util.FormatSeconds(m.total))
	sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", current, m.progress.ViewAs(m.smooth.pos), total))

	status := m.status
	if m.loading || m.exporting {
		status = m.spinner.View() + " " + status
	}
	sb.WriteString("  " + statusStyle.Render(status) + "\n\n")

	if m.frame != "" && m.showPreview {
		for _, line := range strings.Split(m.frame, "\n") {
			sb.WriteString("  " + line + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(renderNotices(m.notices))
	sb.WriteString("\n  " + helpStyle.Render(helpText(m.focus >= 0, m.player.State() == player.Playing)) + "\n")
	return sb.String()
}
