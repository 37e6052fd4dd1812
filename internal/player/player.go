package player

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/olivier-w/specvid/internal/pcm"
	"github.com/olivier-w/specvid/internal/render"
	"github.com/olivier-w/specvid/internal/spectrum"
)

// ErrNoAudio is returned by Start when nothing has been loaded.
var ErrNoAudio = errors.New("no audio data loaded")

// FrameStore persists rendered frames for one session.
type FrameStore interface {
	// Prepare clears frames left from a previous session.
	Prepare() []error
	Save(index int, img image.Image) error
}

// Exporter turns the persisted frames and the audio track into a video.
type Exporter interface {
	Export(ctx context.Context, frames int, audioPath string) (string, error)
}

// Options configures a Player.
type Options struct {
	Rates    Rates
	Width    int
	Height   int
	BarGap   int
	Store    FrameStore // nil disables persistence
	Exporter Exporter   // nil disables export
	Logger   *zap.Logger
}

// TickResult describes what one Tick did.
type TickResult struct {
	State    State
	Cursor   Cursor
	Position time.Duration
	Spectrum spectrum.Spectrum
	Frame    *image.RGBA // nil when no frame was drawn

	SaveErr   error
	VideoPath string
	ExportErr error
}

// Rendered reports whether the tick produced a frame.
func (r TickResult) Rendered() bool { return r.Frame != nil }

// Player advances a sample cursor at the encode rate and renders one
// spectrum frame per tick. Ticks must not overlap; callers schedule the next
// tick only after the previous one returned.
type Player struct {
	opts Options
	log  *zap.Logger

	tickMu sync.Mutex // serializes Tick and Start

	mu        sync.Mutex
	buf       *pcm.Buffer
	audioPath string
	cfg       spectrum.Config
	save      bool
	state     State
	cursor    Cursor
	session   *zap.Logger
}

// New creates an idle Player with nothing loaded.
func New(opts Options) *Player {
	if opts.Rates.EncodeFPS <= 0 {
		opts.Rates.EncodeFPS = DefaultEncodeFPS
	}
	if opts.Rates.DisplayFPS <= 0 {
		opts.Rates.DisplayFPS = DefaultDisplayFPS
	}
	if opts.Width <= 0 {
		opts.Width = render.DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = render.DefaultHeight
	}
	if opts.BarGap < 0 {
		opts.BarGap = render.DefaultBarGap
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{
		opts:    opts,
		log:     log,
		cfg:     spectrum.DefaultConfig(),
		session: log,
	}
}

// Load replaces the sample buffer, stops playback, and rewinds the cursor.
// audioPath is the track muxed into the exported video. A nil buf unloads.
func (p *Player) Load(buf *pcm.Buffer, audioPath string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf = buf
	p.audioPath = audioPath
	p.state = Idle
	p.cursor = Cursor{}
	if buf != nil {
		p.log.Info("audio loaded",
			zap.String("path", audioPath),
			zap.Int("samples", buf.Len()),
			zap.Int("sample_rate", buf.SampleRate),
			zap.Duration("duration", buf.Duration()))
	}
}

// Loaded reports whether a sample buffer is present.
func (p *Player) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf != nil && p.buf.Len() > 0
}

// Start begins a session from frame zero. Invalid config fields are replaced
// by defaults. The returned notices hold those ConfigErrors plus any IOErrors
// from clearing the frame directory; neither prevents playback.
// Start waits for a running Tick so no frame of the previous session lands
// in the freshly cleared directory.
func (p *Player) Start(cfg spectrum.Config, save bool) ([]error, error) {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.buf == nil || p.buf.Len() == 0 {
		return nil, ErrNoAudio
	}

	cfg, notices := cfg.Validate()
	p.cfg = cfg
	p.save = save && p.opts.Store != nil
	p.cursor = Cursor{}
	p.state = Playing
	p.session = p.log.With(zap.String("session", uuid.NewString()))

	if p.save {
		notices = append(notices, p.opts.Store.Prepare()...)
	}
	for _, n := range notices {
		p.session.Warn("start notice", zap.Error(n))
	}
	p.session.Info("playback started",
		zap.Int("window_size", cfg.WindowSize),
		zap.Int("max_bars", cfg.MaxBars),
		zap.Int("low_freq_skip", cfg.LowFreqSkip),
		zap.Bool("save_images", p.save),
		zap.Float64("encode_fps", p.opts.Rates.EncodeFPS))
	return notices, nil
}

// Stop halts a running session. Frames already written are kept.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Playing {
		p.state = Idle
		p.session.Info("playback stopped", zap.Int("frame", p.cursor.FrameCount))
	}
}

// Toggle stops a running session or starts a new one.
func (p *Player) Toggle(cfg spectrum.Config, save bool) (bool, []error, error) {
	if p.State() == Playing {
		p.Stop()
		return false, nil, nil
	}
	notices, err := p.Start(cfg, save)
	if err != nil {
		return false, nil, err
	}
	return true, notices, nil
}

// Tick advances one virtual frame while playing. The sample cursor depends
// only on the frame count and the encode rate, never on wall-clock time.
//
// When the next window would run past the buffer the cursor is clamped, the
// state becomes Finished, no frame is drawn, and the export runs if frames
// were being saved. Export blocks until ffmpeg exits.
func (p *Player) Tick(ctx context.Context) TickResult {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	p.mu.Lock()
	if p.state != Playing {
		res := TickResult{State: p.state, Cursor: p.cursor, Position: p.positionLocked()}
		p.mu.Unlock()
		return res
	}

	p.cursor.FrameCount++
	idx := SampleIndex(p.cursor.FrameCount, p.opts.Rates.EncodeFPS, p.buf.SampleRate)
	buf, cfg, save, log := p.buf, p.cfg, p.save, p.session

	if idx+cfg.WindowSize > buf.Len() {
		p.cursor.SampleIndex = max(0, buf.Len()-cfg.WindowSize)
		p.state = Finished
		res := TickResult{State: Finished, Cursor: p.cursor, Position: p.positionLocked()}
		audioPath := p.audioPath
		p.mu.Unlock()

		log.Info("end of stream", zap.Int("frame", res.Cursor.FrameCount), zap.Int("sample", res.Cursor.SampleIndex))
		if save && p.opts.Exporter != nil {
			rendered := res.Cursor.FrameCount - 1
			res.VideoPath, res.ExportErr = p.opts.Exporter.Export(ctx, rendered, audioPath)
			if res.ExportErr != nil {
				log.Error("export failed", zap.Error(res.ExportErr))
			} else {
				log.Info("video exported", zap.String("path", res.VideoPath), zap.Int("frames", rendered))
			}
		}
		return res
	}

	p.cursor.SampleIndex = idx
	res := TickResult{State: Playing, Cursor: p.cursor, Position: p.positionLocked()}
	p.mu.Unlock()

	res.Spectrum = spectrum.Compute(buf.Samples, idx, cfg)
	res.Frame = render.Bars(res.Spectrum, render.Options{
		Width:       p.opts.Width,
		Height:      p.opts.Height,
		LowFreqSkip: cfg.LowFreqSkip,
		BarGap:      p.opts.BarGap,
	})

	if save {
		if err := p.opts.Store.Save(res.Cursor.FrameCount, res.Frame); err != nil {
			res.SaveErr = err
			log.Warn("saving frame", zap.Int("frame", res.Cursor.FrameCount), zap.Error(err))
		}
	}
	log.Debug("tick", zap.Int("frame", res.Cursor.FrameCount), zap.Int("sample", idx))
	return res
}

// NextFinishes reports whether the next Tick will reach the end of the
// buffer, and with it trigger the export when frames are being saved.
func (p *Player) NextFinishes() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing {
		return false
	}
	idx := SampleIndex(p.cursor.FrameCount+1, p.opts.Rates.EncodeFPS, p.buf.SampleRate)
	return idx+p.cfg.WindowSize > p.buf.Len()
}

// Saving reports whether the current session persists frames.
func (p *Player) Saving() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.save
}

// State returns the current lifecycle state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Cursor returns the current frame and sample position.
func (p *Player) Cursor() Cursor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Position returns the cursor as a time offset into the track.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *Player) positionLocked() time.Duration {
	if p.buf == nil || p.buf.SampleRate <= 0 {
		return 0
	}
	sec := float64(p.cursor.SampleIndex) / float64(p.buf.SampleRate)
	return time.Duration(sec * float64(time.Second))
}

// Duration returns the loaded track length.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Duration()
}

// Config returns the spectrum configuration of the current or last session.
func (p *Player) Config() spectrum.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// Rates returns the player's frame rates.
func (p *Player) Rates() Rates {
	return p.opts.Rates
}
