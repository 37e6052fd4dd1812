package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/olivier-w/specvid/internal/config"
	"github.com/olivier-w/specvid/internal/ffmpeg"
	"github.com/olivier-w/specvid/internal/logging"
	"github.com/olivier-w/specvid/internal/media"
	"github.com/olivier-w/specvid/internal/player"
	"github.com/olivier-w/specvid/internal/render"
	"github.com/olivier-w/specvid/internal/ui"
	"github.com/olivier-w/specvid/internal/util"
	"github.com/olivier-w/specvid/internal/video"
)

// app carries state shared by every command.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	notices []error
}

// flagKeys maps command-line flags to their config keys.
var flagKeys = map[string]string{
	"window-size":   "spectrum.window_size",
	"max-bars":      "spectrum.max_bars",
	"low-freq-skip": "spectrum.low_freq_skip",
	"width":         "render.width",
	"height":        "render.height",
	"bar-gap":       "render.bar_gap",
	"encode-fps":    "rates.encode_fps",
	"display-fps":   "rates.display_fps",
	"output-dir":    "output.dir",
	"save-images":   "output.save_images",
	"video":         "output.video",
	"ffmpeg":        "ffmpeg.path",
	"preview":       "preview.mode",
	"log-level":     "log.level",
	"log-file":      "log.file",
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New("")}

	root := &cobra.Command{
		Use:   "specvid [file]",
		Short: "Render an audio file as a spectrum-bar video",
		Long: `specvid steps through an audio file at a fixed frame rate, draws a
mirrored spectrum-bar image for every frame, and when frame saving is
enabled encodes the frames into an H.264 video muxed with the original audio.

Without a subcommand it opens the interactive control surface.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
		RunE: a.runInteractive,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/specvid/specvid.yaml)")
	pf.Int("window-size", 0, "FFT window size, a power of 2")
	pf.Int("max-bars", 0, "maximum number of spectrum bars")
	pf.Int("low-freq-skip", 0, "number of lowest bins left undrawn")
	pf.Int("width", 0, "frame width in pixels")
	pf.Int("height", 0, "frame height in pixels")
	pf.Int("bar-gap", 0, "background pixels between bars")
	pf.Float64("encode-fps", 0, "frames per second of the exported video")
	pf.Float64("display-fps", 0, "ticks per second while playing")
	pf.String("output-dir", "", "directory for frame images")
	pf.Bool("save-images", true, "save frames and export a video at the end")
	pf.String("video", "", "exported video path")
	pf.String("ffmpeg", "", "ffmpeg binary (default: search PATH)")
	pf.String("preview", "", "preview colors: auto, truecolor, 256, 16, ascii")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "log file used by the interactive mode")
	if err := bindFlags(a.v, pf); err != nil {
		panic(err)
	}

	root.AddCommand(a.newRenderCmd(), a.newConfigCmd())
	return root
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) loadConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	}
	if err := config.Read(a.v); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.notices = cfg.Validate()
	a.cfg = cfg
	return nil
}

// session bundles the components built from the configuration.
type session struct {
	player  *player.Player
	store   render.DirStore
	opener  *opener
	preview *video.Preview
	ffprobe string
	notices []error
}

func (a *app) newSession(log *zap.Logger, output string) *session {
	cfg := a.cfg
	s := &session{notices: append([]error(nil), a.notices...), store: render.DirStore{Dir: cfg.Output.Dir}}

	store := s.store
	opts := player.Options{
		Rates:  cfg.PlayerRates(),
		Width:  cfg.Render.Width,
		Height: cfg.Render.Height,
		BarGap: cfg.Render.BarGap,
		Store:  store,
		Logger: log,
	}
	s.opener = &opener{tempWAV: cfg.Transcode.TempWAV, log: log}

	bin, err := ffmpeg.Locate(cfg.FFmpeg.Path)
	if err != nil {
		s.notices = append(s.notices, errors.New("ffmpeg not found; video export disabled"))
		log.Warn("ffmpeg unavailable", zap.Error(err))
	} else {
		runner := ffmpeg.ExecRunner{}
		opts.Exporter = &ffmpeg.Exporter{
			Runner:    runner,
			FFmpeg:    bin,
			FrameDir:  cfg.Output.Dir,
			Pattern:   store.Pattern(),
			TempVideo: cfg.Output.TempVideo,
			Output:    output,
			FPS:       cfg.Rates.EncodeFPS,
			Width:     cfg.Render.Width,
			Height:    cfg.Render.Height,
			Logger:    log,
		}
		s.opener.transcoder = &ffmpeg.Transcoder{
			Runner:     runner,
			FFmpeg:     bin,
			SampleRate: cfg.Transcode.SampleRate,
			Logger:     log,
		}
		if probe, err := ffmpeg.LocateProbe(cfg.FFmpeg.Probe); err == nil {
			s.ffprobe = probe
		}
	}
	s.player = player.New(opts)

	if cfg.Preview.Enabled {
		mode, err := video.ParseMode(cfg.Preview.Mode)
		if err != nil {
			s.notices = append(s.notices, err)
			mode = video.DetectMode()
		}
		s.preview = video.NewPreview(mode)
	}
	return s
}

func (a *app) runInteractive(cmd *cobra.Command, args []string) error {
	log, err := logging.New(a.cfg.Log.Level, a.cfg.Log.File)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	s := a.newSession(log, a.cfg.Output.Video)
	opts := ui.Options{
		Player:     s.player,
		Load:       s.opener.open,
		Spectrum:   a.cfg.SpectrumConfig(),
		SaveImages: a.cfg.Output.SaveImages,
		Preview:    s.preview,
		Dir:        ".",
		Notices:    s.notices,
		Logger:     log,
	}
	if len(args) == 1 {
		opts.Initial = args[0]
		opts.Dir = filepath.Dir(args[0])
	}

	program := tea.NewProgram(ui.New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func (a *app) newRenderCmd() *cobra.Command {
	var realtime bool
	cmd := &cobra.Command{
		Use:   "render <file|playlist>...",
		Short: "Render files without the interactive interface",
		Long: `render plays each file to the end as fast as frames can be drawn
(or at the display rate with --realtime), saving frames and exporting a video
per file when frame saving is enabled. Playlists (.m3u, .m3u8, .pls) are
expanded in place.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRender(cmd.Context(), cmd.OutOrStdout(), args, realtime)
		},
	}
	cmd.Flags().BoolVar(&realtime, "realtime", false, "pace ticks at the display frame rate")
	return cmd
}

func (a *app) runRender(ctx context.Context, out io.Writer, args []string, realtime bool) error {
	log, err := logging.New(a.cfg.Log.Level, "")
	if err != nil {
		return err
	}
	defer log.Sync()

	files, skipped, err := media.ExpandInputs(args)
	if err != nil {
		return err
	}
	if skipped > 0 {
		fmt.Fprintf(out, "skipped %d unplayable entries\n", skipped)
	}
	if len(files) == 0 {
		return errors.New("no playable files")
	}
	for _, n := range a.notices {
		fmt.Fprintf(out, "notice: %v\n", n)
	}

	var failed int
	for _, file := range files {
		output := a.cfg.Output.Video
		if len(files) > 1 {
			base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			output = filepath.Join(filepath.Dir(output), base+"-"+filepath.Base(output))
		}
		if err := a.renderOne(ctx, out, log, file, output, realtime); err != nil {
			fmt.Fprintf(out, "%s: %v\n", filepath.Base(file), err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func (a *app) renderOne(ctx context.Context, out io.Writer, log *zap.Logger, file, output string, realtime bool) error {
	s := a.newSession(log, output)
	track, err := s.opener.open(ctx, file)
	if err != nil {
		return err
	}
	s.player.Load(track.Buffer, track.AudioPath)
	fmt.Fprintf(out, "%s  Total: %s\n", track.Meta.Label(), util.FormatSeconds(s.player.Duration()))

	notices, err := s.player.Start(a.cfg.SpectrumConfig(), a.cfg.Output.SaveImages)
	if err != nil {
		return err
	}
	for _, n := range notices {
		fmt.Fprintf(out, "notice: %v\n", n)
	}

	interval := s.player.Rates().TickInterval()
	every := max(int(s.player.Rates().EncodeFPS), 1)
	var res player.TickResult
	for {
		if err := ctx.Err(); err != nil {
			s.player.Stop()
			return err
		}
		res = s.player.Tick(ctx)
		if res.State != player.Playing {
			break
		}
		if res.SaveErr != nil {
			fmt.Fprintf(out, "notice: %v\n", res.SaveErr)
		}
		if res.Cursor.FrameCount%every == 0 {
			fmt.Fprintf(out, "Current: %s\n", util.FormatSeconds(res.Position))
		}
		if realtime {
			time.Sleep(interval)
		}
	}

	fmt.Fprintf(out, "Current: %s\n", util.FormatSeconds(res.Position))
	fmt.Fprintf(out, "rendered %d frames\n", res.Cursor.FrameCount-1)
	if s.player.Saving() {
		if n, err := s.store.Count(); err == nil {
			fmt.Fprintf(out, "%d frame images in %s\n", n, s.store.Dir)
		}
	}
	if res.ExportErr != nil {
		return res.ExportErr
	}
	if res.VideoPath == "" {
		return nil
	}
	fmt.Fprintf(out, "video saved to %s\n", res.VideoPath)
	if s.ffprobe != "" {
		info, err := ffmpeg.Probe(ctx, ffmpeg.ExecRunner{}, s.ffprobe, res.VideoPath)
		if err != nil {
			log.Warn("probing exported video", zap.Error(err))
			return nil
		}
		fmt.Fprintf(out, "  %dx%d  %.4g fps  %s  audio=%v\n",
			info.Width, info.Height, info.FPS, util.FormatDuration(info.Duration), info.HasAudio)
	}
	return nil
}

func (a *app) newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range a.notices {
				fmt.Fprintf(out, "# notice: %v\n", n)
			}
			_, err = io.WriteString(out, doc)
			return err
		},
	}
}
