package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/olivier-w/specvid/internal/ffmpeg"
	"github.com/olivier-w/specvid/internal/player"
	"github.com/olivier-w/specvid/internal/render"
	"github.com/olivier-w/specvid/internal/spectrum"
)

// EnvPrefix is prepended to every environment override, e.g.
// SPECVID_SPECTRUM_WINDOW_SIZE.
const EnvPrefix = "SPECVID"

// Name is the config file base name searched in the config directories.
const Name = "specvid"

// Config is the effective application configuration.
type Config struct {
	Spectrum  SpectrumConfig  `mapstructure:"spectrum" yaml:"spectrum"`
	Render    RenderConfig    `mapstructure:"render" yaml:"render"`
	Rates     RatesConfig     `mapstructure:"rates" yaml:"rates"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Transcode TranscodeConfig `mapstructure:"transcode" yaml:"transcode"`
	FFmpeg    FFmpegConfig    `mapstructure:"ffmpeg" yaml:"ffmpeg"`
	Preview   PreviewConfig   `mapstructure:"preview" yaml:"preview"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// SpectrumConfig holds the analysis parameters.
type SpectrumConfig struct {
	WindowSize  int `mapstructure:"window_size" yaml:"window_size"`
	MaxBars     int `mapstructure:"max_bars" yaml:"max_bars"`
	LowFreqSkip int `mapstructure:"low_freq_skip" yaml:"low_freq_skip"`
}

// RenderConfig holds the frame raster geometry.
type RenderConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
	BarGap int `mapstructure:"bar_gap" yaml:"bar_gap"`
}

// RatesConfig holds the encode and display frame rates.
type RatesConfig struct {
	EncodeFPS  float64 `mapstructure:"encode_fps" yaml:"encode_fps"`
	DisplayFPS float64 `mapstructure:"display_fps" yaml:"display_fps"`
}

// OutputConfig controls frame persistence and export.
type OutputConfig struct {
	Dir        string `mapstructure:"dir" yaml:"dir"`
	SaveImages bool   `mapstructure:"save_images" yaml:"save_images"`
	Video      string `mapstructure:"video" yaml:"video"`
	TempVideo  string `mapstructure:"temp_video" yaml:"temp_video"`
}

// TranscodeConfig controls conversion of non-WAV input.
type TranscodeConfig struct {
	SampleRate int    `mapstructure:"sample_rate" yaml:"sample_rate"`
	TempWAV    string `mapstructure:"temp_wav" yaml:"temp_wav"`
}

// FFmpegConfig locates the external tools. Empty paths use PATH.
type FFmpegConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`
	Probe string `mapstructure:"probe" yaml:"probe"`
}

// PreviewConfig controls the terminal frame preview.
type PreviewConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Mode    string `mapstructure:"mode" yaml:"mode"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("spectrum.window_size", spectrum.DefaultWindowSize)
	v.SetDefault("spectrum.max_bars", spectrum.DefaultMaxBars)
	v.SetDefault("spectrum.low_freq_skip", spectrum.DefaultLowFreqSkip)

	v.SetDefault("render.width", render.DefaultWidth)
	v.SetDefault("render.height", render.DefaultHeight)
	v.SetDefault("render.bar_gap", render.DefaultBarGap)

	v.SetDefault("rates.encode_fps", player.DefaultEncodeFPS)
	v.SetDefault("rates.display_fps", player.DefaultDisplayFPS)

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.save_images", true)
	v.SetDefault("output.video", "final_output.mp4")
	v.SetDefault("output.temp_video", "temp_video.mp4")

	v.SetDefault("transcode.sample_rate", ffmpeg.DefaultTranscodeRate)
	v.SetDefault("transcode.temp_wav", filepath.Join(os.TempDir(), "temp.wav"))

	v.SetDefault("ffmpeg.path", "")
	v.SetDefault("ffmpeg.probe", "")

	v.SetDefault("preview.enabled", true)
	v.SetDefault("preview.mode", "auto")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "specvid.log")
}

// New returns a viper instance with defaults, env overrides, and the config
// search path set. file, when non-empty, replaces the search path.
func New(file string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
		v.AddConfigPath(".")
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Read loads the config file into v. A missing file is not an error unless
// it was named explicitly.
func Read(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("reading config: %w", err)
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}
	return cfg, nil
}

// Validate replaces unusable values with defaults and returns one notice per
// replacement. Spectrum notices are spectrum.ConfigErrors.
func (c *Config) Validate() []error {
	sc, notices := c.SpectrumConfig().Validate()
	c.Spectrum = SpectrumConfig{WindowSize: sc.WindowSize, MaxBars: sc.MaxBars, LowFreqSkip: sc.LowFreqSkip}

	positive := func(field string, v *int, def int) {
		if *v <= 0 {
			notices = append(notices, fmt.Errorf("%s must be positive, got %d; using %d", field, *v, def))
			*v = def
		}
	}
	positive("render.width", &c.Render.Width, render.DefaultWidth)
	positive("render.height", &c.Render.Height, render.DefaultHeight)
	positive("transcode.sample_rate", &c.Transcode.SampleRate, ffmpeg.DefaultTranscodeRate)
	if c.Render.BarGap < 0 {
		notices = append(notices, fmt.Errorf("render.bar_gap must not be negative, got %d; using %d", c.Render.BarGap, render.DefaultBarGap))
		c.Render.BarGap = render.DefaultBarGap
	}

	rate := func(field string, v *float64, def float64) {
		if *v <= 0 {
			notices = append(notices, fmt.Errorf("%s must be positive, got %g; using %g", field, *v, def))
			*v = def
		}
	}
	rate("rates.encode_fps", &c.Rates.EncodeFPS, player.DefaultEncodeFPS)
	rate("rates.display_fps", &c.Rates.DisplayFPS, player.DefaultDisplayFPS)

	if c.Output.Dir == "" {
		notices = append(notices, errors.New("output.dir is empty; using \"output\""))
		c.Output.Dir = "output"
	}
	if c.Output.Video == "" {
		c.Output.Video = "final_output.mp4"
	}
	if c.Output.TempVideo == "" {
		c.Output.TempVideo = "temp_video.mp4"
	}
	return notices
}

// SpectrumConfig returns the analysis parameters as a spectrum.Config.
func (c *Config) SpectrumConfig() spectrum.Config {
	return spectrum.Config{
		WindowSize:  c.Spectrum.WindowSize,
		MaxBars:     c.Spectrum.MaxBars,
		LowFreqSkip: c.Spectrum.LowFreqSkip,
	}
}

// PlayerRates returns the configured frame rates.
func (c *Config) PlayerRates() player.Rates {
	return player.Rates{EncodeFPS: c.Rates.EncodeFPS, DisplayFPS: c.Rates.DisplayFPS}
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(out), nil
}
