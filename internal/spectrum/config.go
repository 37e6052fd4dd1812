package spectrum

import (
	"fmt"
	"strconv"
	"strings"
)

// Defaults substituted for invalid configuration values.
const (
	DefaultWindowSize  = 1024
	DefaultMaxBars     = 256
	DefaultLowFreqSkip = 5
)

// Config controls one playback session's analysis.
type Config struct {
	WindowSize  int
	MaxBars     int
	LowFreqSkip int
}

// DefaultConfig returns the configuration used when nothing is supplied.
func DefaultConfig() Config {
	return Config{
		WindowSize:  DefaultWindowSize,
		MaxBars:     DefaultMaxBars,
		LowFreqSkip: DefaultLowFreqSkip,
	}
}

// ConfigError reports a rejected value and the default used in its place.
type ConfigError struct {
	Field   string
	Value   string
	Default int
}

func (e *ConfigError) Error() string {
	switch e.Field {
	case "window_size":
		return fmt.Sprintf("window size must be a power of 2 (e.g. 512, 1024), got %q; using %d", e.Value, e.Default)
	case "max_bars":
		return fmt.Sprintf("max spectrum bars must be a positive integer, got %q; using %d", e.Value, e.Default)
	default:
		return fmt.Sprintf("%s: invalid value %q; using %d", e.Field, e.Value, e.Default)
	}
}

// Validate returns a copy of c with invalid fields replaced by their defaults,
// plus one ConfigError per replaced field.
func (c Config) Validate() (Config, []error) {
	var errs []error
	if !IsPowerOfTwo(c.WindowSize) {
		errs = append(errs, &ConfigError{Field: "window_size", Value: strconv.Itoa(c.WindowSize), Default: DefaultWindowSize})
		c.WindowSize = DefaultWindowSize
	}
	if c.MaxBars <= 0 {
		errs = append(errs, &ConfigError{Field: "max_bars", Value: strconv.Itoa(c.MaxBars), Default: DefaultMaxBars})
		c.MaxBars = DefaultMaxBars
	}
	if c.LowFreqSkip < 0 {
		errs = append(errs, &ConfigError{Field: "low_freq_skip", Value: strconv.Itoa(c.LowFreqSkip), Default: DefaultLowFreqSkip})
		c.LowFreqSkip = DefaultLowFreqSkip
	}
	return c, errs
}

// ParseConfig builds a Config from user-typed text fields.
// Unparseable or invalid values fall back to defaults with a ConfigError each.
func ParseConfig(windowSize, maxBars string, lowFreqSkip int) (Config, []error) {
	var errs []error
	c := Config{LowFreqSkip: lowFreqSkip}

	if n, err := strconv.Atoi(strings.TrimSpace(windowSize)); err != nil || !IsPowerOfTwo(n) {
		errs = append(errs, &ConfigError{Field: "window_size", Value: windowSize, Default: DefaultWindowSize})
		c.WindowSize = DefaultWindowSize
	} else {
		c.WindowSize = n
	}

	if n, err := strconv.Atoi(strings.TrimSpace(maxBars)); err != nil || n <= 0 {
		errs = append(errs, &ConfigError{Field: "max_bars", Value: maxBars, Default: DefaultMaxBars})
		c.MaxBars = DefaultMaxBars
	} else {
		c.MaxBars = n
	}

	c, more := c.Validate()
	return c, append(errs, more...)
}
