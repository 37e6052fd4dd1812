package player

import "time"

// State is the frame driver's lifecycle state.
type State uint8

const (
	Idle State = iota
	Playing
	Finished
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return "idle"
	}
}

// Default frame rates.
const (
	DefaultEncodeFPS  = 10.0
	DefaultDisplayFPS = 60.0
)

// Rates holds the two independent clocks. EncodeFPS alone decides how far
// the sample cursor moves per frame; DisplayFPS only sets how often ticks
// are requested.
type Rates struct {
	EncodeFPS  float64
	DisplayFPS float64
}

// DefaultRates returns 10 fps encoding polled at 60 fps.
func DefaultRates() Rates {
	return Rates{EncodeFPS: DefaultEncodeFPS, DisplayFPS: DefaultDisplayFPS}
}

// TickInterval returns the polling period for DisplayFPS.
func (r Rates) TickInterval() time.Duration {
	fps := r.DisplayFPS
	if fps <= 0 {
		fps = DefaultDisplayFPS
	}
	return time.Duration(float64(time.Second) / fps)
}

// Cursor is the playback position in frames and samples.
type Cursor struct {
	SampleIndex int
	FrameCount  int
}

// SampleIndex maps a virtual frame number to the first sample of its window:
// floor(frameCount * (1/encodeFPS) * sampleRate).
func SampleIndex(frameCount int, encodeFPS float64, sampleRate int) int {
	interval := 1.0 / encodeFPS
	return int(float64(frameCount) * interval * float64(sampleRate))
}
