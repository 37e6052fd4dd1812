package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/olivier-w/specvid/internal/spectrum"
)

// Default canvas geometry.
const (
	DefaultWidth  = 800
	DefaultHeight = 400
	// DefaultBarGap is the number of background pixels left between bars.
	DefaultBarGap = 1
)

var (
	// Background is the canvas color.
	Background = color.RGBA{A: 0xff}
	// Green is the default bar and center-line color.
	Green = color.RGBA{G: 0x80, A: 0xff}
)

// Options controls how a spectrum is laid out on the canvas.
type Options struct {
	Width       int
	Height      int
	LowFreqSkip int
	BarGap      int
	Foreground  color.Color // nil means Green
}

// Bars draws s as mirrored vertical bars about a horizontal center line.
//
// Magnitudes are normalized against the maximum of the whole spectrum. The
// first LowFreqSkip entries are not drawn and the remaining bars share the
// full canvas width.
func Bars(s spectrum.Spectrum, opts Options) *image.RGBA {
	w, h := opts.Width, opts.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
	if w <= 0 || h <= 0 {
		return img
	}

	fg := opts.Foreground
	if fg == nil {
		fg = Green
	}
	paint := image.NewUniform(fg)

	centerY := h / 2
	fill(img, image.Rect(0, centerY, w, centerY+1), paint)

	skip := max(opts.LowFreqSkip, 0)
	effective := len(s) - skip
	if effective <= 0 {
		effective = 1
	}

	barWidth := float64(w) / float64(effective)
	drawn := max(1, int(barWidth)-opts.BarGap)

	for i, bh := range BarHeights(s, h, skip) {
		if bh == 0 {
			continue
		}
		x := int(float64(i) * barWidth)
		fill(img, image.Rect(x, centerY-bh, x+drawn, centerY), paint)
		fill(img, image.Rect(x, centerY, x+drawn, centerY+bh), paint)
	}

	return img
}

// BarHeights returns the pixel height of every drawn bar, in drawing order.
// Heights are normalized against the maximum of the whole spectrum, including
// the skipped bins.
func BarHeights(s spectrum.Spectrum, height, lowFreqSkip int) []int {
	maxAmp := s.Max()
	if maxAmp == 0 {
		maxAmp = 1
	}
	skip := max(lowFreqSkip, 0)
	if skip >= len(s) {
		return nil
	}
	out := make([]int, 0, len(s)-skip)
	for _, v := range s[skip:] {
		out = append(out, int(max(0, v/maxAmp*float64(height/2))))
	}
	return out
}

func fill(img *image.RGBA, r image.Rectangle, src image.Image) {
	draw.Draw(img, r.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
}
