package video

import (
	"image"
	"image/color"
	"strings"
)

// Preview draws rendered frames into the terminal.
//   - Color modes use "▀" with fg = top pixel and bg = bottom pixel, packing
//     two pixel rows into one terminal row.
//   - ASCII mode maps each pixel to a brightness character.
type Preview struct {
	mode Mode
	sb   strings.Builder
}

// NewPreview creates a preview for the given mode.
func NewPreview(mode Mode) *Preview {
	return &Preview{mode: mode}
}

// Mode returns the preview's color mode.
func (p *Preview) Mode() Mode { return p.mode }

// Render scales img into cols x rows terminal cells by nearest neighbour.
func (p *Preview) Render(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	b := img.Bounds()
	if b.Empty() {
		return ""
	}

	p.sb.Reset()
	p.sb.Grow(cols * rows * 24)
	if p.mode.Color() {
		p.renderHalfBlock(img, b, cols, rows)
	} else {
		p.renderASCII(img, b, cols, rows)
	}
	return p.sb.String()
}

func (p *Preview) renderHalfBlock(img image.Image, b image.Rectangle, cols, rows int) {
	pixelRows := rows * 2
	for row := 0; row < rows; row++ {
		var lastFg, lastBg string
		for col := 0; col < cols; col++ {
			x := b.Min.X + col*b.Dx()/cols
			tr, tg, tb := sample(img, x, b.Min.Y+(row*2)*b.Dy()/pixelRows)
			br, bg, bb := sample(img, x, b.Min.Y+(row*2+1)*b.Dy()/pixelRows)

			if fg := colorSeq(p.mode, 38, tr, tg, tb); fg != lastFg {
				p.sb.WriteString(fg)
				lastFg = fg
			}
			if bgc := colorSeq(p.mode, 48, br, bg, bb); bgc != lastBg {
				p.sb.WriteString(bgc)
				lastBg = bgc
			}
			p.sb.WriteString("▀")
		}
		p.sb.WriteString(ansiReset)
		if row < rows-1 {
			p.sb.WriteByte('\n')
		}
	}
}

func (p *Preview) renderASCII(img image.Image, b image.Rectangle, cols, rows int) {
	for row := 0; row < rows; row++ {
		y := b.Min.Y + row*b.Dy()/rows
		for col := 0; col < cols; col++ {
			r, g, bl := sample(img, b.Min.X+col*b.Dx()/cols, y)
			p.sb.WriteByte(brightnessChar(luminance(r, g, bl)))
		}
		if row < rows-1 {
			p.sb.WriteByte('\n')
		}
	}
}

func sample(img image.Image, x, y int) (uint8, uint8, uint8) {
	if rgba, ok := img.(*image.RGBA); ok {
		c := rgba.RGBAAt(x, y)
		return c.R, c.G, c.B
	}
	c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
	return c.R, c.G, c.B
}

// Fit returns the largest cell grid within maxCols x maxRows that keeps the
// w:h aspect of the frame. Cells are taken to be twice as tall as wide.
func Fit(maxCols, maxRows, w, h int) (cols, rows int) {
	if maxCols <= 0 || maxRows <= 0 || w <= 0 || h <= 0 {
		return 0, 0
	}
	aspect := float64(w) / float64(h)
	cols = maxCols
	rows = int(float64(cols)/aspect/2 + 0.5)
	if rows > maxRows {
		rows = maxRows
		cols = min(int(float64(rows)*aspect*2+0.5), maxCols)
	}
	return max(cols, 1), max(rows, 1)
}
