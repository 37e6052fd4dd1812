package video

import (
	"image"
	"image/color"
	"strings"
	"testing"
)

func twoTone() *image.RGBA {
	// top half white, bottom half black
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := color.RGBA{A: 0xff}
			if y < 2 {
				c = color.RGBA{0xff, 0xff, 0xff, 0xff}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRenderASCII(t *testing.T) {
	out := NewPreview(ModeASCII).Render(twoTone(), 4, 2)
	if out != "@@@@\n    " {
		t.Fatalf("unexpected ascii output %q", out)
	}
}

func TestRenderHalfBlockTrueColor(t *testing.T) {
	out := NewPreview(ModeTrue).Render(twoTone(), 2, 1)
	want := "\x1b[38;2;255;255;255m\x1b[48;2;0;0;0m▀▀" + ansiReset
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestRenderRowsAndResets(t *testing.T) {
	out := NewPreview(Mode256).Render(twoTone(), 3, 2)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	for i, l := range lines {
		if strings.Count(l, "▀") != 3 || !strings.HasSuffix(l, ansiReset) {
			t.Fatalf("row %d malformed: %q", i, l)
		}
	}
}

func TestRenderNonRGBAImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(0, 0, color.Gray{Y: 0xff})
	if out := NewPreview(ModeASCII).Render(img, 2, 1); out != "@ " {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderDegenerate(t *testing.T) {
	p := NewPreview(ModeTrue)
	if p.Render(nil, 10, 10) != "" || p.Render(twoTone(), 0, 5) != "" {
		t.Fatal("expected empty output")
	}
	if p.Render(image.NewRGBA(image.Rectangle{}), 3, 3) != "" {
		t.Fatal("expected empty output for empty image")
	}
}

func TestColorSeq16(t *testing.T) {
	if got := colorSeq(Mode16, 38, 0, 0, 0); got != "\x1b[30m" {
		t.Fatalf("expected black fg, got %q", got)
	}
	if got := colorSeq(Mode16, 48, 255, 255, 255); got != "\x1b[107m" {
		t.Fatalf("expected bright white bg, got %q", got)
	}
	if got := colorSeq(Mode16, 38, 13, 188, 121); got != "\x1b[32m" {
		t.Fatalf("expected green fg, got %q", got)
	}
	if colorSeq(ModeASCII, 38, 1, 2, 3) != "" {
		t.Fatal("expected no escape in ascii mode")
	}
}

func TestCube256(t *testing.T) {
	if cube256(0, 0, 0) != 16 || cube256(255, 255, 255) != 231 {
		t.Fatal("unexpected cube corners")
	}
	if cube256(0, 0x80, 0) != 16+6*2 {
		t.Fatalf("unexpected green index %d", cube256(0, 0x80, 0))
	}
}

func TestFit(t *testing.T) {
	cases := []struct {
		maxCols, maxRows, w, h int
		cols, rows             int
	}{
		{80, 40, 800, 400, 80, 20},
		{80, 10, 800, 400, 40, 10},
		{0, 10, 800, 400, 0, 0},
		{3, 3, 800, 400, 3, 1},
	}
	for _, c := range cases {
		cols, rows := Fit(c.maxCols, c.maxRows, c.w, c.h)
		if cols != c.cols || rows != c.rows {
			t.Fatalf("Fit(%d,%d,%d,%d) = %d,%d want %d,%d", c.maxCols, c.maxRows, c.w, c.h, cols, rows, c.cols, c.rows)
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"truecolor": ModeTrue, "256": Mode256, "16": Mode16, "ASCII": ModeASCII} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("sepia"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestDetectMode(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("COLORTERM", "truecolor")
	t.Setenv("TERM", "xterm")
	if DetectMode() != ModeTrue {
		t.Fatal("expected truecolor")
	}
	t.Setenv("COLORTERM", "")
	t.Setenv("TERM", "xterm-256color")
	if DetectMode() != Mode256 {
		t.Fatal("expected 256")
	}
	t.Setenv("TERM", "dumb")
	if DetectMode() != ModeASCII {
		t.Fatal("expected ascii for dumb terminal")
	}
	t.Setenv("NO_COLOR", "1")
	t.Setenv("TERM", "xterm-256color")
	if DetectMode() != ModeASCII {
		t.Fatal("expected NO_COLOR to disable color")
	}
}
