package video

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// ASCII brightness ramp from darkest to brightest.
const asciiRamp = " .:-=+*#%@"

// Mode describes how preview cells are colored.
type Mode uint8

const (
	ModeASCII Mode = iota // no color: brightness characters
	Mode16                // basic 16-color
	Mode256               // 256-color cube
	ModeTrue              // 24-bit truecolor
)

func (m Mode) String() string {
	switch m {
	case Mode16:
		return "16"
	case Mode256:
		return "256"
	case ModeTrue:
		return "truecolor"
	default:
		return "ascii"
	}
}

// Color reports whether the mode packs two pixel rows per cell.
func (m Mode) Color() bool { return m != ModeASCII }

// DetectMode picks a mode from NO_COLOR, COLORTERM, and TERM.
func DetectMode() Mode {
	if os.Getenv("NO_COLOR") != "" {
		return ModeASCII
	}
	term := strings.ToLower(os.Getenv("TERM"))
	ct := strings.ToLower(os.Getenv("COLORTERM"))
	switch {
	case strings.Contains(ct, "truecolor"), strings.Contains(ct, "24bit"):
		return ModeTrue
	case strings.Contains(term, "256color"):
		return Mode256
	case term == "dumb":
		return ModeASCII
	case term == "" && runtime.GOOS == "windows":
		return Mode16
	case term == "":
		return ModeASCII
	default:
		return Mode16
	}
}

// ParseMode accepts "auto", "truecolor", "256", "16", or "ascii".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DetectMode(), nil
	case "truecolor", "24bit":
		return ModeTrue, nil
	case "256":
		return Mode256, nil
	case "16":
		return Mode16, nil
	case "ascii", "off", "none":
		return ModeASCII, nil
	default:
		return ModeASCII, fmt.Errorf("unknown preview mode %q", s)
	}
}

func brightnessChar(lum uint8) byte {
	return asciiRamp[int(lum)*(len(asciiRamp)-1)/255]
}

// luminance computes perceived brightness (ITU-R BT.601).
func luminance(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}

// colorSeq returns the escape selecting rgb as foreground (base 38) or
// background (base 48).
func colorSeq(mode Mode, base int, r, g, b uint8) string {
	switch mode {
	case ModeTrue:
		return fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", base, r, g, b)
	case Mode256:
		return fmt.Sprintf("\x1b[%d;5;%dm", base, cube256(r, g, b))
	case Mode16:
		idx := nearest16(r, g, b)
		code := base - 8 + idx // 30..37 or 40..47
		if idx >= 8 {
			code = base + 52 + idx - 8 // 90..97 or 100..107
		}
		return fmt.Sprintf("\x1b[%dm", code)
	default:
		return ""
	}
}

func cube256(r, g, b uint8) int {
	return 16 + 36*(int(r)*5/255) + 6*(int(g)*5/255) + int(b)*5/255
}

func nearest16(r, g, b uint8) int {
	best, bestDist := 0, 1<<31-1
	for i, c := range ansi16Palette {
		dr := int(r) - int(c[0])
		dg := int(g) - int(c[1])
		db := int(b) - int(c[2])
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

const ansiReset = "\x1b[0m"

var ansi16Palette = [16][3]uint8{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
	{102, 102, 102}, // bright black
	{241, 76, 76},   // bright red
	{35, 209, 139},  // bright green
	{245, 245, 67},  // bright yellow
	{59, 142, 234},  // bright blue
	{214, 112, 214}, // bright magenta
	{41, 184, 219},  // bright cyan
	{255, 255, 255}, // bright white
}
