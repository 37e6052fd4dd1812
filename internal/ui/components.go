package ui

import (
	"strings"

	"github.com/charmbracelet/harmonica"
)

const maxNotices = 4

// smoother eases the progress bar toward the cursor position so that the
// bar moves at display rate while the cursor jumps at encode rate.
type smoother struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newSmoother(fps float64) smoother {
	return smoother{spring: harmonica.NewSpring(harmonica.FPS(int(fps)), 8.0, 1.0)}
}

func (s *smoother) step(target float64) float64 {
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, clamp01(target))
	s.pos = clamp01(s.pos)
	return s.pos
}

func (s *smoother) reset() {
	s.pos, s.vel = 0, 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// notice is a user-visible message; errors render in red.
type notice struct {
	text string
	err  bool
}

func pushNotice(list []notice, n notice) []notice {
	list = append(list, n)
	if len(list) > maxNotices {
		list = list[len(list)-maxNotices:]
	}
	return list
}

func renderNotices(list []notice) string {
	var sb strings.Builder
	for _, n := range list {
		style := noticeStyle
		if n.err {
			style = errorStyle
		}
		sb.WriteString("  " + style.Render(n.text) + "\n")
	}
	return sb.String()
}
