package overlay

import (
	"fmt"

	"github.com/sculpto/sculpto/render"
)

var statsColor = [4]float32{1, 1, 0, 1}

// Stats accumulates frame timings and the result of the last flush for the statistics panel.
type Stats struct {
	FPS       float64
	FrameTime float64 // seconds
	Last      render.FlushStats

	frames  int
	elapsed float64
}

// Tick records one frame of dt seconds. FPS is refreshed once per accumulated second.
func (s *Stats) Tick(dt float64, flushed render.FlushStats) {
	s.Last = flushed
	if dt <= 0 {
		return
	}
	s.FrameTime = dt
	s.frames++
	s.elapsed += dt
	if s.elapsed >= 1.0 {
		s.FPS = float64(s.frames) / s.elapsed
		s.frames = 0
		s.elapsed = 0
	}
}

func (s *Stats) Lines() []string {
	dir := "off"
	if s.Last.Directional {
		dir = "on"
	}
	return []string{
		fmt.Sprintf("FPS: %.1f (%.2f ms)", s.FPS, s.FrameTime*1000),
		fmt.Sprintf("Draws: %d  Skipped: %d", s.Last.Draws, s.Last.Skipped),
		fmt.Sprintf("Point: %d/%d  Spot: %d/%d  Dir: %s",
			s.Last.PointLights, render.MaxPointLights, s.Last.SpotLights, render.MaxSpotLights, dir),
	}
}

// Items lays the statistics lines out from (x, y) downward.
func (s *Stats) Items(a *Atlas, x, y, scale float32) []Item {
	lines := s.Lines()
	items := make([]Item, 0, len(lines))
	step := a.LineHeight(scale)
	for i, line := range lines {
		items = append(items, Item{
			Text:     line,
			Position: [2]float32{x, y + float32(i)*step},
			Scale:    scale,
			Color:    statsColor,
		})
	}
	return items
}
