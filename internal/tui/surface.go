// Package tui hosts the visualizer in a terminal.
package tui

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
)

// Surface draws onto terminal cells. One cell is one unit; circles smaller
// than a cell collapse to a single glyph.
type Surface struct {
	screen tcell.Screen
}

func NewSurface(s tcell.Screen) *Surface { return &Surface{screen: s} }

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (s *Surface) Size() (float64, float64) {
	if s.screen == nil {
		return 0, 0
	}
	w, h := s.screen.Size()
	return float64(w), float64(h)
}

func (s *Surface) Clear(c color.RGBA) {
	s.screen.Fill(' ', tcell.StyleDefault.Background(rgb(c)))
}

// put sets a glyph keeping whatever background the cell already has.
func (s *Surface) put(x, y int, r rune, c color.RGBA) {
	if c.A == 0 {
		return
	}
	w, h := s.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	_, _, style, _ := s.screen.GetContent(x, y)
	s.screen.SetContent(x, y, r, nil, style.Foreground(rgb(c)))
}

func (s *Surface) paint(x, y int, c color.RGBA) {
	w, h := s.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	s.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(rgb(c)))
}

func round(f float64) int { return int(math.Round(f)) }

func (s *Surface) Line(x0, y0, x1, y1, _ float64, c color.RGBA) {
	dx, dy := x1-x0, y1-y0
	glyph := '·'
	switch {
	case math.Abs(dy) < 0.5:
		glyph = '─'
	case math.Abs(dx) < 0.5:
		glyph = '│'
	}
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		s.put(round(x0), round(y0), glyph, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		s.put(round(x0+dx*t), round(y0+dy*t), glyph, c)
	}
}

func (s *Surface) FillCircle(cx, cy, r float64, c color.RGBA) {
	if r < 1.5 {
		s.put(round(cx), round(cy), '●', c)
		return
	}
	for y := round(cy - r); y <= round(cy+r); y++ {
		for x := round(cx - r); x <= round(cx+r); x++ {
			if math.Hypot(float64(x)-cx, float64(y)-cy) <= r {
				s.put(x, y, '█', c)
			}
		}
	}
}

func (s *Surface) StrokeCircle(cx, cy, r, _ float64, c color.RGBA) {
	if r < 1 {
		s.put(round(cx), round(cy), 'o', c)
		return
	}
	n := int(2*math.Pi*r) * 2
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		x, y := round(cx+r*math.Cos(a)), round(cy+r*math.Sin(a))
		if x == round(cx) && y == round(cy) {
			continue
		}
		s.put(x, y, '·', c)
	}
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}

func (s *Surface) LinearGradient(x, y, w, h float64, top, bottom color.RGBA) {
	if h <= 0 {
		return
	}
	for row := round(y); row < round(y+h); row++ {
		c := lerp(top, bottom, (float64(row)-y)/h)
		for col := round(x); col < round(x+w); col++ {
			s.paint(col, row, c)
		}
	}
}

func (s *Surface) RadialGradient(cx, cy, r float64, inner, outer color.RGBA) {
	if r <= 0 {
		return
	}
	for y := round(cy - r); y <= round(cy+r); y++ {
		for x := round(cx - r); x <= round(cx+r); x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if d > r {
				continue
			}
			c := lerp(inner, outer, d/r)
			w, h := s.screen.Size()
			if x < 0 || y < 0 || x >= w || y >= h || c.A == 0 {
				continue
			}
			mainc, comb, style, _ := s.screen.GetContent(x, y)
			s.screen.SetContent(x, y, mainc, comb, style.Background(rgb(c)))
		}
	}
}

func (s *Surface) Text(x, y float64, str string, c color.RGBA) {
	col := round(x)
	for _, r := range str {
		s.put(col, round(y), r, c)
		col++
	}
}
