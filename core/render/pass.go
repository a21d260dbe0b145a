package render

import (
	"fmt"
	"math"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/ingyamilmolinar/polyrhythm/core/model"
	"github.com/ingyamilmolinar/polyrhythm/core/sim"
	"github.com/ingyamilmolinar/polyrhythm/core/voice"
)

// Frame is everything one paint needs. It is a value snapshot; Draw never
// reaches back into the simulation or the pool.
type Frame struct {
	Now     time.Time
	Playing bool
	BPM     float64

	Nodes   []sim.Node
	Configs []model.NodeConfig
	Voices  []voice.Voice
	// LastHit holds the time of each node's most recent reflection; the zero
	// time means never.
	LastHit []time.Time

	MaxVoices int
	Stats     voice.Stats
}

// ActiveFor counts the active voices of node i in the frame.
func (f Frame) ActiveFor(i int) int {
	n := 0
	for _, v := range f.Voices {
		if v.Active && v.NodeIndex == i {
			n++
		}
	}
	return n
}

// ActiveVoices counts all active voices in the frame.
func (f Frame) ActiveVoices() int {
	n := 0
	for _, v := range f.Voices {
		if v.Active {
			n++
		}
	}
	return n
}

type Pass struct {
	Theme Theme

	// RippleLife is how long a voice ripple takes to expand and fade.
	RippleLife time.Duration
	RippleEase ease.TweenFunc
	// FlashLife is how long a hit flash stays visible.
	FlashLife time.Duration
	FlashEase ease.TweenFunc

	// StatusHeight is reserved at the top of the surface for the status line.
	StatusHeight float64
}

func NewPass() *Pass {
	return &Pass{
		Theme:        DefaultTheme,
		RippleLife:   600 * time.Millisecond,
		RippleEase:   ease.OutQuad,
		FlashLife:    250 * time.Millisecond,
		FlashEase:    ease.OutCubic,
		StatusHeight: 16,
	}
}

// Layout maps normalized simulation space onto a surface.
type Layout struct {
	W, H   float64
	Top    float64
	Radius float64
	n      int
}

func NewLayout(w, h, top float64, n int) Layout {
	l := Layout{W: w, H: h, Top: top, n: n}
	if n < 1 {
		n = 1
	}
	lane := w / float64(n)
	l.Radius = math.Max(1, math.Min(lane*0.3, (h-top)*0.05))
	return l
}

// LaneX is the horizontal center of lane i.
func (l Layout) LaneX(i int) float64 {
	n := l.n
	if n < 1 {
		n = 1
	}
	return (float64(i) + 0.5) / float64(n) * l.W
}

// NodeY maps a position (0 bottom, 1 top) to a vertical coordinate inside the
// field, keeping the whole node circle visible.
func (l Layout) NodeY(pos float64) float64 {
	span := l.H - l.Top - 2*l.Radius
	if span < 0 {
		span = 0
	}
	return l.Top + l.Radius + (1-pos)*span
}

// TopY and BottomY are the edges nodes reflect off.
func (l Layout) TopY() float64    { return l.NodeY(1) }
func (l Layout) BottomY() float64 { return l.NodeY(0) }

// Draw paints f onto s. A nil or zero-sized surface returns
// ErrSurfaceUnavailable and draws nothing.
func (p *Pass) Draw(s Surface, f Frame) error {
	if !usable(s) {
		return ErrSurfaceUnavailable
	}
	w, h := s.Size()
	t := p.Theme
	l := NewLayout(w, h, p.StatusHeight, len(f.Nodes))

	s.Clear(t.BGBottom)
	s.LinearGradient(0, 0, w, h, t.BGTop, t.BGBottom)

	s.Line(0, l.TopY(), w, l.TopY(), 1, t.Edge)
	s.Line(0, l.BottomY(), w, l.BottomY(), 1, t.Edge)
	for i := range f.Nodes {
		x := l.LaneX(i)
		s.Line(x, l.TopY(), x, l.BottomY(), 1, t.Lane)
	}

	p.drawRipples(s, f, l)

	for i, n := range f.Nodes {
		x, y := l.LaneX(i), l.NodeY(n.Position)
		enabled := i < len(f.Configs) && f.Configs[i].Enabled

		if active := f.ActiveFor(i); active > 0 {
			r := l.Radius * (1.6 + 0.4*float64(active))
			s.RadialGradient(x, y, r, t.Glow, withAlpha(t.Glow, 0))
		}

		c := t.Node
		if !enabled {
			c = t.NodeOff
		}
		s.FillCircle(x, y, l.Radius, c)

		if a := p.flash(f, i); a > 0 {
			s.StrokeCircle(x, y, l.Radius*1.3, 2, withAlpha(t.Flash, a))
		}

		if i < len(f.Configs) {
			s.Text(x+l.Radius+2, l.BottomY()-l.Radius, f.Configs[i].Label(), t.Label)
		}
	}

	p.drawStatus(s, f)
	return nil
}

func (p *Pass) drawRipples(s Surface, f Frame, l Layout) {
	if p.RippleLife <= 0 {
		return
	}
	life := float32(p.RippleLife.Seconds())
	for _, v := range f.Voices {
		if v.NodeIndex < 0 || v.NodeIndex >= len(f.Nodes) {
			continue
		}
		age := float32(v.Age(f.Now).Seconds())
		if age < 0 || age >= life {
			continue
		}
		maxR := l.Radius * 4
		r := float64(p.RippleEase(age, float32(l.Radius), float32(maxR-l.Radius), life))
		a := float64(ease.Linear(age, float32(v.Volume), float32(-v.Volume), life))
		x, y := l.LaneX(v.NodeIndex), l.NodeY(f.Nodes[v.NodeIndex].Position)
		s.StrokeCircle(x, y, r, 1.5, withAlpha(p.Theme.Ripple, a))
	}
}

func (p *Pass) flash(f Frame, i int) float64 {
	if i >= len(f.LastHit) || f.LastHit[i].IsZero() || p.FlashLife <= 0 {
		return 0
	}
	age := f.Now.Sub(f.LastHit[i])
	if age < 0 || age >= p.FlashLife {
		return 0
	}
	return float64(p.FlashEase(float32(age.Seconds()), 1, -1, float32(p.FlashLife.Seconds())))
}

// StatusLine is the text shown at the top of every frame.
func StatusLine(f Frame) string {
	state := "PAUSED"
	if f.Playing {
		state = "PLAYING"
	}
	return fmt.Sprintf("%s  %.0f BPM  nodes %d  voices %d/%d  dropped %d",
		state, f.BPM, len(f.Nodes), f.ActiveVoices(), f.MaxVoices, f.Stats.Dropped)
}

func (p *Pass) drawStatus(s Surface, f Frame) {
	c := p.Theme.Paused
	if f.Playing {
		c = p.Theme.Status
	}
	s.Text(p.StatusHeight/4, p.StatusHeight/8, StatusLine(f), c)
}
