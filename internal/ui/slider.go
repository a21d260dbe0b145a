package ui

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ingyamilmolinar/polyrhythm/internal/utils"
)

// Slider is a horizontal slider mapping its track onto [Min, Max].
type Slider struct {
	Label    string
	Format   string
	Min, Max float64
	Value    float64

	r        image.Rectangle
	dragging bool
}

func NewSlider(label string, min, max, v float64) *Slider {
	return &Slider{Label: label, Format: "%.2f", Min: min, Max: max, Value: utils.Clamp(v, min, max)}
}

func (s *Slider) SetRect(r image.Rectangle) { s.r = r }

func (s *Slider) Rect() image.Rectangle { return s.r }

// Set moves the knob without reporting a change.
func (s *Slider) Set(v float64) { s.Value = utils.Clamp(v, s.Min, s.Max) }

// Dragging reports whether the knob is held.
func (s *Slider) Dragging() bool { return s.dragging }

// Handle processes mouse interaction and reports whether the value changed.
func (s *Slider) Handle(mx, my int, pressed bool) bool {
	if pressed {
		if s.dragging || image.Pt(mx, my).In(s.r) {
			s.dragging = true
			old := s.Value
			s.setFromX(mx)
			return s.Value != old
		}
	} else if s.dragging {
		s.dragging = false
	}
	return false
}

func (s *Slider) fraction() float64 {
	if s.Max <= s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

func (s *Slider) setFromX(mx int) {
	w := s.r.Dx() - 1
	if w <= 0 {
		s.Value = s.Min
		return
	}
	f := utils.Clamp01(float64(mx-s.r.Min.X) / float64(w))
	s.Value = utils.Lerp(s.Min, s.Max, f)
}

// Draw renders the slider and its value label.
func (s *Slider) Draw(dst *ebiten.Image) {
	trackY := s.r.Min.Y + s.r.Dy()/2 - 2
	drawRect(dst, image.Rect(s.r.Min.X, trackY, s.r.Max.X, trackY+4), colTrack, true)

	knobX := s.r.Min.X + int(s.fraction()*float64(s.r.Dx()-1))
	drawRect(dst, image.Rect(knobX-2, s.r.Min.Y, knobX+2, s.r.Max.Y), colKnob, true)

	debugPrint(dst, fmt.Sprintf("%s "+s.Format, s.Label, s.Value), s.r.Min.X, s.r.Min.Y-14)
}
