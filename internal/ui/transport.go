package ui

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ingyamilmolinar/polyrhythm/core/model"
)

const barHeight = 44 // transport-bar height in px

// TransportEvent is what one Update of the bar asks the game to do.
type TransportEvent struct {
	Play, Stop, Reset bool
	// Changed is set when any slider moved; the per-slider flags say which.
	// Apply writes only the moved ones.
	Changed              bool
	Speed, Ratio, Volume bool
}

type Transport struct {
	Playing bool
	BPM     float64

	Speed  *Slider
	Ratio  *Slider
	Volume *Slider

	playRect  image.Rectangle
	stopRect  image.Rectangle
	resetRect image.Rectangle
	leftPrev  bool
}

func NewTransport(s model.Settings) *Transport {
	t := &Transport{
		Speed:     NewSlider("speed", model.MinBaseSpeed, model.MaxBaseSpeed, s.Rhythm.BaseSpeed),
		Ratio:     NewSlider("ratio", model.MinSpeedRatio, model.MaxSpeedRatio, s.Rhythm.SpeedRatio),
		Volume:    NewSlider("volume", 0, 1, s.Rhythm.GlobalVolume),
		playRect:  image.Rect(10, 8, 40, 30),
		stopRect:  image.Rect(46, 8, 76, 30),
		resetRect: image.Rect(82, 8, 112, 30),
	}
	t.Ratio.Format = "%.3f"
	t.Sync(s, false)
	t.Layout(640)
	return t
}

// Layout spreads the sliders over the space right of the buttons.
func (t *Transport) Layout(w int) {
	x := 200
	span := (w - x - 10) / 3
	if span < 60 {
		span = 60
	}
	for i, s := range []*Slider{t.Speed, t.Ratio, t.Volume} {
		x0 := x + i*span
		s.SetRect(image.Rect(x0, 20, x0+span-20, 34))
	}
}

// Sync copies externally changed settings into the controls. A slider being
// dragged keeps its own value.
func (t *Transport) Sync(s model.Settings, playing bool) {
	t.Playing = playing
	t.BPM = s.Rhythm.BPM()
	if !t.Speed.Dragging() {
		t.Speed.Set(s.Rhythm.BaseSpeed)
	}
	if !t.Ratio.Dragging() {
		t.Ratio.Set(s.Rhythm.SpeedRatio)
	}
	if !t.Volume.Dragging() {
		t.Volume.Set(s.Rhythm.GlobalVolume)
	}
}

// Apply writes the values of the sliders ev reports as moved into s.
func (t *Transport) Apply(s model.Settings, ev TransportEvent) model.Settings {
	if ev.Speed {
		s.Rhythm.BaseSpeed = t.Speed.Value
	}
	if ev.Ratio {
		s.Rhythm.SpeedRatio = t.Ratio.Value
	}
	if ev.Volume {
		s.Rhythm.GlobalVolume = t.Volume.Value
	}
	return s
}

func (t *Transport) Update() TransportEvent {
	var ev TransportEvent
	x, y := cursorPosition()
	left := isMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !t.leftPrev {
		switch {
		case pt(x, y, t.playRect):
			ev.Play = true
		case pt(x, y, t.stopRect):
			ev.Stop = true
		case pt(x, y, t.resetRect):
			ev.Reset = true
		}
	}
	t.leftPrev = left

	ev.Speed = t.Speed.Handle(x, y, left)
	ev.Ratio = t.Ratio.Handle(x, y, left)
	ev.Volume = t.Volume.Handle(x, y, left)
	ev.Changed = ev.Speed || ev.Ratio || ev.Volume
	return ev
}

func (t *Transport) Draw(dst *ebiten.Image) {
	w := dst.Bounds().Dx()
	drawRect(dst, image.Rect(0, 0, w, barHeight), colBar, true)

	drawButton(dst, t.playRect, colPlayButton, colButtonBorder, t.Playing, "|>")
	drawButton(dst, t.stopRect, colStopButton, colButtonBorder, !t.Playing, "||")
	drawButton(dst, t.resetRect, colResetButton, colButtonBorder, false, "<<")
	debugPrint(dst, fmt.Sprintf("%.0f BPM", t.BPM), 122, 12)

	for _, s := range []*Slider{t.Speed, t.Ratio, t.Volume} {
		s.Draw(dst)
	}
}
