package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ingyamilmolinar/polyrhythm/core/engine"
	"github.com/ingyamilmolinar/polyrhythm/core/frame"
	"github.com/ingyamilmolinar/polyrhythm/core/render"
	game_log "github.com/ingyamilmolinar/polyrhythm/internal/log"
)

const DefaultTick = 16 * time.Millisecond // ~60 FPS

// App runs the visualizer against a tcell screen. Tick and HandleEvent must
// be called from one goroutine; Run does that.
type App struct {
	screen tcell.Screen
	loop   *frame.Loop
	vis    *engine.Visualizer
	pass   *render.Pass
	log    *game_log.Logger

	dirty bool
}

func New(screen tcell.Screen, loop *frame.Loop, vis *engine.Visualizer, logger *game_log.Logger) *App {
	if logger == nil {
		logger = game_log.Discard()
	}
	a := &App{screen: screen, loop: loop, vis: vis, pass: render.NewPass(), log: logger, dirty: true}
	a.pass.StatusHeight = 1
	vis.SetRenderer(func(render.Frame) { a.dirty = true })
	return a
}

// Tick pumps the frame loop and repaints when something changed or an
// animation is still fading.
func (a *App) Tick() {
	a.loop.Pump()
	f := a.vis.Frame()
	if !a.dirty && len(f.Voices) == 0 {
		return
	}
	a.dirty = false
	if err := a.pass.Draw(NewSurface(a.screen), f); err != nil {
		a.log.Debugf("[TUI] skipped frame: %v", err)
		return
	}
	a.screen.Show()
}

// HandleEvent applies one terminal event and reports whether to keep running.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.dirty = true
	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	s := a.vis.Settings()
	changed := true
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		s.Rhythm.BaseSpeed += 0.05
	case tcell.KeyDown:
		s.Rhythm.BaseSpeed -= 0.05
	case tcell.KeyRight:
		s.Rhythm.SpeedRatio += 0.01
	case tcell.KeyLeft:
		s.Rhythm.SpeedRatio -= 0.01
	case tcell.KeyRune:
		changed = false
		switch r := ev.Rune(); {
		case r == 'q':
			return false
		case r == ' ':
			a.vis.TogglePlay()
		case r == 'r':
			a.vis.Reset()
		case r == '+' || r == '=':
			s.Rhythm.NodeCount++
			changed = true
		case r == '-':
			s.Rhythm.NodeCount--
			changed = true
		case r == 's':
			s = s.WithScale(s.Scale.Next(), s.Root, s.BaseOctave)
			changed = true
		case r >= '1' && r <= '9':
			if i := int(r - '1'); i < len(s.Nodes) {
				s.Nodes[i].Enabled = !s.Nodes[i].Enabled
				changed = true
			}
		}
	default:
		changed = false
	}
	if changed {
		a.vis.OnSettingsChanged(s)
	}
	a.dirty = true
	return true
}

// Run polls terminal events and ticks until ctx ends or the user quits.
func (a *App) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = DefaultTick
	}
	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	go a.screen.ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	a.log.Infof("[TUI] running at %v per tick", tick)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !a.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			a.Tick()
		}
	}
}
