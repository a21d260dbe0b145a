package tui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ingyamilmolinar/polyrhythm/core/engine"
	"github.com/ingyamilmolinar/polyrhythm/core/frame"
	"github.com/ingyamilmolinar/polyrhythm/core/model"
	"github.com/ingyamilmolinar/polyrhythm/core/voice"
	game_log "github.com/ingyamilmolinar/polyrhythm/internal/log"
)

type silent struct{ notes int }

func (s *silent) TriggerNote(context.Context, voice.Note) error {
	s.notes++
	return nil
}

type fixture struct {
	now    time.Time
	screen tcell.SimulationScreen
	loop   *frame.Loop
	vis    *engine.Visualizer
	audio  *silent
	app    *App
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
	f.app.Tick()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Unix(500, 0), audio: &silent{}}
	f.screen = tcell.NewSimulationScreen("UTF-8")
	if err := f.screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(f.screen.Fini)
	f.screen.SetSize(80, 24)

	logger := game_log.New(io.Discard, game_log.LevelError)
	f.loop = frame.NewLoop(func() time.Time { return f.now })
	s := model.Defaults()
	s.Rhythm.NodeCount = 4
	f.vis = engine.New(engine.Options{
		Clock:    f.loop,
		Timers:   f.loop,
		Audio:    f.audio,
		Logger:   logger,
		Settings: s,
		Dispatch: func(fn func()) { fn() },
	})
	t.Cleanup(f.vis.Close)
	f.app = New(f.screen, f.loop, f.vis, logger)
	return f
}

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func char(r rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone) }

func screenText(s tcell.SimulationScreen, row int) string {
	w, _ := s.Size()
	out := make([]rune, 0, w)
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, row)
		out = append(out, r)
	}
	return string(out)
}

func TestFirstTickDrawsStatus(t *testing.T) {
	f := newFixture(t)
	f.app.Tick()
	line := screenText(f.screen, 0)
	if want := "PAUSED"; !strings.Contains(line, want) {
		t.Fatalf("status line %q missing %q", line, want)
	}
}

func TestSpaceTogglesPlay(t *testing.T) {
	f := newFixture(t)
	if !f.app.HandleEvent(char(' ')) {
		t.Fatalf("space quit the app")
	}
	if !f.vis.Playing() {
		t.Fatalf("space did not start playback")
	}
	f.app.Tick()
	f.advance(16 * time.Millisecond)
	if f.vis.Nodes()[0].Position == 0.5 {
		t.Fatalf("nodes did not move while playing")
	}
	f.app.HandleEvent(char(' '))
	if f.vis.Playing() {
		t.Fatalf("second space did not pause")
	}
}

func TestKeysEditSettings(t *testing.T) {
	f := newFixture(t)
	base := f.vis.Settings()

	f.app.HandleEvent(key(tcell.KeyUp))
	if got := f.vis.Settings().Rhythm.BaseSpeed; got <= base.Rhythm.BaseSpeed {
		t.Fatalf("up arrow: base speed %v", got)
	}
	f.app.HandleEvent(key(tcell.KeyRight))
	if got := f.vis.Settings().Rhythm.SpeedRatio; got <= base.Rhythm.SpeedRatio {
		t.Fatalf("right arrow: ratio %v", got)
	}
	f.app.HandleEvent(char('+'))
	if n := len(f.vis.Nodes()); n != 5 {
		t.Fatalf("plus: %d nodes", n)
	}
	f.app.HandleEvent(char('-'))
	if n := len(f.vis.Nodes()); n != 4 {
		t.Fatalf("minus: %d nodes", n)
	}
	f.app.HandleEvent(char('2'))
	if f.vis.Settings().Nodes[1].Enabled {
		t.Fatalf("digit did not disable node 2")
	}
	f.app.HandleEvent(char('s'))
	if f.vis.Settings().Scale == base.Scale {
		t.Fatalf("s did not change scale")
	}
}

func TestResetKey(t *testing.T) {
	f := newFixture(t)
	f.app.HandleEvent(char(' '))
	f.app.Tick()
	f.advance(200 * time.Millisecond)
	f.app.HandleEvent(char('r'))
	for i, n := range f.vis.Nodes() {
		if n.Position != 0.5 {
			t.Fatalf("node %d at %v after reset", i, n.Position)
		}
	}
}

func TestQuitKeys(t *testing.T) {
	f := newFixture(t)
	for _, ev := range []*tcell.EventKey{char('q'), key(tcell.KeyEscape), key(tcell.KeyCtrlC)} {
		if f.app.HandleEvent(ev) {
			t.Fatalf("%v did not quit", ev.Name())
		}
	}
}

func TestResizeRepaints(t *testing.T) {
	f := newFixture(t)
	f.app.Tick()
	f.screen.SetSize(60, 20)
	f.app.HandleEvent(tcell.NewEventResize(60, 20))
	f.app.Tick()
	line := screenText(f.screen, 0)
	if !strings.Contains(line, "BPM") {
		t.Fatalf("status not redrawn after resize: %q", line)
	}
}

func TestHitsReachAudio(t *testing.T) {
	f := newFixture(t)
	f.app.HandleEvent(char(' '))
	f.app.Tick()
	for i := 0; i < 60; i++ {
		f.advance(16 * time.Millisecond)
	}
	if f.audio.notes == 0 {
		t.Fatalf("no notes after a second of playback")
	}
}

func TestRunStopsOnContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.app.Run(ctx, time.Millisecond); err != context.Canceled {
		t.Fatalf("Run returned %v", err)
	}
}
