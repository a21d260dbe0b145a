package ui

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sqweek/dialog"

	"github.com/ingyamilmolinar/polyrhythm/core/engine"
	"github.com/ingyamilmolinar/polyrhythm/core/frame"
	"github.com/ingyamilmolinar/polyrhythm/core/model"
	"github.com/ingyamilmolinar/polyrhythm/internal/config"
	game_log "github.com/ingyamilmolinar/polyrhythm/internal/log"
)

var testLogger = game_log.New(io.Discard, game_log.LevelError)

type fakeInput struct {
	x, y  int
	left  bool
	press map[ebiten.Key]bool
}

func (in *fakeInput) install(t *testing.T) {
	restore := SetInputForTest(
		func() (int, int) { return in.x, in.y },
		func(b ebiten.MouseButton) bool { return b == ebiten.MouseButtonLeft && in.left },
		func(k ebiten.Key) bool { return in.press[k] },
	)
	t.Cleanup(restore)
}

// tap presses k for exactly one Update.
func (in *fakeInput) tap(g *Game, k ebiten.Key) error {
	in.press = map[ebiten.Key]bool{k: true}
	err := g.Update()
	in.press = nil
	return err
}

type testGame struct {
	*Game
	now time.Time
	in  *fakeInput
}

func newTestGame(t *testing.T, settingsPath string) *testGame {
	tg := &testGame{now: time.Unix(10, 0), in: &fakeInput{x: -1, y: -1}}
	loop := frame.NewLoop(func() time.Time { return tg.now })
	vis := engine.New(engine.Options{Clock: loop, Timers: loop, Logger: testLogger, Settings: model.Defaults()})
	tg.Game = New(Options{Loop: loop, Visualizer: vis, Logger: testLogger, SettingsPath: settingsPath})
	tg.in.install(t)
	return tg
}

func (tg *testGame) step(d time.Duration) {
	tg.now = tg.now.Add(d)
	tg.Update()
}

func TestSpaceTogglesPlay(t *testing.T) {
	g := newTestGame(t, "")
	g.in.tap(g.Game, ebiten.KeySpace)
	if !g.vis.Playing() || !g.transport.Playing {
		t.Fatalf("space did not start playback")
	}
	start := g.vis.Nodes()[0].Position
	g.step(100 * time.Millisecond)
	if g.vis.Nodes()[0].Position == start {
		t.Fatalf("nodes did not move while playing")
	}
	g.in.tap(g.Game, ebiten.KeySpace)
	if g.vis.Playing() {
		t.Fatalf("space did not pause")
	}
}

func TestResetKey(t *testing.T) {
	g := newTestGame(t, "")
	g.in.tap(g.Game, ebiten.KeySpace)
	g.step(120 * time.Millisecond)
	g.in.tap(g.Game, ebiten.KeyR)
	if g.Position() != 0 {
		t.Fatalf("position %v after reset", g.Position())
	}
	for i, n := range g.vis.Nodes() {
		if n.Position != 0.5 || n.Velocity != 1 {
			t.Fatalf("node %d not reset: %+v", i, n)
		}
	}
}

func TestSettingKeys(t *testing.T) {
	g := newTestGame(t, "")
	before := g.vis.Settings()

	g.in.tap(g.Game, ebiten.KeyArrowUp)
	if got := g.vis.Settings().Rhythm.BaseSpeed; got <= before.Rhythm.BaseSpeed {
		t.Fatalf("arrow up did not raise speed: %v", got)
	}
	if g.transport.BPM != g.vis.Settings().Rhythm.BPM() {
		t.Fatalf("transport BPM not synced")
	}

	g.in.tap(g.Game, ebiten.KeyEqual)
	if n := len(g.vis.Nodes()); n != before.Rhythm.NodeCount+1 {
		t.Fatalf("= did not add a node: %d", n)
	}
	g.in.tap(g.Game, ebiten.KeyMinus)
	g.in.tap(g.Game, ebiten.KeyMinus)
	if n := len(g.vis.Nodes()); n != before.Rhythm.NodeCount-1 {
		t.Fatalf("- did not remove a node: %d", n)
	}

	g.in.tap(g.Game, ebiten.KeyS)
	if g.vis.Settings().Scale == before.Scale {
		t.Fatalf("s did not change scale")
	}

	g.in.tap(g.Game, ebiten.Key1)
	if g.vis.Settings().Nodes[0].Enabled {
		t.Fatalf("1 did not disable node 0")
	}
	if !before.Nodes[0].Enabled {
		t.Fatalf("settings snapshot was mutated")
	}
}

func TestQuitKey(t *testing.T) {
	g := newTestGame(t, "")
	if err := g.in.tap(g.Game, ebiten.KeyQ); !errors.Is(err, ebiten.Termination) {
		t.Fatalf("q returned %v", err)
	}
}

func TestTransportButtons(t *testing.T) {
	g := newTestGame(t, "")
	click := func(x, y int) {
		g.in.x, g.in.y, g.in.left = x, y, true
		g.Update()
		g.in.left = false
		g.Update()
	}
	click(g.transport.playRect.Min.X+1, g.transport.playRect.Min.Y+1)
	if !g.vis.Playing() {
		t.Fatalf("play button did not play")
	}
	click(g.transport.stopRect.Min.X+1, g.transport.stopRect.Min.Y+1)
	if g.vis.Playing() {
		t.Fatalf("stop button did not pause")
	}
}

func TestSliderDragChangesSettings(t *testing.T) {
	g := newTestGame(t, "")
	r := g.transport.Volume.Rect()
	g.in.x, g.in.y, g.in.left = r.Min.X, r.Min.Y+1, true
	g.Update()
	g.in.left = false
	g.Update()
	if v := g.vis.Settings().Rhythm.GlobalVolume; v != 0 {
		t.Fatalf("volume = %v, want 0 after dragging to the left end", v)
	}
}

func waitFor(t *testing.T, g *testGame, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met")
		}
		g.Update()
		time.Sleep(time.Millisecond)
	}
}

func TestImportSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.json")
	s := model.Defaults()
	s.Rhythm.NodeCount = 3
	if err := config.SaveSettings(path, s.Clamped()); err != nil {
		t.Fatal(err)
	}
	old := openSettingsDialog
	openSettingsDialog = func() (string, error) { return path, nil }
	defer func() { openSettingsDialog = old }()

	g := newTestGame(t, "")
	g.in.tap(g.Game, ebiten.KeyI)
	waitFor(t, g, func() bool { return len(g.vis.Nodes()) == 3 })
}

func TestDialogDoesNotBlockUpdate(t *testing.T) {
	release := make(chan struct{})
	old := openSettingsDialog
	openSettingsDialog = func() (string, error) {
		<-release
		return "", dialog.ErrCancelled
	}
	defer func() {
		close(release)
		openSettingsDialog = old
	}()

	g := newTestGame(t, "")
	done := make(chan struct{})
	go func() {
		g.in.tap(g.Game, ebiten.KeyI)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Update blocked on the file dialog")
	}
}

func TestExportSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	old := saveSettingsDialog
	saveSettingsDialog = func() (string, error) { return path, nil }
	defer func() { saveSettingsDialog = old }()

	g := newTestGame(t, "")
	g.in.tap(g.Game, ebiten.KeyArrowUp)
	g.in.tap(g.Game, ebiten.KeyE)
	want := g.vis.Settings().Rhythm.BaseSpeed
	waitFor(t, g, func() bool {
		s, err := config.LoadSettings(path)
		return err == nil && s.Rhythm.BaseSpeed == want
	})
}

func TestCloseSavesSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rhythm.json")
	g := newTestGame(t, path)
	g.in.tap(g.Game, ebiten.KeyEqual)
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	s, err := config.LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Rhythm.NodeCount != model.Defaults().Rhythm.NodeCount+1 {
		t.Fatalf("saved node count = %d", s.Rhythm.NodeCount)
	}
}

func TestPlaybackClockDrivesVisualizer(t *testing.T) {
	g := newTestGame(t, "")
	g.in.tap(g.Game, ebiten.KeySpace)
	g.step(100 * time.Millisecond)
	g.step(50 * time.Millisecond)
	if g.Position() != 150*time.Millisecond {
		t.Fatalf("position = %v, want 150ms", g.Position())
	}

	g.in.tap(g.Game, ebiten.KeySpace)
	g.step(time.Second)
	if g.vis.Playing() || g.Position() != 150*time.Millisecond {
		t.Fatalf("paused clock moved: playing=%v pos=%v", g.vis.Playing(), g.Position())
	}

	// rewinding to zero while paused puts the nodes back
	r := g.transport.resetRect
	g.in.x, g.in.y, g.in.left = r.Min.X+1, r.Min.Y+1, true
	g.Update()
	g.in.left = false
	for i, n := range g.vis.Nodes() {
		if n.Position != 0.5 || n.Velocity != 1 {
			t.Fatalf("node %d not reset by rewind: %+v", i, n)
		}
	}
}
