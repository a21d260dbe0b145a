// Package ui hosts the visualizer in an ebiten window.
package ui

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ncruces/zenity"
	"github.com/sqweek/dialog"

	"github.com/ingyamilmolinar/polyrhythm/core/engine"
	"github.com/ingyamilmolinar/polyrhythm/core/frame"
	"github.com/ingyamilmolinar/polyrhythm/core/model"
	"github.com/ingyamilmolinar/polyrhythm/core/render"
	"github.com/ingyamilmolinar/polyrhythm/internal/config"
	game_log "github.com/ingyamilmolinar/polyrhythm/internal/log"
)

const (
	speedStep = 0.05
	ratioStep = 0.01
)

// nodeKeys toggle the first nine nodes on and off.
var nodeKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

// Dialog hooks. They run off the game goroutine and are replaced in tests.
var (
	openSettingsDialog = func() (string, error) {
		return dialog.File().Filter("Rhythm settings", "json").Title("Import settings").Load()
	}
	saveSettingsDialog = func() (string, error) {
		dir, err := dialog.Directory().Title("Export settings to").Browse()
		if err != nil {
			return "", err
		}
		name, err := zenity.Entry("Preset name?", zenity.Title("Export settings"), zenity.EntryText("rhythm"))
		if err != nil {
			return "", err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return "", fmt.Errorf("preset name is required")
		}
		if !strings.HasSuffix(strings.ToLower(name), ".json") {
			name += ".json"
		}
		return filepath.Join(dir, name), nil
	}
	showError = func(err error) {
		_ = zenity.Error(err.Error(), zenity.Title("polyrhythm"))
	}
)

func cancelled(err error) bool {
	return errors.Is(err, dialog.ErrCancelled) || errors.Is(err, zenity.ErrCanceled)
}

type Options struct {
	Loop       *frame.Loop
	Visualizer *engine.Visualizer
	Logger     *game_log.Logger
	// SettingsPath is written on Close when set.
	SettingsPath string
}

// Game implements ebiten.Game. Update pumps the frame loop, so every
// visualizer call happens on the ebiten update goroutine.
type Game struct {
	loop      *frame.Loop
	vis       *engine.Visualizer
	pass      *render.Pass
	transport *Transport
	logger    *game_log.Logger

	// playback clock owned by the window; the visualizer follows it through
	// ObserveClock
	clockPlaying bool
	clockPos     time.Duration
	clockLast    time.Time

	settingsPath string
	pending      chan func()
	quit         bool
	drawErr      bool

	winW, winH int
}

func New(opts Options) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = game_log.Discard()
	}
	g := &Game{
		loop:         opts.Loop,
		vis:          opts.Visualizer,
		pass:         render.NewPass(),
		transport:    NewTransport(opts.Visualizer.Settings()),
		logger:       logger,
		settingsPath: opts.SettingsPath,
		pending:      make(chan func(), 8),
	}
	return g
}

func (g *Game) Layout(w, h int) (int, int) {
	if w != g.winW || h != g.winH {
		g.logger.Debugf("[GAME] Layout: winW: %d, winH: %d", w, h)
	}
	g.winW, g.winH = w, h
	g.transport.Layout(w)
	return w, h
}

func (g *Game) Update() error {
	g.drainPending()
	g.advanceClock()

	ev := g.transport.Update()
	switch {
	case ev.Play:
		g.clockPlaying = true
	case ev.Stop:
		g.clockPlaying = false
	case ev.Reset:
		g.clockPos = 0
	}
	if ev.Changed {
		g.vis.OnSettingsChanged(g.transport.Apply(g.vis.Settings(), ev))
	}

	g.handleKeys()
	if g.quit {
		return ebiten.Termination
	}

	g.vis.ObserveClock(g.clockPlaying, g.clockPos)
	g.loop.Pump()
	g.transport.Sync(g.vis.Settings(), g.vis.Playing())
	return nil
}

// advanceClock moves the playback position by the time elapsed since the
// previous Update while playing.
func (g *Game) advanceClock() {
	now := g.loop.Now()
	if g.clockPlaying && !g.clockLast.IsZero() && now.After(g.clockLast) {
		g.clockPos += now.Sub(g.clockLast)
	}
	g.clockLast = now
}

// Position is the playback position of the window's transport.
func (g *Game) Position() time.Duration { return g.clockPos }

func (g *Game) drainPending() {
	for {
		select {
		case fn := <-g.pending:
			fn()
		default:
			return
		}
	}
}

func (g *Game) handleKeys() {
	s := g.vis.Settings()
	changed := false
	switch {
	case isKeyJustPressed(ebiten.KeySpace):
		g.clockPlaying = !g.clockPlaying
	case isKeyJustPressed(ebiten.KeyR):
		g.clockPos = 0
	case isKeyJustPressed(ebiten.KeyArrowUp):
		s.Rhythm.BaseSpeed += speedStep
		changed = true
	case isKeyJustPressed(ebiten.KeyArrowDown):
		s.Rhythm.BaseSpeed -= speedStep
		changed = true
	case isKeyJustPressed(ebiten.KeyArrowRight):
		s.Rhythm.SpeedRatio += ratioStep
		changed = true
	case isKeyJustPressed(ebiten.KeyArrowLeft):
		s.Rhythm.SpeedRatio -= ratioStep
		changed = true
	case isKeyJustPressed(ebiten.KeyEqual):
		s.Rhythm.NodeCount++
		changed = true
	case isKeyJustPressed(ebiten.KeyMinus):
		s.Rhythm.NodeCount--
		changed = true
	case isKeyJustPressed(ebiten.KeyS):
		s = s.WithScale(s.Scale.Next(), s.Root, s.BaseOctave)
		changed = true
	case isKeyJustPressed(ebiten.KeyI):
		g.importSettings()
	case isKeyJustPressed(ebiten.KeyE):
		g.exportSettings(s)
	case isKeyJustPressed(ebiten.KeyQ), isKeyJustPressed(ebiten.KeyEscape):
		g.quit = true
	default:
		for i, k := range nodeKeys {
			if isKeyJustPressed(k) && i < len(s.Nodes) {
				s.Nodes[i].Enabled = !s.Nodes[i].Enabled
				changed = true
			}
		}
	}
	if changed {
		g.vis.OnSettingsChanged(s)
	}
}

func (g *Game) importSettings() {
	go func() {
		path, err := openSettingsDialog()
		if err != nil {
			g.dialogFailed("import", err)
			return
		}
		s, err := config.LoadSettings(path)
		if err != nil {
			g.dialogFailed("import", err)
			return
		}
		g.pending <- func() {
			g.vis.OnSettingsChanged(s)
			g.logger.Infof("[GAME] imported settings from %s", path)
		}
	}()
}

func (g *Game) exportSettings(s model.Settings) {
	go func() {
		path, err := saveSettingsDialog()
		if err != nil {
			g.dialogFailed("export", err)
			return
		}
		if err := config.SaveSettings(path, s); err != nil {
			g.dialogFailed("export", err)
			return
		}
		g.pending <- func() { g.logger.Infof("[GAME] exported settings to %s", path) }
	}()
}

func (g *Game) dialogFailed(what string, err error) {
	if cancelled(err) {
		return
	}
	g.pending <- func() { g.logger.Errorf("[GAME] %s settings: %v", what, err) }
	showError(fmt.Errorf("%s settings: %w", what, err))
}

func (g *Game) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	view := screen.SubImage(image.Rect(b.Min.X, b.Min.Y+barHeight, b.Max.X, b.Max.Y)).(*ebiten.Image)
	if err := g.pass.Draw(NewSurface(view), g.vis.Frame()); err != nil {
		if !g.drawErr {
			g.logger.Warnf("[GAME] skipped frame: %v", err)
		}
		g.drawErr = true
	} else {
		g.drawErr = false
	}
	g.transport.Draw(screen)
}

// Close stops the visualizer and saves settings when a path was configured.
func (g *Game) Close() error {
	g.vis.Close()
	if g.settingsPath == "" {
		return nil
	}
	if err := config.SaveSettings(g.settingsPath, g.vis.Settings()); err != nil {
		return err
	}
	g.logger.Infof("[GAME] saved settings to %s", g.settingsPath)
	return nil
}

// Run opens the window and blocks until it closes.
func Run(cfg config.Config, g *Game) error {
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Window.TPS)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	if cerr := g.Close(); err == nil {
		err = cerr
	}
	return err
}
