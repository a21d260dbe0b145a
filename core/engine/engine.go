// Package engine wires the simulation, trigger, voice pool and scheduler into
// one visualizer driven by a frame clock.
package engine

import (
	"context"
	"time"

	"github.com/ingyamilmolinar/polyrhythm/core/frame"
	"github.com/ingyamilmolinar/polyrhythm/core/model"
	"github.com/ingyamilmolinar/polyrhythm/core/render"
	"github.com/ingyamilmolinar/polyrhythm/core/sim"
	"github.com/ingyamilmolinar/polyrhythm/core/trigger"
	"github.com/ingyamilmolinar/polyrhythm/core/voice"
	game_log "github.com/ingyamilmolinar/polyrhythm/internal/log"
)

const DefaultSweepInterval = time.Second

// Options configure a Visualizer. Clock and Timers are required; a
// frame.Loop provides both.
type Options struct {
	Clock  frame.Clock
	Timers frame.Timers
	Audio  voice.NoteTrigger
	Logger *game_log.Logger

	Settings      model.Settings
	MaxVoices     int
	Grace         time.Duration
	Dispatch      func(func())
	SweepInterval time.Duration
}

// Visualizer owns the moving parts and exposes the transport controls.
// Every method must be called from the goroutine that pumps the clock.
type Visualizer struct {
	clock  frame.Clock
	timers frame.Timers
	log    *game_log.Logger

	settings model.Settings
	sim      *sim.Simulation
	pool     *voice.Pool
	trig     *trigger.Trigger
	sched    *frame.Scheduler

	ctx    context.Context
	cancel context.CancelFunc

	sweepEvery time.Duration
	sweepH     frame.Handle

	playing  bool
	observed time.Duration
	lastHit  []time.Time
	renderer func(render.Frame)
	closed   bool
}

// New creates a Visualizer with nodes initialized from opts.Settings. It does
// not start playing.
func New(opts Options) *Visualizer {
	logger := opts.Logger
	if logger == nil {
		logger = game_log.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())

	v := &Visualizer{
		clock:      opts.Clock,
		timers:     opts.Timers,
		log:        logger,
		settings:   opts.Settings.Clamped(),
		sim:        sim.New(logger),
		ctx:        ctx,
		cancel:     cancel,
		sweepEvery: opts.SweepInterval,
	}
	if v.sweepEvery <= 0 {
		v.sweepEvery = DefaultSweepInterval
	}

	poolOpts := []voice.Option{voice.WithLogger(logger), voice.WithContext(ctx)}
	if opts.MaxVoices > 0 {
		poolOpts = append(poolOpts, voice.WithMaxVoices(opts.MaxVoices))
	}
	if opts.Grace > 0 {
		poolOpts = append(poolOpts, voice.WithGrace(opts.Grace))
	}
	if opts.Dispatch != nil {
		poolOpts = append(poolOpts, voice.WithDispatch(opts.Dispatch))
	}
	v.pool = voice.New(opts.Audio, opts.Timers, opts.Clock.Now, poolOpts...)
	v.trig = trigger.New(v.pool, logger)
	v.trig.OnHit(v.recordHit)

	v.sched = frame.NewScheduler(opts.Clock, logger)
	v.sched.Step = v.step
	v.sched.Render = v.render

	v.sim.Initialize(v.settings.Rhythm.NodeCount, v.settings.Rhythm.SpeedFunc())
	v.lastHit = make([]time.Time, v.settings.Rhythm.NodeCount)
	v.scheduleSweep()

	logger.Infof("[ENGINE] visualizer ready: %d nodes, %.0f BPM, %d voices", v.settings.Rhythm.NodeCount, v.settings.Rhythm.BPM(), v.pool.MaxVoices())
	return v
}

func (v *Visualizer) step(dt time.Duration) float64 {
	events, moved := v.sim.Step(dt)
	if len(events) > 0 {
		v.trig.HandleEvents(events, v.settings)
	}
	return moved
}

func (v *Visualizer) render() {
	if v.renderer != nil {
		v.renderer(v.Frame())
	}
}

func (v *Visualizer) recordHit(h trigger.Hit) {
	if h.Index >= 0 && h.Index < len(v.lastHit) {
		v.lastHit[h.Index] = v.clock.Now()
	}
}

func (v *Visualizer) scheduleSweep() {
	v.sweepH = v.timers.AfterFunc(v.sweepEvery, func() {
		if v.closed {
			return
		}
		v.pool.SweepExpired(v.clock.Now())
		v.scheduleSweep()
	})
}

// Play starts the frame loop. It does nothing when already playing.
func (v *Visualizer) Play() {
	if v.closed || v.playing {
		return
	}
	v.playing = true
	v.sched.Start()
	v.log.Infof("[ENGINE] play")
}

// Pause stops the frame loop. Voices already sounding run out on their own.
func (v *Visualizer) Pause() {
	if !v.playing {
		return
	}
	v.playing = false
	v.sched.Stop()
	v.sched.RequestRedraw()
	v.log.Infof("[ENGINE] pause")
}

func (v *Visualizer) TogglePlay() {
	if v.playing {
		v.Pause()
		return
	}
	v.Play()
}

func (v *Visualizer) Playing() bool { return v.playing }

// ObserveClock applies an external playback clock: a stopped to playing
// edge plays, the reverse pauses, and time falling from positive back to zero
// resets the nodes.
func (v *Visualizer) ObserveClock(playing bool, current time.Duration) {
	switch {
	case playing && !v.playing:
		v.Play()
	case !playing && v.playing:
		v.Pause()
	}
	if v.observed > 0 && current == 0 {
		v.Reset()
	}
	v.observed = current
}

// Reset puts every node back at its initial position, silences the pool and
// repaints. Speeds come from the current settings.
func (v *Visualizer) Reset() {
	v.sim.Reset(v.settings.Rhythm.SpeedFunc())
	v.pool.StopAll()
	for i := range v.lastHit {
		v.lastHit[i] = time.Time{}
	}
	v.sched.RequestRedraw()
	v.log.Debugf("[ENGINE] reset")
}

// OnSettingsChanged applies new settings. A node count change rebuilds the
// nodes; any other change only recomputes speeds. Positions are never reset
// here.
func (v *Visualizer) OnSettingsChanged(s model.Settings) {
	s = s.Clamped()
	old := v.settings
	v.settings = s
	switch {
	case s.Rhythm.NodeCount != old.Rhythm.NodeCount:
		v.sim.Resize(s.Rhythm.NodeCount, s.Rhythm.SpeedFunc())
		v.lastHit = make([]time.Time, s.Rhythm.NodeCount)
		v.log.Debugf("[ENGINE] node count %d -> %d", old.Rhythm.NodeCount, s.Rhythm.NodeCount)
	case !s.Rhythm.SameSpeeds(old.Rhythm):
		v.sim.SetSpeeds(s.Rhythm.SpeedFunc())
		v.log.Debugf("[ENGINE] speeds updated, %.0f BPM", s.Rhythm.BPM())
	}
	v.sched.RequestRedraw()
}

// Settings returns a copy of the current settings; callers may edit it and
// pass it back through OnSettingsChanged.
func (v *Visualizer) Settings() model.Settings {
	s := v.settings
	s.Nodes = append([]model.NodeConfig(nil), v.settings.Nodes...)
	return s
}

// Nodes returns a copy of the current node state.
func (v *Visualizer) Nodes() []sim.Node { return v.sim.Nodes() }

func (v *Visualizer) Stats() voice.Stats { return v.pool.Stats() }

// Frame snapshots everything a render pass needs.
func (v *Visualizer) Frame() render.Frame {
	hits := make([]time.Time, len(v.lastHit))
	copy(hits, v.lastHit)
	return render.Frame{
		Now:       v.clock.Now(),
		Playing:   v.playing,
		BPM:       v.settings.Rhythm.BPM(),
		Nodes:     v.sim.Nodes(),
		Configs:   v.settings.Nodes,
		Voices:    v.pool.Voices(),
		LastHit:   hits,
		MaxVoices: v.pool.MaxVoices(),
		Stats:     v.pool.Stats(),
	}
}

// SetRenderer sets the function called whenever the scheduler decides the
// state changed enough to repaint.
func (v *Visualizer) SetRenderer(fn func(render.Frame)) { v.renderer = fn }

// RequestRedraw asks for a repaint on the next tick, or now when paused.
func (v *Visualizer) RequestRedraw() { v.sched.RequestRedraw() }

// OnHit registers a listener for every node reflection.
func (v *Visualizer) OnHit(fn func(trigger.Hit)) { v.trig.OnHit(fn) }

// Close stops the loop, silences every voice and cancels the sweep timer.
// Engine calls still in flight see a cancelled context.
func (v *Visualizer) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.playing = false
	v.sched.Stop()
	v.pool.StopAll()
	v.timers.Cancel(v.sweepH)
	v.cancel()
	v.log.Infof("[ENGINE] closed")
}
