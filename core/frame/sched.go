package frame

import (
	"time"

	game_log "github.com/ingyamilmolinar/polyrhythm/internal/log"
)

// RedrawEpsilon is the displacement, in normalized units, below which a tick
// does not repaint on its own.
const RedrawEpsilon = 1e-4

// Scheduler drives Step once per display frame while running.
type Scheduler struct {
	clock Clock
	log   *game_log.Logger

	// Step advances the simulation by dt and returns the largest displacement
	// it produced.
	Step func(dt time.Duration) float64
	// Render paints the current state.
	Render func()

	running   bool
	scheduled bool
	handle    Handle
	last      time.Time
	redraw    bool
	ticks     int
}

func NewScheduler(clock Clock, logger *game_log.Logger) *Scheduler {
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Scheduler{clock: clock, log: logger}
}

// Start begins ticking. Calling Start while running does nothing.
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.last = s.clock.Now()
	s.log.Debugf("[SCHED] start at %v", s.last)
	s.schedule()
}

// Stop cancels the pending frame, if any. Safe to call repeatedly.
func (s *Scheduler) Stop() {
	if !s.running && !s.scheduled {
		return
	}
	s.running = false
	if s.scheduled {
		s.clock.CancelFrame(s.handle)
		s.scheduled = false
	}
	s.log.Debugf("[SCHED] stop after %d ticks", s.ticks)
}

func (s *Scheduler) Running() bool { return s.running }

// Ticks returns the number of frames handled since creation.
func (s *Scheduler) Ticks() int { return s.ticks }

// RequestRedraw forces the next tick to render even without motion. When the
// scheduler is stopped the render happens immediately.
func (s *Scheduler) RequestRedraw() {
	if !s.running {
		s.render()
		return
	}
	s.redraw = true
}

func (s *Scheduler) schedule() {
	if s.scheduled {
		return
	}
	s.scheduled = true
	s.handle = s.clock.RequestFrame(s.tick)
}

func (s *Scheduler) tick(ts time.Time) {
	s.scheduled = false
	if !s.running {
		return
	}
	s.ticks++

	dt := ts.Sub(s.last)
	if dt < 0 {
		dt = 0
	}
	if ts.After(s.last) {
		s.last = ts
	}

	var moved float64
	if s.Step != nil {
		moved = s.Step(dt)
	}
	if moved > RedrawEpsilon || s.redraw {
		s.redraw = false
		s.render()
	}

	if s.running {
		s.schedule()
	}
}

func (s *Scheduler) render() {
	if s.Render != nil {
		s.Render()
	}
}
