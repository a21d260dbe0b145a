// Package trigger turns boundary reflections into note requests.
package trigger

import (
	"time"

	"github.com/ingyamilmolinar/polyrhythm/core/model"
	"github.com/ingyamilmolinar/polyrhythm/core/sim"
	"github.com/ingyamilmolinar/polyrhythm/core/voice"
	game_log "github.com/ingyamilmolinar/polyrhythm/internal/log"
)

// Default trigger velocities. Top hits are accented.
const (
	TopVelocity    = 0.8
	BottomVelocity = 0.6
)

// VoiceStarter is the part of the voice pool the trigger needs.
type VoiceStarter interface {
	TryTrigger(nodeIndex int, frequency float64, duration time.Duration, volume float64) (voice.ID, bool)
}

// Hit is raised for every reflection, sounded or not, so the UI can flash
// the node.
type Hit struct {
	Index   int
	Edge    sim.Edge
	Sounded bool
	Voice   voice.ID
}

type Trigger struct {
	pool      VoiceStarter
	log       *game_log.Logger
	listeners []func(Hit)
}

func New(pool VoiceStarter, logger *game_log.Logger) *Trigger {
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Trigger{pool: pool, log: logger}
}

// OnHit registers a listener for hit events.
func (t *Trigger) OnHit(fn func(Hit)) {
	t.listeners = append(t.listeners, fn)
}

// Velocity returns the trigger velocity for an edge.
func Velocity(e sim.Edge) float64 {
	if e == sim.EdgeTop {
		return TopVelocity
	}
	return BottomVelocity
}

// OnBoundaryEvent requests a note for ev unless the node is disabled. A
// refused request is not an error: the hit event still fires and the
// simulation carries on.
func (t *Trigger) OnBoundaryEvent(ev sim.BoundaryEvent, cfg model.NodeConfig, globalVolume float64) Hit {
	hit := Hit{Index: ev.Index, Edge: ev.Edge}
	if cfg.Enabled && t.pool != nil {
		vol := Velocity(ev.Edge) * cfg.Volume * globalVolume
		id, ok := t.pool.TryTrigger(ev.Index, cfg.Frequency(), cfg.Duration, vol)
		hit.Sounded, hit.Voice = ok, id
		if !ok {
			t.log.Debugf("[TRIGGER] node %d %s hit not sounded", ev.Index, ev.Edge)
		}
	}
	t.emit(hit)
	return hit
}

// HandleEvents processes one tick's events in order, looking up each node's
// configuration in s.
func (t *Trigger) HandleEvents(events []sim.BoundaryEvent, s model.Settings) []Hit {
	if len(events) == 0 {
		return nil
	}
	hits := make([]Hit, 0, len(events))
	for _, ev := range events {
		hits = append(hits, t.OnBoundaryEvent(ev, s.Node(ev.Index), s.Rhythm.GlobalVolume))
	}
	return hits
}

func (t *Trigger) emit(h Hit) {
	for _, fn := range t.listeners {
		fn(h)
	}
}
