// Package voice bounds concurrent note production and keeps the bookkeeping
// the renderer uses for per-node feedback.
package voice

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/ingyamilmolinar/polyrhythm/core/frame"
	game_log "github.com/ingyamilmolinar/polyrhythm/internal/log"
)

const (
	DefaultMaxVoices = 16
	DefaultGrace     = 500 * time.Millisecond
)

// ErrNotReady is returned by note triggers whose output device is not open
// yet.
var ErrNotReady = errors.New("audio engine not ready")

// Note is one trigger request for the audio engine.
type Note struct {
	Frequency float64
	Duration  time.Duration
	Velocity  float64
}

// NoteTrigger is the audio engine as seen by the pool.
type NoteTrigger interface {
	TriggerNote(ctx context.Context, n Note) error
}

type ID uint64

// State is the lifecycle position of a voice. Creation and activation are a
// single step, so there is no observable pending state.
type State int

const (
	StateActive State = iota
	StateExpired
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	default:
		return "removed"
	}
}

// Voice is a snapshot of one sounding (or fading) note.
type Voice struct {
	ID        ID
	NodeIndex int
	StartTime time.Time
	Duration  time.Duration
	Frequency float64
	Volume    float64
	Active    bool
}

// Age is the time since the voice started.
func (v Voice) Age(now time.Time) time.Duration { return now.Sub(v.StartTime) }

type entry struct {
	Voice
	state   State
	expireH frame.Handle
	removeH frame.Handle
}

// Stats counts trigger outcomes since the pool was created.
type Stats struct {
	Triggered int64
	Dropped   int64
	Failed    int64
}

type Pool struct {
	engine   NoteTrigger
	timers   frame.Timers
	now      func() time.Time
	ctx      context.Context
	dispatch func(func())
	log      *game_log.Logger

	max   int
	grace time.Duration

	next    ID
	entries map[ID]*entry

	triggered int64
	dropped   int64
	failed    atomic.Int64
}

type Option func(*Pool)

func WithMaxVoices(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.max = n
		}
	}
}

func WithGrace(d time.Duration) Option {
	return func(p *Pool) {
		if d >= 0 {
			p.grace = d
		}
	}
}

// WithDispatch replaces the function that runs engine calls. The default
// starts a goroutine per note; tests pass a synchronous runner.
func WithDispatch(fn func(func())) Option {
	return func(p *Pool) {
		if fn != nil {
			p.dispatch = fn
		}
	}
}

func WithLogger(l *game_log.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

// WithContext sets the context passed to every engine call.
func WithContext(ctx context.Context) Option {
	return func(p *Pool) {
		if ctx != nil {
			p.ctx = ctx
		}
	}
}

// New builds a pool. timers drive expiry and removal; now must be the same
// clock those timers run on.
func New(engine NoteTrigger, timers frame.Timers, now func() time.Time, opts ...Option) *Pool {
	p := &Pool{
		engine:   engine,
		timers:   timers,
		now:      now,
		ctx:      context.Background(),
		dispatch: func(fn func()) { go fn() },
		log:      game_log.Discard(),
		max:      DefaultMaxVoices,
		grace:    DefaultGrace,
		entries:  map[ID]*entry{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pool) MaxVoices() int        { return p.max }
func (p *Pool) Grace() time.Duration { return p.grace }

// TryTrigger allocates a voice and fires the note at the engine without
// waiting for it. When max voices are already active it returns false and
// the engine is not called. An engine error is logged; the voice still
// occupies its slot for the full duration.
func (p *Pool) TryTrigger(nodeIndex int, frequency float64, duration time.Duration, volume float64) (ID, bool) {
	if p.CountActive() >= p.max {
		p.dropped++
		p.log.Debugf("[VOICE] pool full (%d), dropped note for node %d", p.max, nodeIndex)
		return 0, false
	}

	p.next++
	id := p.next
	e := &entry{
		Voice: Voice{
			ID:        id,
			NodeIndex: nodeIndex,
			StartTime: p.now(),
			Duration:  duration,
			Frequency: frequency,
			Volume:    volume,
			Active:    true,
		},
		state: StateActive,
	}
	p.entries[id] = e
	e.expireH = p.timers.AfterFunc(duration, func() { p.Expire(id) })
	p.triggered++

	if p.engine != nil {
		note := Note{Frequency: frequency, Duration: duration, Velocity: volume}
		engine, ctx := p.engine, p.ctx
		p.dispatch(func() {
			if err := engine.TriggerNote(ctx, note); err != nil {
				p.failed.Add(1)
				p.log.Debugf("[VOICE] trigger node=%d freq=%.2f failed: %v", nodeIndex, frequency, err)
			}
		})
	}
	p.log.Debugf("[VOICE] voice %d node=%d freq=%.2f dur=%v vol=%.2f", id, nodeIndex, frequency, duration, volume)
	return id, true
}

// Expire marks a voice inactive and schedules its removal after the grace
// period. Unknown or already expired ids are ignored.
func (p *Pool) Expire(id ID) {
	e, ok := p.entries[id]
	if !ok || e.state != StateActive {
		return
	}
	p.timers.Cancel(e.expireH)
	e.expireH = 0
	e.Active = false
	e.state = StateExpired
	e.removeH = p.timers.AfterFunc(p.grace, func() { p.remove(id) })
}

func (p *Pool) remove(id ID) {
	e, ok := p.entries[id]
	if !ok {
		return
	}
	if e.expireH != 0 {
		p.timers.Cancel(e.expireH)
	}
	if e.removeH != 0 {
		p.timers.Cancel(e.removeH)
	}
	e.state = StateRemoved
	delete(p.entries, id)
}

// SweepExpired expires voices past their duration and removes expired voices
// past their grace period. It repairs missed or late timers and may be called
// at any interval.
func (p *Pool) SweepExpired(now time.Time) {
	for _, id := range p.ids() {
		e := p.entries[id]
		end := e.StartTime.Add(e.Duration)
		if e.state == StateActive && !now.Before(end) {
			p.Expire(id)
		}
		if e.state == StateExpired && !now.Before(end.Add(p.grace)) {
			p.remove(id)
		}
	}
}

// CountActive returns the number of active voices.
func (p *Pool) CountActive() int {
	n := 0
	for _, e := range p.entries {
		if e.Active {
			n++
		}
	}
	return n
}

// CountActiveFor returns the number of active voices triggered by one node.
func (p *Pool) CountActiveFor(nodeIndex int) int {
	n := 0
	for _, e := range p.entries {
		if e.Active && e.NodeIndex == nodeIndex {
			n++
		}
	}
	return n
}

// Len returns the number of tracked voices, active or in grace.
func (p *Pool) Len() int { return len(p.entries) }

// State reports where id is in its lifecycle. Unknown ids are removed.
func (p *Pool) State(id ID) State {
	if e, ok := p.entries[id]; ok {
		return e.state
	}
	return StateRemoved
}

// StopAll cancels every pending timer and forgets every voice.
func (p *Pool) StopAll() {
	for id, e := range p.entries {
		if e.expireH != 0 {
			p.timers.Cancel(e.expireH)
		}
		if e.removeH != 0 {
			p.timers.Cancel(e.removeH)
		}
		e.Active = false
		e.state = StateRemoved
		delete(p.entries, id)
	}
	p.log.Debugf("[VOICE] stopped all voices")
}

// Voices returns a snapshot of tracked voices ordered by id.
func (p *Pool) Voices() []Voice {
	ids := p.ids()
	out := make([]Voice, len(ids))
	for i, id := range ids {
		out[i] = p.entries[id].Voice
	}
	return out
}

func (p *Pool) Stats() Stats {
	return Stats{Triggered: p.triggered, Dropped: p.dropped, Failed: p.failed.Load()}
}

func (p *Pool) ids() []ID {
	ids := make([]ID, 0, len(p.entries))
	for id := range p.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
