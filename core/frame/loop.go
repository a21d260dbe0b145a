package frame

import (
	"sort"
	"time"
)

// Handle identifies a pending frame request or timer. The zero Handle is
// never issued.
type Handle uint64

// Clock is the host's frame primitive.
type Clock interface {
	Now() time.Time
	RequestFrame(cb func(ts time.Time)) Handle
	CancelFrame(h Handle)
}

// Timers schedules one-shot callbacks on the same cooperative loop.
type Timers interface {
	AfterFunc(d time.Duration, fn func()) Handle
	Cancel(h Handle)
}

type frameReq struct {
	h  Handle
	cb func(time.Time)
}

type timer struct {
	h   Handle
	at  time.Time
	seq uint64
	fn  func()
}

// Loop is a single-threaded Clock and Timers implementation. The host calls
// Pump once per display refresh (ebiten Update, a terminal ticker, or a
// simulated clock in the offline renderer); every callback runs inside Pump
// on the caller's goroutine. Loop is not safe for concurrent use.
type Loop struct {
	now    func() time.Time
	next   Handle
	seq    uint64
	frames []frameReq
	timers []*timer

	// handles cancelled while their batch is running
	dropped map[Handle]bool
}

// NewLoop returns a Loop reading time from now; nil means time.Now.
func NewLoop(now func() time.Time) *Loop {
	if now == nil {
		now = time.Now
	}
	return &Loop{now: now}
}

func (l *Loop) Now() time.Time { return l.now() }

func (l *Loop) RequestFrame(cb func(ts time.Time)) Handle {
	l.next++
	l.frames = append(l.frames, frameReq{h: l.next, cb: cb})
	return l.next
}

func (l *Loop) CancelFrame(h Handle) {
	if l.dropped != nil {
		l.dropped[h] = true
	}
	for i, f := range l.frames {
		if f.h == h {
			l.frames = append(l.frames[:i], l.frames[i+1:]...)
			return
		}
	}
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Handle {
	l.next++
	l.seq++
	l.timers = append(l.timers, &timer{h: l.next, at: l.now().Add(d), seq: l.seq, fn: fn})
	return l.next
}

func (l *Loop) Cancel(h Handle) {
	for i, t := range l.timers {
		if t.h == h {
			l.timers = append(l.timers[:i], l.timers[i+1:]...)
			return
		}
	}
}

// Pending reports the number of queued frame callbacks and timers.
func (l *Loop) Pending() (frames, timers int) { return len(l.frames), len(l.timers) }

// Pump fires due timers in deadline order, then runs the frame callbacks that
// were queued before this call, all with the same timestamp. Callbacks queued
// while pumping wait for the next Pump.
func (l *Loop) Pump() {
	ts := l.now()
	l.fireTimers(ts)

	batch := l.frames
	l.frames = nil
	l.dropped = map[Handle]bool{}
	for _, f := range batch {
		if l.dropped[f.h] {
			continue
		}
		f.cb(ts)
	}
	l.dropped = nil
}

func (l *Loop) fireTimers(ts time.Time) {
	for {
		due := l.dueTimer(ts)
		if due == nil {
			return
		}
		l.Cancel(due.h)
		due.fn()
	}
}

// dueTimer returns the earliest timer with a deadline at or before ts.
// Timers added by a firing callback are considered too, so a zero-delay
// re-arm fires within the same pump; callers must not re-arm with d <= 0 in a
// loop.
func (l *Loop) dueTimer(ts time.Time) *timer {
	if len(l.timers) == 0 {
		return nil
	}
	sort.SliceStable(l.timers, func(i, j int) bool {
		if l.timers[i].at.Equal(l.timers[j].at) {
			return l.timers[i].seq < l.timers[j].seq
		}
		return l.timers[i].at.Before(l.timers[j].at)
	})
	if t := l.timers[0]; !t.at.After(ts) {
		return t
	}
	return nil
}

// Clear drops every pending frame request and timer.
func (l *Loop) Clear() {
	l.frames = nil
	l.timers = nil
}
