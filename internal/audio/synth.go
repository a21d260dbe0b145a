package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"

	"github.com/ingyamilmolinar/polyrhythm/core/voice"
)

const (
	attack = 5 * time.Millisecond
	// overtone is the level of the second harmonic relative to the
	// fundamental.
	overtone = 0.25
)

// NewNote builds the streamer for one note: a sine with a soft second
// harmonic, shaped by an attack/release envelope and scaled by velocity.
func NewNote(n voice.Note, rate beep.SampleRate) (beep.Streamer, error) {
	if n.Duration <= 0 {
		return nil, fmt.Errorf("note duration %v: not positive", n.Duration)
	}
	fund, err := generators.SineTone(rate, n.Frequency)
	if err != nil {
		return nil, fmt.Errorf("note %.2fHz: %w", n.Frequency, err)
	}
	var s beep.Streamer = fund
	// the harmonic is dropped when it would alias
	if harm, err := generators.SineTone(rate, 2*n.Frequency); err == nil {
		s = beep.Mix(fund, gain(harm, overtone))
	}
	s = beep.Take(rate.N(n.Duration), s)
	release := n.Duration * 3 / 10
	return gain(newEnvelope(s, n.Duration, attack, release, rate), n.Velocity/(1+overtone)), nil
}

func gain(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v), Silent: false}
}

// envelope applies a linear attack and release to a stream.
type envelope struct {
	streamer beep.Streamer
	pos      int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, duration, att, rel time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	a, r := rate.N(att), rate.N(rel)
	if a+r > total {
		a, r = total/2, total-total/2
	}
	return &envelope{streamer: s, attack: a, release: r, total: total}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.pos >= e.total {
			return i, false
		}
		vol := 1.0
		if e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if start := e.total - e.release; e.pos >= start && e.release > 0 {
			vol = float64(e.total-e.pos) / float64(e.release)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }
