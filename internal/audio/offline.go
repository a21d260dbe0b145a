package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep"

	"github.com/ingyamilmolinar/polyrhythm/core/voice"
)

// Offline records notes against a virtual clock and renders them to PCM
// afterwards. It lets the visualizer run faster than real time.
type Offline struct {
	rate   beep.SampleRate
	now    func() time.Time
	origin time.Time

	mu    sync.Mutex
	mix   *mixer
	notes int
}

// NewOffline starts recording at now(). Notes are placed at now()-origin.
func NewOffline(sampleRate int, now func() time.Time) *Offline {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Offline{
		rate:   beep.SampleRate(sampleRate),
		now:    now,
		origin: now(),
		mix:    &mixer{},
	}
}

func (o *Offline) TriggerNote(ctx context.Context, n voice.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s, err := NewNote(n, o.rate)
	if err != nil {
		return fmt.Errorf("offline note: %w", err)
	}
	at := o.rate.N(o.now().Sub(o.origin))
	o.mu.Lock()
	o.notes++
	o.mu.Unlock()
	o.mix.ScheduleAt(s, at)
	return nil
}

// Notes is the number of notes recorded.
func (o *Offline) Notes() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.notes
}

// Samples mixes the first length of the recording into mono floats.
func (o *Offline) Samples(length time.Duration) []float64 {
	out := make([]float64, o.rate.N(length))
	o.mix.Mix(out)
	return out
}

// WriteWAV renders length of the recording as 16-bit mono PCM.
func (o *Offline) WriteWAV(w io.WriteSeeker, length time.Duration) error {
	samples := o.Samples(length)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  int(o.rate),
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, f := range samples {
		buf.Data[i] = int(toInt16(f))
	}

	enc := wav.NewEncoder(w, int(o.rate), 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish wav: %w", err)
	}
	return nil
}
