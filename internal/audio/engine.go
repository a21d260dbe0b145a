// Package audio turns note requests into sound: live through oto, or offline
// into a WAV file.
package audio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"

	"github.com/ingyamilmolinar/polyrhythm/core/voice"
	game_log "github.com/ingyamilmolinar/polyrhythm/internal/log"
)

const (
	DefaultSampleRate = 44100
	// bufferDuration keeps output latency near 10ms.
	bufferDuration = 10 * time.Millisecond
)

// ErrNotReady is returned until the output device has finished opening.
var ErrNotReady = voice.ErrNotReady

// output is the part of oto.Player the engine drives.
type output interface {
	Play()
	Pause()
	Err() error
}

// Engine plays notes on the default output device. TriggerNote is safe to
// call from any goroutine.
type Engine struct {
	rate   beep.SampleRate
	ctx    *oto.Context
	player output
	mix    *mixer
	log    *game_log.Logger

	// mu orders starting the player against Close.
	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// NewEngine opens the output device. The device finishes opening in the
// background; notes triggered before then fail with ErrNotReady.
func NewEngine(sampleRate int, logger *game_log.Logger) (*Engine, error) {
	if logger == nil {
		logger = game_log.Discard()
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	c, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	e := &Engine{
		rate: beep.SampleRate(sampleRate),
		ctx:  c,
		mix:  &mixer{},
		log:  logger,
	}
	p := c.NewPlayer(e.mix)
	p.SetBufferSize(e.rate.N(bufferDuration) * 2)
	e.player = p
	go func() {
		<-ready
		e.start()
	}()
	return e, nil
}

// start begins playback once the device is open, unless Close got there
// first.
func (e *Engine) start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		return
	}
	e.player.Play()
	e.ready.Store(true)
	e.log.Infof("[AUDIO] device ready at %d Hz", int(e.rate))
}

// Ready reports whether the device is open.
func (e *Engine) Ready() bool { return e.ready.Load() }

// TriggerNote schedules n to start on the next buffer.
func (e *Engine) TriggerNote(ctx context.Context, n voice.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !e.ready.Load() || e.closed.Load() {
		return ErrNotReady
	}
	s, err := NewNote(n, e.rate)
	if err != nil {
		return fmt.Errorf("trigger note: %w", err)
	}
	if err := e.ctx.Resume(); err != nil {
		e.log.Warnf("[AUDIO] resume: %v", err)
	}
	e.mix.Schedule(s, 0)
	return nil
}

// Voices reports how many notes the mixer is still producing.
func (e *Engine) Voices() int { return e.mix.Len() }

// Close stops output. Further triggers fail with ErrNotReady.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Swap(true) {
		return nil
	}
	e.ready.Store(false)
	e.player.Pause()
	if err := e.player.Err(); err != nil {
		return fmt.Errorf("close audio player: %w", err)
	}
	return nil
}
