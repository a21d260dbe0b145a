package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// mixer sums scheduled streamers into one mono PCM stream. Voices start at an
// absolute sample position.
type mixer struct {
	mu      sync.Mutex
	voices  []*voiceState
	pos     int
	scratch [][2]float64
	mono    []float64
}

type voiceState struct {
	start int
	s     beep.Streamer
}

// Schedule adds a streamer to start after delaySamples have elapsed.
func (m *mixer) Schedule(s beep.Streamer, delaySamples int) {
	m.mu.Lock()
	m.voices = append(m.voices, &voiceState{start: m.pos + delaySamples, s: s})
	m.mu.Unlock()
}

// ScheduleAt adds a streamer starting at an absolute sample position. A
// position already played starts immediately.
func (m *mixer) ScheduleAt(s beep.Streamer, at int) {
	m.mu.Lock()
	m.voices = append(m.voices, &voiceState{start: at, s: s})
	m.mu.Unlock()
}

// Len reports the number of voices scheduled or still sounding.
func (m *mixer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Pos is the number of samples produced so far.
func (m *mixer) Pos() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

// Mix fills out with the next len(out) samples. Finished voices are dropped.
func (m *mixer) Mix(out []float64) {
	for i := range out {
		out[i] = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(out)
	kept := m.voices[:0]
	for _, vs := range m.voices {
		off := vs.start - m.pos
		if off >= n {
			kept = append(kept, vs)
			continue
		}
		if off < 0 {
			off = 0
		}
		want := n - off
		if cap(m.scratch) < want {
			m.scratch = make([][2]float64, want)
		}
		buf := m.scratch[:want]
		got, ok := vs.s.Stream(buf)
		for i := 0; i < got; i++ {
			out[off+i] += (buf[i][0] + buf[i][1]) / 2
		}
		if ok && got == want {
			kept = append(kept, vs)
		}
	}
	for i := len(kept); i < len(m.voices); i++ {
		m.voices[i] = nil
	}
	m.voices = kept
	m.pos += n
}

// Read implements io.Reader for oto.Player: 16-bit signed little endian mono.
func (m *mixer) Read(p []byte) (int, error) {
	samples := len(p) / 2
	if cap(m.mono) < samples {
		m.mono = make([]float64, samples)
	}
	buf := m.mono[:samples]
	m.Mix(buf)
	for i, sum := range buf {
		v := toInt16(sum)
		p[2*i] = byte(v)
		p[2*i+1] = byte(v >> 8)
	}
	return samples * 2, nil
}

func toInt16(f float64) int16 {
	if f > 1 {
		f = 1
	} else if f < -1 {
		f = -1
	}
	return int16(f * 32767)
}
