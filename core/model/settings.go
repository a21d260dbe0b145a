package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ingyamilmolinar/polyrhythm/internal/utils"
)

// Bounds enforced by Clamped. The simulation assumes settings within them.
const (
	MinNodeCount  = 1
	MaxNodeCount  = 32
	MinBaseSpeed  = 0.05
	MaxBaseSpeed  = 8.0
	MinSpeedRatio = 0.0
	MaxSpeedRatio = 2.0
	MinOctave     = 0
	MaxOctave     = 8
	MinDuration   = 20 * time.Millisecond
	MaxDuration   = 4 * time.Second
)

// RhythmSettings drive node count and per-node speed.
type RhythmSettings struct {
	NodeCount    int     `json:"nodeCount"`
	BaseSpeed    float64 `json:"baseSpeed"`
	SpeedRatio   float64 `json:"speedRatio"`
	GlobalVolume float64 `json:"globalVolume"`
}

// Speed returns the speed multiplier of node i.
func (r RhythmSettings) Speed(i int) float64 {
	return r.BaseSpeed * (1 + float64(i)*r.SpeedRatio)
}

// SpeedFunc binds Speed to the current values.
func (r RhythmSettings) SpeedFunc() func(int) float64 {
	return r.Speed
}

// BPM is the boundary-hit rate of node 0 in hits per minute. With the
// simulation's 0.001 units/ms scale a speed of 1 crosses the field once per
// second, so each unit of BaseSpeed is worth 60 BPM.
func (r RhythmSettings) BPM() float64 { return 60 * r.BaseSpeed }

// SameSpeeds reports whether r and o produce identical node speeds.
func (r RhythmSettings) SameSpeeds(o RhythmSettings) bool {
	return r.BaseSpeed == o.BaseSpeed && r.SpeedRatio == o.SpeedRatio
}

// NodeConfig is the per-node sound configuration.
type NodeConfig struct {
	Note     string
	Octave   int
	Volume   float64
	Duration time.Duration
	Enabled  bool
}

// Frequency returns the pitch of the node in Hz.
func (n NodeConfig) Frequency() float64 { return Frequency(n.Note, n.Octave) }

// Label is the display name, e.g. "C#4".
func (n NodeConfig) Label() string { return fmt.Sprintf("%s%d", n.Note, n.Octave) }

type nodeConfigJSON struct {
	Note     string  `json:"note"`
	Octave   int     `json:"octave"`
	Volume   float64 `json:"volume"`
	Duration float64 `json:"duration"` // seconds
	Enabled  bool    `json:"enabled"`
}

func (n NodeConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeConfigJSON{
		Note:     n.Note,
		Octave:   n.Octave,
		Volume:   n.Volume,
		Duration: n.Duration.Seconds(),
		Enabled:  n.Enabled,
	})
}

func (n *NodeConfig) UnmarshalJSON(b []byte) error {
	w := nodeConfigJSON{Enabled: true, Volume: DefaultNoteVolume, Duration: DefaultNoteDuration.Seconds()}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*n = NodeConfig{
		Note:     w.Note,
		Octave:   w.Octave,
		Volume:   w.Volume,
		Duration: time.Duration(w.Duration * float64(time.Second)),
		Enabled:  w.Enabled,
	}
	return nil
}

// Settings is the full read-only snapshot the visualizer consumes.
type Settings struct {
	Rhythm     RhythmSettings `json:"rhythm"`
	Scale      ScaleName      `json:"scale"`
	Root       string         `json:"root"`
	BaseOctave int            `json:"baseOctave"`
	Nodes      []NodeConfig   `json:"nodes"`
}

// Defaults returns the settings used on first launch.
func Defaults() Settings {
	s := Settings{
		Rhythm: RhythmSettings{
			NodeCount:    8,
			BaseSpeed:    1.0,
			SpeedRatio:   0.1,
			GlobalVolume: 0.7,
		},
		Scale:      ScaleMajor,
		Root:       "C",
		BaseOctave: 4,
	}
	s.Nodes = DefaultNodes(s.Rhythm.NodeCount, s.Scale, s.Root, s.BaseOctave)
	return s
}

// Clamped returns a copy with every field forced into its valid range and the
// node table sized to NodeCount. Missing rows take scale defaults.
func (s Settings) Clamped() Settings {
	out := s
	r := &out.Rhythm
	r.NodeCount = utils.ClampInt(r.NodeCount, MinNodeCount, MaxNodeCount)
	r.BaseSpeed = utils.Clamp(r.BaseSpeed, MinBaseSpeed, MaxBaseSpeed)
	r.SpeedRatio = utils.Clamp(r.SpeedRatio, MinSpeedRatio, MaxSpeedRatio)
	r.GlobalVolume = utils.Clamp01(r.GlobalVolume)

	if !out.Scale.Valid() {
		out.Scale = ScaleMajor
	}
	out.Root = CanonicalNote(out.Root)
	out.BaseOctave = utils.ClampInt(out.BaseOctave, MinOctave, MaxOctave)

	nodes := make([]NodeConfig, r.NodeCount)
	for i := range nodes {
		if i < len(s.Nodes) {
			nodes[i] = clampNode(s.Nodes[i])
			continue
		}
		nodes[i] = DefaultNode(i, out.Scale, out.Root, out.BaseOctave)
	}
	out.Nodes = nodes
	return out
}

func clampNode(n NodeConfig) NodeConfig {
	n.Note = CanonicalNote(n.Note)
	n.Octave = utils.ClampInt(n.Octave, MinOctave, MaxOctave)
	n.Volume = utils.Clamp01(n.Volume)
	if n.Duration < MinDuration {
		n.Duration = MinDuration
	}
	if n.Duration > MaxDuration {
		n.Duration = MaxDuration
	}
	return n
}

// Node returns the configuration of node i, or a disabled zero config when i
// is out of range.
func (s Settings) Node(i int) NodeConfig {
	if i < 0 || i >= len(s.Nodes) {
		return NodeConfig{}
	}
	return s.Nodes[i]
}

// WithScale re-pitches every node along a new scale, keeping volume,
// duration and enabled flags.
func (s Settings) WithScale(scale ScaleName, root string, octave int) Settings {
	out := s
	out.Scale, out.Root, out.BaseOctave = scale, root, octave
	out.Nodes = make([]NodeConfig, len(s.Nodes))
	for i, n := range s.Nodes {
		d := DefaultNode(i, scale, root, octave)
		n.Note, n.Octave = d.Note, d.Octave
		out.Nodes[i] = n
	}
	return out.Clamped()
}

// Marshal encodes s as an opaque JSON blob.
func Marshal(s Settings) ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a blob produced by Marshal. Absent fields take defaults
// and the result is clamped.
func Unmarshal(b []byte) (Settings, error) {
	s := Defaults()
	s.Nodes = nil
	if err := json.Unmarshal(b, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s.Clamped(), nil
}
