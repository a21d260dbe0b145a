package model

import (
	"sort"
	"time"
)

type ScaleName string

const (
	ScaleChromatic  ScaleName = "chromatic"
	ScaleMajor      ScaleName = "major"
	ScaleMinor      ScaleName = "minor"
	ScalePentatonic ScaleName = "pentatonic"
	ScaleBlues      ScaleName = "blues"
	ScaleDorian     ScaleName = "dorian"
)

// scale intervals in semitones above the root, one octave.
var scales = map[ScaleName][]int{
	ScaleChromatic:  {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	ScaleMajor:      {0, 2, 4, 5, 7, 9, 11},
	ScaleMinor:      {0, 2, 3, 5, 7, 8, 10},
	ScalePentatonic: {0, 2, 4, 7, 9},
	ScaleBlues:      {0, 3, 5, 6, 7, 10},
	ScaleDorian:     {0, 2, 3, 5, 7, 9, 10},
}

// Scales lists the known scale names in a stable order.
func Scales() []ScaleName {
	out := make([]ScaleName, 0, len(scales))
	for k := range scales {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Valid reports whether s names a known scale.
func (s ScaleName) Valid() bool {
	_, ok := scales[s]
	return ok
}

// Next is the scale after s in Scales order, wrapping around. An unknown
// scale restarts at the first.
func (s ScaleName) Next() ScaleName {
	all := Scales()
	for i, n := range all {
		if n == s {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// Degree returns the MIDI note of the i-th ascending degree of the scale
// starting at root/octave. Degrees past the scale length wrap into higher
// octaves.
func (s ScaleName) Degree(root string, octave, i int) int {
	iv, ok := scales[s]
	if !ok {
		iv = scales[ScaleMajor]
	}
	base := Midi(root, octave)
	return base + (i/len(iv))*12 + iv[i%len(iv)]
}

const (
	DefaultNoteVolume   = 0.8
	DefaultNoteDuration = 400 * time.Millisecond
)

// DefaultNodes builds a per-node table walking up the scale, one degree per
// node.
func DefaultNodes(count int, scale ScaleName, root string, octave int) []NodeConfig {
	nodes := make([]NodeConfig, count)
	for i := range nodes {
		nodes[i] = DefaultNode(i, scale, root, octave)
	}
	return nodes
}

// DefaultNode returns the default configuration for node i.
func DefaultNode(i int, scale ScaleName, root string, octave int) NodeConfig {
	name, oct := NoteName(scale.Degree(root, octave, i))
	return NodeConfig{
		Note:     name,
		Octave:   oct,
		Volume:   DefaultNoteVolume,
		Duration: DefaultNoteDuration,
		Enabled:  true,
	}
}
