package model

import (
	"math"
	"strings"
)

// A4 is the tuning reference; note 69 in MIDI numbering.
const (
	a4Frequency = 440.0
	a4Midi      = 69
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var semitones = map[string]int{
	"C": 0, "B#": 0,
	"C#": 1, "DB": 1,
	"D": 2,
	"D#": 3, "EB": 3,
	"E": 4, "FB": 4,
	"F": 5, "E#": 5,
	"F#": 6, "GB": 6,
	"G": 7,
	"G#": 8, "AB": 8,
	"A": 9,
	"A#": 10, "BB": 10,
	"B": 11, "CB": 11,
}

// Semitone returns the pitch class of a note name such as "C#", "Eb" or "a".
// Unknown names map to A.
func Semitone(name string) (int, bool) {
	s, ok := semitones[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 9, false
	}
	return s, true
}

// Midi returns the MIDI note number of name in octave (C4 = 60).
func Midi(name string, octave int) int {
	s, _ := Semitone(name)
	return (octave+1)*12 + s
}

// MidiFrequency converts a MIDI note number to Hz, equal temperament.
func MidiFrequency(midi int) float64 {
	return a4Frequency * math.Pow(2, float64(midi-a4Midi)/12)
}

// Frequency returns the frequency of name in octave.
func Frequency(name string, octave int) float64 {
	return MidiFrequency(Midi(name, octave))
}

// NoteName splits a MIDI note number into its sharp-spelled name and octave.
func NoteName(midi int) (string, int) {
	pc := ((midi % 12) + 12) % 12
	return noteNames[pc], midi/12 - 1
}

// CanonicalNote spells name with sharps ("Db" becomes "C#").
func CanonicalNote(name string) string {
	s, _ := Semitone(name)
	return noteNames[s]
}
