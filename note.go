package pitchdetect

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// ReferenceFrequency is the frequency of A4, note number 0.
const ReferenceFrequency = 440.0

// Note is a position on the equal-tempered scale relative to A4.
type Note struct {
	Number int    // Semitones from A4, negative below it.
	Name   string // Pitch class name, e.g. "A#".
	Octave int    // Scientific pitch notation octave, C-based (A4 is in octave 4).
	Cents  int    // Deviation from the exact note frequency, in [-50, 50).
}

func (n Note) String() string {
	return fmt.Sprintf("%s%d %+d¢", n.Name, n.Octave, n.Cents)
}

type noteTable struct {
	names    [12]string
	rotation int
}

var (
	noteNamings = map[string]noteTable{
		"A": {
			names:    [12]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"},
			rotation: 0,
		},
		"C": {
			names:    [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"},
			rotation: 9,
		},
	}
	availableNoteNamings = slices.Sorted(maps.Keys(noteNamings))
	defaultNoteNaming    = noteNamings["A"]
)

// NoteName returns the pitch class name of note n, where 0 is A4. It uses the A-anchored table, so
// NoteName(n) == NoteName(n+12) for every n.
func NoteName(n int) string {
	return defaultNoteNaming.name(n)
}

// FrequencyFromNoteNumber returns the exact equal-tempered frequency of note n, where 0 is A4.
func FrequencyFromNoteNumber(n int) float64 {
	return ReferenceFrequency * math.Pow(2, float64(n)/12)
}

// NoteFromFrequency maps a positive frequency onto the nearest note using the A-anchored table.
func NoteFromFrequency(frequency float64) Note {
	return defaultNoteNaming.note(frequency)
}

func (t noteTable) name(n int) string {
	return t.names[((n+t.rotation)%12+12)%12]
}

func (t noteTable) note(frequency float64) Note {
	// Rounding half up keeps Cents in [-50, 50); at an exact half-semitone boundary floor may still
	// give -50 for the upper note.
	number := int(math.Floor(12*math.Log2(frequency/ReferenceFrequency) + 0.5))
	base := FrequencyFromNoteNumber(number)
	return Note{
		Number: number,
		Name:   t.name(number),
		Octave: octave(number),
		Cents:  int(math.Floor(1200 * math.Log2(frequency/base))),
	}
}

// octave counts C-based octaves: A4 is 9 semitones above C4.
func octave(n int) int {
	semitonesFromC0 := n + 9 + 4*12
	if semitonesFromC0 < 0 {
		return (semitonesFromC0+1)/12 - 1
	}
	return semitonesFromC0 / 12
}
