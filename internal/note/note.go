// Package note maps fretboard positions to pitch classes.
package note

import (
	"fmt"
	"strings"
)

// PitchClass is one of the 12 chromatic note names, identified by its position in the cycle starting at C.
type PitchClass int

// Pitch classes in cyclic order.
const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

// Count is the number of pitch classes in the chromatic cycle.
const Count = 12

// Strings is the number of guitar strings.
const Strings = 6

// Tuning lists the open-string pitch of each string in display order.
// Index Strings-1 is always the lowest-pitched 6th string.
type Tuning [Strings]PitchClass

// StandardTuning is E B G D A E from the 1st to the 6th string.
var StandardTuning = Tuning{E, B, G, D, A, E}

var sharpNames = [Count]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var germanNames = [Count]string{"C", "Cis", "D", "Dis", "E", "F", "Fis", "G", "Gis", "A", "B", "H"}

var mixedNames = [Count]string{"C", "C#/Db", "D", "D#/Eb", "E", "F", "F#/Gb", "G", "G#/Ab", "A", "A#/Bb", "B"}

// Resolve returns the pitch class sounding at fret on a string tuned to open.
func Resolve(open PitchClass, fret int) PitchClass {
	return open.Add(fret)
}

// Add moves n semitones up the cycle. Negative n moves down.
func (p PitchClass) Add(n int) PitchClass {
	v := (int(p) + n) % Count
	if v < 0 {
		v += Count
	}
	return PitchClass(v)
}

// Valid reports whether p is one of the 12 pitch classes.
func (p PitchClass) Valid() bool {
	return p >= 0 && p < Count
}

// String returns the canonical sharp spelling.
func (p PitchClass) String() string {
	if !p.Valid() {
		return fmt.Sprintf("PitchClass(%d)", int(p))
	}
	return sharpNames[p]
}

// All returns the 12 pitch classes in cyclic order.
func All() []PitchClass {
	out := make([]PitchClass, Count)
	for i := range out {
		out[i] = PitchClass(i)
	}
	return out
}

// Naming selects how pitch classes are displayed.
type Naming string

// Supported naming styles.
const (
	NamingUS     Naming = "us"
	NamingGerman Naming = "german"
	NamingMixed  Naming = "mixed"
)

// ParseNaming validates a naming style. Empty input selects NamingUS.
func ParseNaming(s string) (Naming, error) {
	switch n := Naming(strings.ToLower(strings.TrimSpace(s))); n {
	case "":
		return NamingUS, nil
	case NamingUS, NamingGerman, NamingMixed:
		return n, nil
	default:
		return "", fmt.Errorf("unknown note naming %q (use us, german or mixed)", s)
	}
}

// Name renders p in the naming style. Unknown styles fall back to US names.
func (n Naming) Name(p PitchClass) string {
	if !p.Valid() {
		return p.String()
	}
	switch n {
	case NamingGerman:
		return germanNames[p]
	case NamingMixed:
		return mixedNames[p]
	default:
		return sharpNames[p]
	}
}

var letterClass = map[byte]PitchClass{'C': C, 'D': D, 'E': E, 'F': F, 'G': G, 'A': A, 'B': B}

// Parse reads a note name. Sharps (C#), flats (Db), and German names
// (Cis, Des, Es, As, H) are accepted; enharmonic spellings map to the same class.
// A bare B is always the US B.
func Parse(s string) (PitchClass, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return 0, fmt.Errorf("empty note name")
	}
	lower := strings.ToLower(name)
	switch lower {
	case "h":
		return B, nil
	case "es":
		return DSharp, nil
	case "as":
		return GSharp, nil
	}
	base, ok := letterClass[strings.ToUpper(name[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("invalid note name %q", s)
	}
	switch rest := lower[1:]; rest {
	case "":
		return base, nil
	case "#", "is", "♯":
		return base.Add(1), nil
	case "b", "es", "♭":
		return base.Add(-1), nil
	default:
		return 0, fmt.Errorf("invalid note name %q", s)
	}
}
