package chords

// semitones is the sharp-spelled pitch-class table, index 0 = C.
var semitones = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// flatToSharp respells flat roots before the table lookup.
var flatToSharp = map[string]string{
	"Db": "C#",
	"Eb": "D#",
	"Gb": "F#",
	"Ab": "G#",
	"Bb": "A#",
}

// Transpose shifts the root of a chord symbol by delta semitones and keeps the
// suffix verbatim. Delta may be any integer.
//
// Symbols without a recognisable root (a letter A-G, optionally followed by
// '#' or 'b') are returned unchanged, as are spellings outside the table such
// as "Cb" or "E#". Flat roots come back sharp-spelled, so transposing "Bb" by
// d and then by -d yields "A#", not "Bb".
func Transpose(chord string, delta int) string {
	root, suffix, ok := splitRoot(chord)
	if !ok {
		return chord
	}

	index := pitchClass(root)
	if index < 0 {
		return chord
	}

	shifted := (index + delta%12 + 12) % 12
	return semitones[shifted] + suffix
}

// Root returns the normalised root of a chord symbol ("bbm7" -> "Bb") and
// whether one was found.
func Root(chord string) (string, bool) {
	root, _, ok := splitRoot(chord)
	return root, ok
}

// splitRoot separates a chord symbol into an upper-cased root and its suffix.
func splitRoot(chord string) (root, suffix string, ok bool) {
	if chord == "" {
		return "", "", false
	}

	letter := chord[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	if letter < 'A' || letter > 'G' {
		return "", "", false
	}

	end := 1
	if len(chord) > 1 && (chord[1] == '#' || chord[1] == 'b') {
		end = 2
	}

	return string(letter) + chord[1:end], chord[end:], true
}

// pitchClass returns the table index of a root, or -1 if the spelling is unknown.
func pitchClass(root string) int {
	if sharp, isFlat := flatToSharp[root]; isFlat {
		root = sharp
	}
	for i, name := range semitones {
		if name == root {
			return i
		}
	}
	return -1
}

// TransposeLines returns a copy of lines with every chord shifted by delta.
// Cached chord lines are dropped because they no longer match the chords.
func TransposeLines(lines []SongLine, delta int) []SongLine {
	out := cloneLines(lines)
	for i := range out {
		for j := range out[i].Chords {
			out[i].Chords[j].Chord = Transpose(out[i].Chords[j].Chord, delta)
		}
		out[i].ChordLine = ""
	}
	return out
}
