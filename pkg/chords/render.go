package chords

import (
	"sort"
	"strings"
)

// Render builds the fixed-width chord overlay for a lyric line.
//
// The overlay is max(len(text), 1) characters long, measured in runes, and is
// filled with spaces. Chords are written in ascending position order (stable,
// so equal positions keep their input order); each start is clamped into the
// buffer and symbols that run past the end are cut off. Where chords overlap,
// the later one overwrites the earlier one character by character.
func Render(text string, chordList []ChordPosition) string {
	width := len([]rune(text))
	if width < 1 {
		width = 1
	}

	buf := make([]rune, width)
	for i := range buf {
		buf[i] = ' '
	}

	for _, c := range SortByPosition(chordList) {
		start := min(max(c.Position, 0), width-1)
		i := start
		for _, r := range c.Chord {
			if i >= width {
				break
			}
			buf[i] = r
			i++
		}
	}

	return string(buf)
}

// SortByPosition returns a copy of chordList ordered by ascending position.
// The sort is stable.
func SortByPosition(chordList []ChordPosition) []ChordPosition {
	sorted := append([]ChordPosition(nil), chordList...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	return sorted
}

// RenderLines returns a copy of lines with ChordLine freshly rendered.
func RenderLines(lines []SongLine) []SongLine {
	out := cloneLines(lines)
	for i := range out {
		out[i].ChordLine = Render(out[i].Text, out[i].Chords)
	}
	return out
}

// IsBlank reports whether a rendered overlay carries no chord characters.
func IsBlank(chordLine string) bool {
	return strings.TrimSpace(chordLine) == ""
}
