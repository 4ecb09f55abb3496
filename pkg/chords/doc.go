// Package chords provides the chord-to-lyric alignment and transposition engine
// used by capo.
//
// # Overview
//
// A song is an ordered list of lyric lines. Each line carries a set of chord
// symbols anchored to character offsets in the lyric text. The engine turns
// those offsets into a second "rail" of text that lines up with the lyric when
// both are shown in a fixed-width font, and shifts every chord of a song by a
// number of semitones while keeping alignment and chord suffixes intact.
//
// # Core Concepts
//
// ChordPosition anchors a chord symbol (root + free-form suffix) to a character
// offset in a line. Offsets may point past the end of the line.
//
// SongLine holds one lyric line and its chords. The ChordLine field is a cache
// of Render(Text, Chords) and is never a source of truth.
//
// Transpose maps a chord symbol and a signed semitone delta to a new chord
// symbol. Flat roots are respelled as sharps the first time they pass through.
//
// Render composites the chord symbols of one line into the overlay string.
//
// # Usage Example
//
//	lines := chords.ParseUpload("Amazing grace\nhow sweet the sound", "C-0,G-7\nC-4")
//	shifted := chords.TransposeLines(lines, 2)
//	for _, line := range chords.RenderLines(shifted) {
//		fmt.Println(line.ChordLine)
//		fmt.Println(line.Text)
//	}
//
// # Design Principles
//
// - Total: no function in this package returns an error for malformed chord data
// - Pure: no I/O, no shared mutable state, safe for concurrent use
// - Copy-on-write: transposition and rendering return new slices
package chords
