package chords

import (
	"errors"
	"fmt"
)

// ErrSongNotFound is returned by song providers when no song exists for an ID.
var ErrSongNotFound = errors.New("song not found")

// MinOffset and MaxOffset bound the persisted transpose offset of a song.
const (
	MinOffset = -11
	MaxOffset = 11
)

// ChordPosition anchors a chord symbol to a character offset in a lyric line.
// The symbol is not validated; the position may exceed the line length.
type ChordPosition struct {
	Chord    string `json:"chord"`    // Root note plus arbitrary suffix (e.g. "Am7", "G#sus4")
	Position int    `json:"position"` // Character offset into the owning line's text (>= 0)
}

// SongLine is a single lyric line with its chord annotations.
type SongLine struct {
	LineNumber int             `json:"line_number"`          // Ordering key, not necessarily contiguous
	Text       string          `json:"text"`                 // Lyric text, may be empty
	Chords     []ChordPosition `json:"chords"`               // Unordered as stored
	ChordLine  string          `json:"chord_line,omitempty"` // Cached Render(Text, Chords); derived data
}

// Song is a lyric sheet with chord annotations and its descriptive metadata.
// The transpose offset is persisted separately, keyed by song ID.
type Song struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist"`
	Key         string     `json:"key"`
	BPM         int        `json:"bpm"`
	Genres      []string   `json:"genres"`
	Lyrics      []SongLine `json:"lyrics"`
	CreatedAtMs int64      `json:"created_at_ms"` // Unix timestamp in milliseconds when the song was uploaded
}

// Validate checks the structural invariants of a song before it is persisted.
func (s *Song) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("song ID cannot be empty")
	}
	if s.Title == "" {
		return fmt.Errorf("song title cannot be empty")
	}
	if s.BPM < 0 {
		return fmt.Errorf("bpm must be >= 0, got %d", s.BPM)
	}
	for _, line := range s.Lyrics {
		for _, c := range line.Chords {
			if c.Position < 0 {
				return fmt.Errorf("line %d: chord %q has negative position %d", line.LineNumber, c.Chord, c.Position)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the song. Cached chord lines are carried over as-is.
func (s *Song) Clone() *Song {
	clone := *s
	if s.Genres != nil {
		clone.Genres = append([]string(nil), s.Genres...)
	}
	clone.Lyrics = cloneLines(s.Lyrics)
	return &clone
}

// ClampOffset restricts a transpose offset to [MinOffset, MaxOffset].
// Offsets are clamped, not wrapped.
func ClampOffset(offset int) int {
	if offset < MinOffset {
		return MinOffset
	}
	if offset > MaxOffset {
		return MaxOffset
	}
	return offset
}

func cloneLines(lines []SongLine) []SongLine {
	if lines == nil {
		return nil
	}
	out := make([]SongLine, len(lines))
	for i, line := range lines {
		out[i] = line
		if line.Chords != nil {
			out[i].Chords = append([]ChordPosition(nil), line.Chords...)
		}
	}
	return out
}
