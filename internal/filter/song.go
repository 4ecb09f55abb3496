package filter

import (
	"path/filepath"
	"strings"

	"github.com/dyluth/capo/pkg/chords"
)

// Criteria defines filtering criteria for the song list.
// All filters are ANDed together.
type Criteria struct {
	SinceTimestampMs int64  // Uploaded at or after, 0 = no filter
	UntilTimestampMs int64  // Uploaded at or before, 0 = no filter
	GenreGlob        string // Glob matched against each genre, case-insensitive
	Artist           string // Case-insensitive exact match
}

// Matches returns true if the song matches all filter criteria.
func (c *Criteria) Matches(s *chords.Song) bool {
	if c.SinceTimestampMs > 0 && s.CreatedAtMs < c.SinceTimestampMs {
		return false
	}
	if c.UntilTimestampMs > 0 && s.CreatedAtMs > c.UntilTimestampMs {
		return false
	}

	if c.GenreGlob != "" && !anyGenreMatches(c.GenreGlob, s.Genres) {
		return false
	}

	if c.Artist != "" && !strings.EqualFold(c.Artist, s.Artist) {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.SinceTimestampMs > 0 ||
		c.UntilTimestampMs > 0 ||
		c.GenreGlob != "" ||
		c.Artist != ""
}

// Apply returns the songs that match, preserving order.
func (c *Criteria) Apply(songs []*chords.Song) []*chords.Song {
	if !c.HasFilters() {
		return songs
	}
	out := make([]*chords.Song, 0, len(songs))
	for _, s := range songs {
		if c.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

func anyGenreMatches(glob string, genres []string) bool {
	glob = strings.ToLower(glob)
	for _, g := range genres {
		if matched, err := filepath.Match(glob, strings.ToLower(g)); err == nil && matched {
			return true
		}
	}
	return false
}
