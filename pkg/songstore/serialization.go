package songstore

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/dyluth/capo/pkg/chords"
)

// Songs are stored as flat hashes. Genres are a JSON array; lyrics use the
// line document format from the chords package.

// SongToHash converts a song to its Redis hash form.
func SongToHash(s *chords.Song) (map[string]interface{}, error) {
	genres := s.Genres
	if genres == nil {
		genres = []string{}
	}
	genresJSON, err := json.Marshal(genres)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal genres: %w", err)
	}

	lyrics, err := chords.EncodeLines(s.Lyrics)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":            s.ID,
		"title":         s.Title,
		"artist":        s.Artist,
		"key":           s.Key,
		"bpm":           s.BPM,
		"genres":        string(genresJSON),
		"lyrics":        lyrics,
		"created_at_ms": s.CreatedAtMs,
	}, nil
}

// HashToSong converts a Redis hash to a song.
// Only a missing ID is fatal. Unparseable numeric fields fall back to zero
// and malformed lyric records are skipped with a warning.
func HashToSong(hash map[string]string) (*chords.Song, error) {
	id := hash["id"]
	if id == "" {
		return nil, fmt.Errorf("song hash has no id field")
	}

	bpm, _ := strconv.Atoi(hash["bpm"])
	createdAtMs, _ := strconv.ParseInt(hash["created_at_ms"], 10, 64)

	genres := []string{}
	if genresJSON := hash["genres"]; genresJSON != "" {
		if err := json.Unmarshal([]byte(genresJSON), &genres); err != nil {
			log.Printf("[WARN] Song %s: ignoring malformed genres field: %v", id, err)
			genres = []string{}
		}
	}

	lyrics, skipped := chords.DecodeLines(hash["lyrics"])
	if skipped > 0 {
		log.Printf("[WARN] Song %s: skipped %d malformed lyric record(s)", id, skipped)
	}

	return &chords.Song{
		ID:          id,
		Title:       hash["title"],
		Artist:      hash["artist"],
		Key:         hash["key"],
		BPM:         bpm,
		Genres:      genres,
		Lyrics:      lyrics,
		CreatedAtMs: createdAtMs,
	}, nil
}

// parseOffset reads a stored offset. Unparseable values count as 0 and
// out-of-range values are clamped.
func parseOffset(songID, raw string) int {
	offset, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("[WARN] Song %s: ignoring malformed transpose offset %q", songID, raw)
		return 0
	}
	return chords.ClampOffset(offset)
}
