package chords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSongValidate(t *testing.T) {
	valid := func() *Song {
		return &Song{
			ID:    "8f14e45f-ceea-467f-a8f0-5d1c2a7b9e10",
			Title: "Amazing Grace",
			Lyrics: []SongLine{
				{LineNumber: 1, Text: "Amazing grace", Chords: []ChordPosition{{"C", 0}}},
			},
		}
	}

	t.Run("accepts valid song", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects empty ID", func(t *testing.T) {
		s := valid()
		s.ID = ""
		assert.ErrorContains(t, s.Validate(), "song ID cannot be empty")
	})

	t.Run("rejects empty title", func(t *testing.T) {
		s := valid()
		s.Title = ""
		assert.ErrorContains(t, s.Validate(), "title cannot be empty")
	})

	t.Run("rejects negative bpm", func(t *testing.T) {
		s := valid()
		s.BPM = -1
		assert.ErrorContains(t, s.Validate(), "bpm must be >= 0")
	})

	t.Run("rejects negative chord position", func(t *testing.T) {
		s := valid()
		s.Lyrics[0].Chords[0].Position = -2
		assert.ErrorContains(t, s.Validate(), "negative position")
	})
}

func TestSongClone(t *testing.T) {
	s := &Song{
		ID:     "a",
		Title:  "t",
		Genres: []string{"hymn"},
		Lyrics: []SongLine{{LineNumber: 1, Chords: []ChordPosition{{"C", 0}}}},
	}

	clone := s.Clone()
	clone.Genres[0] = "rock"
	clone.Lyrics[0].Chords[0].Chord = "D"

	assert.Equal(t, "hymn", s.Genres[0])
	assert.Equal(t, "C", s.Lyrics[0].Chords[0].Chord)
}

func TestClampOffset(t *testing.T) {
	assert.Equal(t, -11, ClampOffset(-40))
	assert.Equal(t, 11, ClampOffset(12))
	assert.Equal(t, 0, ClampOffset(0))
	assert.Equal(t, -5, ClampOffset(-5))
}
