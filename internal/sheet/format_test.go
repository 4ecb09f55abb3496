package sheet

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dyluth/capo/internal/session"
	"github.com/dyluth/capo/pkg/chords"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testView() *session.View {
	lines := chords.RenderLines([]chords.SongLine{
		{LineNumber: 2, Text: "how sweet the sound", Chords: []chords.ChordPosition{{Chord: "D", Position: 4}}},
		{LineNumber: 1, Text: "Amazing grace", Chords: []chords.ChordPosition{{Chord: "A", Position: 7}, {Chord: "D", Position: 0}}},
		{LineNumber: 3, Text: "that saved a wretch"},
	})
	return &session.View{
		Song: &chords.Song{
			ID:     "8f14e45f-ceea-467f-a8f0-5d1c2a7b9e10",
			Title:  "Amazing Grace",
			Artist: "John Newton",
			Key:    "A",
			BPM:    72,
			Genres: []string{"hymn"},
			Lyrics: lines,
		},
		Offset: 2,
	}
}

func TestFormatSheet(t *testing.T) {
	t.Run("writes rails above lyrics in line order", func(t *testing.T) {
		var buf bytes.Buffer
		FormatSheet(&buf, testView(), Options{ShowArtist: true})

		want := strings.Join([]string{
			"Amazing Grace",
			"by John Newton",
			"Key: A · Transpose: +2 · 72 bpm · hymn",
			"",
			"D      A",
			"Amazing grace",
			"    D",
			"how sweet the sound",
			"that saved a wretch",
			"",
		}, "\n")
		assert.Equal(t, want, buf.String())
	})

	t.Run("omits artist when disabled", func(t *testing.T) {
		var buf bytes.Buffer
		FormatSheet(&buf, testView(), Options{ShowArtist: false})
		assert.NotContains(t, buf.String(), "John Newton")
	})

	t.Run("renders missing chord lines on the fly", func(t *testing.T) {
		view := testView()
		view.Song.Lyrics[1].ChordLine = ""

		var buf bytes.Buffer
		FormatSheet(&buf, view, Options{})
		assert.Contains(t, buf.String(), "D      A\nAmazing grace")
	})
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, testView()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(2), decoded["offset"])
	assert.Equal(t, "Amazing Grace", decoded["title"])

	lyrics := decoded["lyrics"].([]any)
	first := lyrics[0].(map[string]any)
	assert.Equal(t, "    D              ", first["chord_line"])
}

func TestFormatTable(t *testing.T) {
	t.Run("empty library", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Equal(t, 0, FormatTable(&buf, nil, nil))
		assert.Contains(t, buf.String(), "No songs found")
	})

	t.Run("lists songs with offsets", func(t *testing.T) {
		songs := []*chords.Song{
			{ID: "8f14e45f-ceea-467f-a8f0-5d1c2a7b9e10", Title: "Amazing Grace", Artist: "John Newton", Key: "G",
				CreatedAtMs: time.Now().Add(-2 * time.Hour).UnixMilli()},
			{ID: "short", Title: strings.Repeat("Long title ", 5), Key: "Bb"},
		}

		var buf bytes.Buffer
		n := FormatTable(&buf, songs, map[string]int{"short": -3})
		assert.Equal(t, 2, n)

		out := buf.String()
		assert.Contains(t, out, "8f14e45f ")
		assert.Contains(t, out, "2h")
		assert.Contains(t, out, "-3")
		assert.Contains(t, out, "...")
		assert.Contains(t, out, "2 songs found")
	})
}

func TestFormatJSONL(t *testing.T) {
	var buf bytes.Buffer
	songs := []*chords.Song{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	require.NoError(t, FormatJSONL(&buf, songs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"id":"b"`)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "+4", formatOffset(4))
	assert.Equal(t, "-1", formatOffset(-1))
	assert.Equal(t, "0", formatOffset(0))
	assert.Equal(t, "-", formatAge(0))
	assert.Equal(t, "3d", formatAge(time.Now().Add(-73*time.Hour).UnixMilli()))
	assert.Equal(t, "abc", truncate("abc", 5))
}
