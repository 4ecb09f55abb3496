package sheet

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dyluth/capo/internal/printer"
	"github.com/dyluth/capo/internal/session"
	"github.com/dyluth/capo/pkg/chords"
)

// OutputFormat specifies how a song is written out.
type OutputFormat string

const (
	// OutputFormatDefault is the monospace chord sheet
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSON is the full view as pretty-printed JSON
	OutputFormatJSON OutputFormat = "json"

	// OutputFormatJSONL is one compact JSON object per song (list mode)
	OutputFormatJSONL OutputFormat = "jsonl"
)

// Options controls chord sheet rendering.
type Options struct {
	Color      bool // Colour the chord rail and headings
	ShowArtist bool // Print "by <artist>" under the title
}

// FormatSheet writes a rendered view as a chord sheet: heading, key line,
// then each lyric line with its chord rail directly above it. Lines are
// written in line-number order; rails without chords are omitted.
func FormatSheet(w io.Writer, view *session.View, opts Options) {
	song := view.Song

	fmt.Fprintln(w, printer.Title(song.Title, opts.Color))
	if opts.ShowArtist && song.Artist != "" {
		fmt.Fprintln(w, printer.Subtle("by "+song.Artist, opts.Color))
	}
	if meta := formatMeta(song, view.Offset); meta != "" {
		fmt.Fprintln(w, printer.Subtle(meta, opts.Color))
	}
	fmt.Fprintln(w)

	for _, line := range orderedLines(song.Lyrics) {
		rail := line.ChordLine
		if rail == "" {
			rail = chords.Render(line.Text, line.Chords)
		}
		if !chords.IsBlank(rail) {
			fmt.Fprintln(w, printer.Rail(strings.TrimRight(rail, " "), opts.Color))
		}
		fmt.Fprintln(w, line.Text)
	}
}

// viewJSON is the serialised form of a view.
type viewJSON struct {
	*chords.Song
	Offset int `json:"offset"`
}

// FormatJSON writes a view as pretty-printed JSON, chord lines included.
func FormatJSON(w io.Writer, view *session.View) error {
	data, err := json.MarshalIndent(viewJSON{Song: view.Song, Offset: view.Offset}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal song to JSON: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// FormatTable writes a song library as a table with ID, title, artist, key,
// offset and age columns. Returns the number of songs written.
func FormatTable(w io.Writer, songs []*chords.Song, offsets map[string]int) int {
	if len(songs) == 0 {
		fmt.Fprintln(w, "No songs found")
		return 0
	}

	fmt.Fprintf(w, "%-10s %-28s %-20s %-5s %-6s %s\n", "ID", "TITLE", "ARTIST", "KEY", "SHIFT", "AGE")
	fmt.Fprintf(w, "%-10s %-28s %-20s %-5s %-6s %s\n",
		"----------", "----------------------------", "--------------------", "-----", "------", "--------")

	for _, s := range songs {
		fmt.Fprintf(w, "%-10s %-28s %-20s %-5s %-6s %s\n",
			formatID(s.ID),
			truncate(s.Title, 28),
			truncate(s.Artist, 20),
			s.Key,
			formatOffset(offsets[s.ID]),
			formatAge(s.CreatedAtMs),
		)
	}

	noun := "song"
	if len(songs) != 1 {
		noun = "songs"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(songs), noun)

	return len(songs)
}

// FormatJSONL writes songs as line-delimited JSON.
func FormatJSONL(w io.Writer, songs []*chords.Song) error {
	for _, s := range songs {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal song to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

func orderedLines(lines []chords.SongLine) []chords.SongLine {
	ordered := append([]chords.SongLine(nil), lines...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LineNumber < ordered[j].LineNumber
	})
	return ordered
}

func formatMeta(song *chords.Song, offset int) string {
	var parts []string
	if song.Key != "" {
		parts = append(parts, "Key: "+song.Key)
	}
	if offset != 0 {
		parts = append(parts, "Transpose: "+formatOffset(offset))
	}
	if song.BPM > 0 {
		parts = append(parts, fmt.Sprintf("%d bpm", song.BPM))
	}
	if len(song.Genres) > 0 {
		parts = append(parts, strings.Join(song.Genres, ", "))
	}
	return strings.Join(parts, " · ")
}

// formatOffset renders an offset with an explicit sign ("+2", "-3", "0").
func formatOffset(offset int) string {
	if offset > 0 {
		return fmt.Sprintf("+%d", offset)
	}
	return fmt.Sprintf("%d", offset)
}

// formatID truncates a song ID to its first 8 characters.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// formatAge converts a millisecond timestamp to a relative age ("5m", "2h", "3d").
func formatAge(createdAtMs int64) string {
	if createdAtMs == 0 {
		return "-"
	}
	age := time.Since(time.UnixMilli(createdAtMs))
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd", int(age.Hours()/24))
	}
}
