package chords

import (
	"sort"
	"strconv"
	"strings"
)

// ParseUpload builds song lines from the free-form upload fields.
// Line i of lyrics pairs with line i of chordText; a missing chord line means
// no chords. Line numbers start at 1. Malformed chord tokens are dropped.
func ParseUpload(lyrics, chordText string) []SongLine {
	lyricLines := splitLines(lyrics)
	chordLines := splitLines(chordText)

	lines := make([]SongLine, 0, len(lyricLines))
	for i, text := range lyricLines {
		var tokens string
		if i < len(chordLines) {
			tokens = chordLines[i]
		}
		lines = append(lines, SongLine{
			LineNumber: i + 1,
			Text:       text,
			Chords:     ParseChordTokens(tokens),
		})
	}
	return lines
}

// ParseChordTokens parses a comma-separated list of "<symbol>-<position>"
// tokens such as "C-0,G-11,Am-20". Tokens without a dash, with an empty
// symbol, or with a position that is not a non-negative integer are skipped.
func ParseChordTokens(s string) []ChordPosition {
	result := []ChordPosition{}
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		dash := strings.Index(token, "-")
		if dash <= 0 {
			continue
		}

		symbol := strings.TrimSpace(token[:dash])
		position, err := strconv.Atoi(strings.TrimSpace(token[dash+1:]))
		if symbol == "" || err != nil || position < 0 {
			continue
		}

		result = append(result, ChordPosition{Chord: symbol, Position: position})
	}
	return result
}

// FormatChordTokens is the inverse of ParseChordTokens. Chords are written in
// ascending position order.
func FormatChordTokens(chordList []ChordPosition) string {
	tokens := make([]string, 0, len(chordList))
	for _, c := range SortByPosition(chordList) {
		tokens = append(tokens, c.Chord+"-"+strconv.Itoa(c.Position))
	}
	return strings.Join(tokens, ",")
}

// FormatUpload is the inverse of ParseUpload: it returns the lyric text and
// the chord text for lines, ordered by line number.
func FormatUpload(lines []SongLine) (lyrics, chordText string) {
	ordered := cloneLines(lines)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LineNumber < ordered[j].LineNumber
	})

	var lyricBuf, chordBuf strings.Builder
	for _, line := range ordered {
		lyricBuf.WriteString(line.Text)
		lyricBuf.WriteByte('\n')
		chordBuf.WriteString(FormatChordTokens(line.Chords))
		chordBuf.WriteByte('\n')
	}
	return lyricBuf.String(), chordBuf.String()
}

// splitLines splits on '\n' and strips a trailing '\r' from each line.
// An empty input yields no lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	raw := strings.Split(s, "\n")
	for i, line := range raw {
		raw[i] = strings.TrimSuffix(line, "\r")
	}
	return raw
}
