package chords

import (
	"encoding/json"
	"fmt"
	"math"
)

// Line documents are stored as a JSON array of loosely-typed objects:
//
//	[{"line_number": 1, "text": "...", "chords": [{"chord": "C", "position": 0}]}]
//
// Decoding is permissive. A line or chord record that fails to parse is
// skipped and decoding continues with the next one.

// EncodeLines serialises lines to the stored JSON form. Cached chord lines are
// not written.
func EncodeLines(lines []SongLine) (string, error) {
	docs := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		chordDocs := make([]map[string]any, 0, len(line.Chords))
		for _, c := range line.Chords {
			chordDocs = append(chordDocs, map[string]any{
				"chord":    c.Chord,
				"position": c.Position,
			})
		}
		docs = append(docs, map[string]any{
			"line_number": line.LineNumber,
			"text":        line.Text,
			"chords":      chordDocs,
		})
	}

	data, err := json.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal lyrics: %w", err)
	}
	return string(data), nil
}

// DecodeLines parses the stored JSON form. It returns the lines that could be
// decoded and the number of line or chord records that were skipped. Input
// that is not a JSON array decodes to no lines.
func DecodeLines(data string) (lines []SongLine, skipped int) {
	lines = []SongLine{}
	if data == "" {
		return lines, 0
	}

	var docs []any
	if err := json.Unmarshal([]byte(data), &docs); err != nil {
		return lines, 1
	}

	for _, doc := range docs {
		fields, ok := doc.(map[string]any)
		if !ok {
			skipped++
			continue
		}

		lineNumber, ok := asInt(fields["line_number"])
		if !ok {
			skipped++
			continue
		}

		text := ""
		if raw, present := fields["text"]; present && raw != nil {
			if text, ok = raw.(string); !ok {
				skipped++
				continue
			}
		}

		chordList := []ChordPosition{}
		rawChords, _ := fields["chords"].([]any)
		for _, rawChord := range rawChords {
			c, ok := decodeChord(rawChord)
			if !ok {
				skipped++
				continue
			}
			chordList = append(chordList, c)
		}

		lines = append(lines, SongLine{LineNumber: lineNumber, Text: text, Chords: chordList})
	}

	return lines, skipped
}

func decodeChord(raw any) (ChordPosition, bool) {
	fields, ok := raw.(map[string]any)
	if !ok {
		return ChordPosition{}, false
	}
	symbol, ok := fields["chord"].(string)
	if !ok || symbol == "" {
		return ChordPosition{}, false
	}
	position, ok := asInt(fields["position"])
	if !ok || position < 0 {
		return ChordPosition{}, false
	}
	return ChordPosition{Chord: symbol, Position: position}, true
}

// asInt accepts JSON numbers that hold an exact integer.
func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
