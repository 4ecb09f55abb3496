package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/dyluth/capo/internal/filter"
	"github.com/dyluth/capo/internal/printer"
	"github.com/dyluth/capo/internal/sheet"
	"github.com/dyluth/capo/internal/timespec"
	"github.com/spf13/cobra"
)

var (
	listOutputFormat string
	listSince        string
	listUntil        string
	listGenre        string
	listArtist       string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored songs with filtering",
	Long: `List stored songs, oldest upload first.

Output Formats:
  default - Table with ID, title, artist, key, stored offset and age
  jsonl   - Line-delimited JSON, one song per line (lyrics included)

Filters (all combined):
  --since / --until - Upload time: duration ("2h", "3d", "2w"), date or RFC3339
  --genre           - Genre glob, case-insensitive ("folk", "*rock")
  --artist          - Artist, case-insensitive exact match

Examples:
  capo list
  capo list --genre=hymn --since=2w
  capo list --output=jsonl | jq -r '.title'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	listCmd.Flags().StringVar(&listSince, "since", "", "Show songs uploaded after time")
	listCmd.Flags().StringVar(&listUntil, "until", "", "Show songs uploaded before time")
	listCmd.Flags().StringVar(&listGenre, "genre", "", "Filter by genre (glob pattern)")
	listCmd.Flags().StringVar(&listArtist, "artist", "", "Filter by artist (exact match)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	outputFormat := sheet.OutputFormat(listOutputFormat)
	if outputFormat != sheet.OutputFormatDefault && outputFormat != sheet.OutputFormatJSONL {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", listOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	sinceMs, untilMs, err := timespec.ParseRange(listSince, listUntil)
	if err != nil {
		return printer.Error(
			"invalid time filter",
			err.Error(),
			[]string{"Use a duration like '2h' or '3d', a date like '2025-10-29', or RFC3339"},
		)
	}
	criteria := &filter.Criteria{
		SinceTimestampMs: sinceMs,
		UntilTimestampMs: untilMs,
		GenreGlob:        listGenre,
		Artist:           listArtist,
	}

	_, backend, err := connect(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	songs, err := backend.ListSongs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}
	songs = criteria.Apply(songs)

	out := cmd.OutOrStdout()
	if outputFormat == sheet.OutputFormatJSONL {
		return sheet.FormatJSONL(out, songs)
	}

	offsets := make(map[string]int, len(songs))
	for _, s := range songs {
		offset, err := backend.GetOffset(ctx, s.ID)
		if err != nil {
			log.Printf("[WARN] Could not read offset for song %s: %v", s.ID, err)
			continue
		}
		offsets[s.ID] = offset
	}
	sheet.FormatTable(out, songs, offsets)
	return nil
}
