package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/dyluth/capo/internal/printer"
	"github.com/dyluth/capo/internal/session"
	"github.com/dyluth/capo/internal/sheet"
	"github.com/spf13/cobra"
)

var (
	showOutputFormat string
	showCopy         bool
	showNoArtist     bool
)

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

var showCmd = &cobra.Command{
	Use:   "show SONG_ID",
	Short: "Render a song at its current transpose offset",
	Long: `Render a song as a chord sheet, each chord rail printed above its lyric.

The song is shown at the offset stored for it; use 'capo transpose' to
change that. Short IDs are accepted (at least 6 characters).

Output Formats:
  default - Chord sheet
  json    - Full song with rendered chord lines and offset

Examples:
  capo show 8f14e4
  capo show 8f14e4 --output=json | jq '.lyrics[].chord_line'
  capo show 8f14e4 --copy`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutputFormat, "output", "o", "default", "Output format: default or json")
	showCmd.Flags().BoolVar(&showCopy, "copy", false, "Also copy the plain chord sheet to the clipboard")
	showCmd.Flags().BoolVar(&showNoArtist, "no-artist", false, "Omit the artist line")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	outputFormat := sheet.OutputFormat(showOutputFormat)
	if outputFormat != sheet.OutputFormatDefault && outputFormat != sheet.OutputFormatJSON {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", showOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	cfg, backend, err := connect(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	songID, err := resolveSong(ctx, backend, args[0])
	if err != nil {
		return err
	}

	view, err := session.New(backend, backend).Open(ctx, songID)
	if err != nil {
		if errors.Is(err, session.ErrNothingToRender) {
			return nothingToRender(songID)
		}
		return err
	}

	out := cmd.OutOrStdout()
	opts := sheet.Options{Color: cfg.UseColor(), ShowArtist: cfg.ShowArtist() && !showNoArtist}

	if outputFormat == sheet.OutputFormatJSON {
		if err := sheet.FormatJSON(out, view); err != nil {
			return err
		}
	} else {
		sheet.FormatSheet(out, view, opts)
	}

	if showCopy {
		return copySheet(view, opts)
	}
	return nil
}

// copySheet puts an uncoloured chord sheet on the system clipboard.
func copySheet(view *session.View, opts sheet.Options) error {
	var buf bytes.Buffer
	opts.Color = false
	sheet.FormatSheet(&buf, view, opts)

	if err := copyToClipboard(buf.String()); err != nil {
		printer.Warning("Could not copy to clipboard: %v\n", err)
		return nil
	}
	printer.Success("Copied to clipboard\n")
	return nil
}
