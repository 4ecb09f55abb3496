package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dyluth/capo/internal/printer"
	"github.com/dyluth/capo/internal/session"
	"github.com/dyluth/capo/pkg/chords"
	"github.com/spf13/cobra"
)

var (
	exportLyricsFile string
	exportChordsFile string
	exportTransposed bool
)

var exportCmd = &cobra.Command{
	Use:   "export SONG_ID",
	Short: "Write a song back out as lyric and chord text",
	Long: `Write a song in the same two-file text form that 'capo upload' reads.

Without --lyrics/--chords both texts go to stdout, separated by a blank
line. By default the original chords are exported; --transposed exports
them at the song's stored offset instead.

Examples:
  capo export 8f14e4 --lyrics grace.txt --chords grace.chords
  capo export 8f14e4 --transposed --chords capo2.chords`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportLyricsFile, "lyrics", "", "Write lyric text to this file")
	exportCmd.Flags().StringVar(&exportChordsFile, "chords", "", "Write chord annotations to this file")
	exportCmd.Flags().BoolVar(&exportTransposed, "transposed", false, "Export chords at the stored offset")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	_, backend, err := connect(ctx)
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

	lines := view.Song.Lyrics
	if !exportTransposed {
		base, err := backend.GetSong(ctx, songID)
		if err != nil {
			return fmt.Errorf("failed to load song: %w", err)
		}
		lines = base.Lyrics
	}
	lyrics, chordText := chords.FormatUpload(lines)

	if exportLyricsFile == "" && exportChordsFile == "" {
		out := cmd.OutOrStdout()
		fmt.Fprint(out, lyrics)
		fmt.Fprintln(out)
		fmt.Fprint(out, chordText)
		return nil
	}

	for _, target := range []struct{ path, text string }{
		{exportLyricsFile, lyrics},
		{exportChordsFile, chordText},
	} {
		if target.path == "" {
			continue
		}
		if err := os.WriteFile(target.path, []byte(target.text), 0o644); err != nil {
			return printer.Error("cannot write export", err.Error(), nil)
		}
		printer.Success("Wrote %s\n", target.path)
	}
	return nil
}
