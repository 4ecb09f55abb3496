package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dyluth/capo/internal/printer"
	"github.com/dyluth/capo/internal/session"
	"github.com/dyluth/capo/pkg/chords"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	uploadTitle      string
	uploadArtist     string
	uploadKey        string
	uploadBPM        int
	uploadGenres     string
	uploadLyricsFile string
	uploadChordsFile string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Store a new song from lyric and chord text files",
	Long: `Store a new song from two plain-text files.

Line N of the chord file annotates line N of the lyric file. Each chord line
is a comma-separated list of SYMBOL-POSITION tokens, where POSITION is the
character offset into the lyric line:

  lyrics.txt                 chords.txt
  Amazing grace how sweet    G-0,C-8,G-14
  the sound                  D-4

Malformed tokens are skipped.

Examples:
  capo upload --title "Amazing Grace" --key G --lyrics lyrics.txt --chords chords.txt
  capo upload --title Jolene --artist "Dolly Parton" --genre country,folk \
    --lyrics jolene.txt --chords jolene.chords`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadTitle, "title", "t", "", "Song title (required)")
	uploadCmd.Flags().StringVarP(&uploadArtist, "artist", "a", "", "Artist")
	uploadCmd.Flags().StringVarP(&uploadKey, "key", "k", "", "Original key, e.g. G or Bbm")
	uploadCmd.Flags().IntVar(&uploadBPM, "bpm", 0, "Tempo in beats per minute")
	uploadCmd.Flags().StringVar(&uploadGenres, "genre", "", "Comma-separated genres")
	uploadCmd.Flags().StringVar(&uploadLyricsFile, "lyrics", "", "Lyric text file (required)")
	uploadCmd.Flags().StringVar(&uploadChordsFile, "chords", "", "Chord annotation file")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if uploadTitle == "" || uploadLyricsFile == "" {
		return printer.Error(
			"missing required flags",
			"Both --title and --lyrics are required.",
			[]string{"capo upload --title \"Amazing Grace\" --lyrics lyrics.txt --chords chords.txt"},
		)
	}

	lyrics, err := os.ReadFile(uploadLyricsFile)
	if err != nil {
		return printer.Error("cannot read lyrics", err.Error(), nil)
	}
	var chordText []byte
	if uploadChordsFile != "" {
		if chordText, err = os.ReadFile(uploadChordsFile); err != nil {
			return printer.Error("cannot read chords", err.Error(), nil)
		}
	}

	song := &chords.Song{
		ID:          uuid.New().String(),
		Title:       uploadTitle,
		Artist:      uploadArtist,
		Key:         uploadKey,
		BPM:         uploadBPM,
		Genres:      splitList(uploadGenres),
		Lyrics:      chords.ParseUpload(string(lyrics), string(chordText)),
		CreatedAtMs: time.Now().UnixMilli(),
	}
	if err := song.Validate(); err != nil {
		return printer.Error("invalid song", err.Error(), nil)
	}

	_, backend, err := connect(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := session.New(backend, backend).Save(ctx, song); err != nil {
		return fmt.Errorf("failed to upload song: %w", err)
	}

	printer.Success("Uploaded %q (%d lines)\n", song.Title, len(song.Lyrics))
	printer.Info("  ID: %s\n", song.ID)
	return nil
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
