package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/capo/internal/printer"
	"github.com/dyluth/capo/internal/session"
	"github.com/dyluth/capo/internal/sheet"
	"github.com/dyluth/capo/pkg/chords"
	"github.com/spf13/cobra"
)

var (
	transposeUp    bool
	transposeDown  bool
	transposeSet   int
	transposeReset bool
	transposeQuiet bool
)

var transposeCmd = &cobra.Command{
	Use:   "transpose SONG_ID (--up | --down | --set N | --reset)",
	Short: "Change the stored transpose offset of a song",
	Long: `Change the transpose offset stored for a song and print the result.

The offset is kept per song, between -11 and +11 semitones. --up and --down
move one semitone and stop at the limits; --set clamps to the range.
Flat chords are always written as sharps after transposing.

Examples:
  capo transpose 8f14e4 --up
  capo transpose 8f14e4 --set -3
  capo transpose 8f14e4 --reset`,
	Args: cobra.ExactArgs(1),
	RunE: runTranspose,
}

func init() {
	transposeCmd.Flags().BoolVarP(&transposeUp, "up", "u", false, "Raise by one semitone")
	transposeCmd.Flags().BoolVarP(&transposeDown, "down", "d", false, "Lower by one semitone")
	transposeCmd.Flags().IntVar(&transposeSet, "set", 0, "Set an absolute offset (clamped to -11..11)")
	transposeCmd.Flags().BoolVar(&transposeReset, "reset", false, "Return to the original key")
	transposeCmd.Flags().BoolVarP(&transposeQuiet, "quiet", "q", false, "Do not print the chord sheet")
	rootCmd.AddCommand(transposeCmd)
}

func runTranspose(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	setGiven := cmd.Flags().Changed("set")
	chosen := 0
	for _, on := range []bool{transposeUp, transposeDown, setGiven, transposeReset} {
		if on {
			chosen++
		}
	}
	if chosen != 1 {
		return printer.Error(
			"choose one transpose action",
			"Exactly one of --up, --down, --set or --reset is required.",
			[]string{fmt.Sprintf("capo transpose %s --up", args[0])},
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

	sess := session.New(backend, backend)
	before, err := sess.Open(ctx, songID)
	if err != nil {
		if errors.Is(err, session.ErrNothingToRender) {
			return nothingToRender(songID)
		}
		return err
	}

	var view *session.View
	switch {
	case transposeUp:
		view, err = sess.StepUp(ctx, songID)
	case transposeDown:
		view, err = sess.StepDown(ctx, songID)
	case setGiven:
		view, err = sess.SetOffset(ctx, songID, transposeSet)
	default:
		view, err = sess.Reset(ctx, songID)
	}
	if err != nil {
		return fmt.Errorf("failed to transpose: %w", err)
	}

	if view.Offset == before.Offset {
		printer.Info("%s stays at %s\n", view.Song.Title, describeOffset(view))
	} else {
		printer.Success("%s now at %s\n", view.Song.Title, describeOffset(view))
	}

	if !transposeQuiet {
		sheet.FormatSheet(cmd.OutOrStdout(), view, sheet.Options{Color: cfg.UseColor(), ShowArtist: cfg.ShowArtist()})
	}
	return nil
}

func describeOffset(view *session.View) string {
	desc := fmt.Sprintf("%+d", view.Offset)
	if view.Offset == chords.MinOffset || view.Offset == chords.MaxOffset {
		desc += " (limit)"
	}
	if view.Song.Key != "" {
		desc += ", key " + view.Song.Key
	}
	return desc
}
